// Package speed changes playback speed by linear interpolation. Pitch is
// coupled to speed.
package speed

import (
	"math"
	"sync/atomic"

	"github.com/pipelined/djdeck/signal"
)

const (
	// MinRatio is exclusive lower bound of the ratio.
	MinRatio = 0.0
	// MaxRatio is exclusive upper bound of the ratio.
	MaxRatio = 100.0
)

// PullFunc fills dst[c][start:start+n] with source frames. It returns
// number of frames written, less than n means end of stream.
type PullFunc func(dst signal.Float64, start, n int) int

// Stage resamples pulled source into output blocks.
type Stage struct {
	ratio atomic.Uint64

	deviceRate int
	// buf holds source frames, buf[c][0] is the frame at floor(pos).
	buf  signal.Float64
	have int
	pos  float64
	eos  bool
}

// New returns stage with ratio 1.
func New() *Stage {
	s := &Stage{}
	s.ratio.Store(math.Float64bits(1))
	return s
}

// SetRatio sets speed ratio. Values outside (0, 100) are ignored. Safe to
// call from any goroutine.
func (s *Stage) SetRatio(r float64) bool {
	if !(r > MinRatio && r < MaxRatio) {
		return false
	}
	s.ratio.Store(math.Float64bits(r))
	return true
}

// Ratio returns current speed ratio.
func (s *Stage) Ratio() float64 {
	return math.Float64frombits(s.ratio.Load())
}

// Prepare allocates source buffer. Must not be called concurrently with
// Process.
func (s *Stage) Prepare(deviceRate, blockSize, numChannels int) {
	s.deviceRate = deviceRate
	// two extra frames for interpolation
	s.buf = signal.EmptyFloat64(numChannels, blockSize+2)
	s.Reset()
}

// Reset drops buffered source frames.
func (s *Stage) Reset() {
	s.have = 0
	s.pos = 0
	s.eos = false
}

// Process fills dst with resampled source. Source frames are pulled on
// demand. Returns number of frames produced, the rest of dst is zeroed.
// With ratio 1 and equal rates output is an exact copy of the source.
func (s *Stage) Process(dst signal.Float64, sourceRate int, pull PullFunc) int {
	n := dst.Size()
	if n == 0 || s.deviceRate <= 0 || sourceRate <= 0 || dst.NumChannels() != s.buf.NumChannels() {
		dst.Zero()
		return 0
	}
	// ratio is read once per block
	inc := s.Ratio() * float64(sourceRate) / float64(s.deviceRate)
	capacity := s.buf.Size()

	done := 0
	for done < n {
		s.compact(pull)

		// output frames which fit into the buffer
		m := int((float64(capacity-2)-s.pos)/inc) + 1
		if left := n - done; m > left {
			m = left
		}
		need := int(s.pos+inc*float64(m-1)) + 2
		if need > capacity {
			need = capacity
		}
		if need > s.have && !s.eos {
			want := need - s.have
			got := pull(s.buf, s.have, want)
			s.have += got
			if got < want {
				s.eos = true
			}
		}

		for j := 0; j < m; j++ {
			idx := int(s.pos)
			if idx >= s.have {
				zero(dst, done)
				return done
			}
			f := s.pos - float64(idx)
			for c := range dst {
				a := s.buf[c][idx]
				b := a
				if idx+1 < s.have {
					b = s.buf[c][idx+1]
				}
				dst[c][done] = a + (b-a)*f
			}
			done++
			s.pos += inc
		}
	}
	return done
}

// compact moves unconsumed frames to the beginning of the buffer. Frames
// jumped over at high ratios are pulled and dropped.
func (s *Stage) compact(pull PullFunc) {
	idx := int(s.pos)
	if idx == 0 {
		return
	}
	if idx < s.have {
		for c := range s.buf {
			copy(s.buf[c], s.buf[c][idx:s.have])
		}
		s.have -= idx
		s.pos -= float64(idx)
		return
	}
	skip := idx - s.have
	capacity := s.buf.Size()
	for skip > 0 && !s.eos {
		k := skip
		if k > capacity {
			k = capacity
		}
		got := pull(s.buf, 0, k)
		if got < k {
			s.eos = true
		}
		skip -= got
	}
	s.have = 0
	s.pos -= float64(idx)
}

func zero(dst signal.Float64, from int) {
	for c := range dst {
		for i := from; i < len(dst[c]); i++ {
			dst[c][i] = 0
		}
	}
}
