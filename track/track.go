// Package track holds the decoded track of a deck. The track handle is
// published atomically: control thread decodes a file and swaps the handle,
// audio thread pulls samples from whatever handle it observes.
package track

import (
	"math"
	"sync/atomic"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/signal"
)

// Info describes loaded track.
type Info struct {
	Path          string
	Title         string
	Codec         string
	SampleRate    int
	NumChannels   int
	Frames        int64
	LengthSeconds float64
}

// handle is immutable except for position.
type handle struct {
	info    Info
	samples signal.Float64
	// position in source frames.
	position atomic.Int64
}

// Source is a replaceable track of a single deck.
type Source struct {
	registry *format.Registry
	current  atomic.Pointer[handle]
	epoch    atomic.Uint64
}

// New returns source which decodes files with provided registry.
func New(registry *format.Registry) *Source {
	return &Source{registry: registry}
}

// Load decodes the file and publishes it as the current track with
// position 0. Decoding happens in the calling goroutine. If error is
// returned, previous track and its position are untouched.
func (s *Source) Load(path string) (Info, error) {
	decoded, err := s.registry.Open(path)
	if err != nil {
		return Info{}, err
	}
	props := decoded.Properties()
	h := &handle{
		info: Info{
			Path:          decoded.Path,
			Title:         format.Title(decoded.Path),
			Codec:         decoded.Codec,
			SampleRate:    props.SampleRate,
			NumChannels:   props.NumChannels,
			Frames:        props.Frames,
			LengthSeconds: props.LengthSeconds(),
		},
		samples: decoded.Samples,
	}
	s.current.Store(h)
	s.epoch.Add(1)
	return h.info, nil
}

// Unload drops the current track.
func (s *Source) Unload() {
	if s.current.Swap(nil) != nil {
		s.epoch.Add(1)
	}
}

// Info returns current track info. False is returned if no track loaded.
func (s *Source) Info() (Info, bool) {
	h := s.current.Load()
	if h == nil {
		return Info{}, false
	}
	return h.info, true
}

// Loaded returns true if track is loaded.
func (s *Source) Loaded() bool {
	return s.current.Load() != nil
}

// Samples returns decoded samples of current track. They must not be
// modified.
func (s *Source) Samples() signal.Float64 {
	h := s.current.Load()
	if h == nil {
		return nil
	}
	return h.samples
}

// SampleRate returns native sample rate of current track, 0 if none.
func (s *Source) SampleRate() int {
	h := s.current.Load()
	if h == nil {
		return 0
	}
	return h.info.SampleRate
}

// Epoch changes every time track is loaded, unloaded or position is set
// by seek. Stateful consumers use it to drop buffered samples.
func (s *Source) Epoch() uint64 {
	return s.epoch.Load()
}

// Pull copies up to n frames into dst[c][start:start+n] and advances the
// position. Destination channel c receives source channel
// min(c, numChannels-1). Returns number of frames written, less than n
// means end of stream. Safe to call from the audio thread.
func (s *Source) Pull(dst signal.Float64, start, n int) int {
	h := s.current.Load()
	if h == nil || n <= 0 {
		return 0
	}
	srcChannels := h.samples.NumChannels()
	if srcChannels == 0 {
		return 0
	}
	pos := h.position.Load()
	left := h.info.Frames - pos
	if left <= 0 {
		return 0
	}
	if int64(n) > left {
		n = int(left)
	}
	for c := range dst {
		src := c
		if src >= srcChannels {
			src = srcChannels - 1
		}
		copy(dst[c][start:start+n], h.samples[src][pos:pos+int64(n)])
	}
	// seek between load and store wins
	h.position.CompareAndSwap(pos, pos+int64(n))
	return n
}

// SeekSeconds moves position to t seconds, clamped to [0, length]. No-op
// if no track is loaded or t is NaN.
func (s *Source) SeekSeconds(t float64) {
	h := s.current.Load()
	if h == nil || math.IsNaN(t) {
		return
	}
	frame := int64(math.Round(t * float64(h.info.SampleRate)))
	switch {
	case frame < 0:
		frame = 0
	case frame > h.info.Frames:
		frame = h.info.Frames
	}
	h.position.Store(frame)
	s.epoch.Add(1)
}

// LengthSeconds returns length of current track, 0 if none.
func (s *Source) LengthSeconds() float64 {
	h := s.current.Load()
	if h == nil {
		return 0
	}
	return h.info.LengthSeconds
}

// PositionSeconds returns position of current track, 0 if none.
func (s *Source) PositionSeconds() float64 {
	h := s.current.Load()
	if h == nil || h.info.SampleRate == 0 {
		return 0
	}
	return float64(h.position.Load()) / float64(h.info.SampleRate)
}

// AtEnd returns true if current track position reached its length.
func (s *Source) AtEnd() bool {
	h := s.current.Load()
	if h == nil {
		return false
	}
	return h.position.Load() >= h.info.Frames
}
