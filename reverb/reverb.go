// Package reverb provides a Freeverb style room simulation: eight damped
// comb filters in parallel followed by four allpass filters in series.
package reverb

import (
	"math"
	"sync/atomic"

	"github.com/pipelined/djdeck/signal"
)

const (
	numCombs     = 8
	numAllpasses = 4

	fixedGain        = 0.015
	allpassFeedback  = 0.5
	stereoSpread     = 23
	tuningSampleRate = 44100

	// room size maps to comb feedback in [roomOffset, roomOffset+roomScale].
	roomScale  = 0.28
	roomOffset = 0.7
	dampScale  = 0.4
	wetScale   = 3
)

var (
	combTunings    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTunings = [numAllpasses]int{556, 441, 341, 225}
)

// Parameters of the reverb, every value is in [0, 1].
type Parameters struct {
	RoomSize float64
	Damping  float64
	Wet      float64
	Dry      float64
}

// DefaultParameters turn reverb off: output equals input.
var DefaultParameters = Parameters{
	RoomSize: 0,
	Damping:  0,
	Wet:      0,
	Dry:      1,
}

func (p Parameters) valid() bool {
	return unit(p.RoomSize) && unit(p.Damping) && unit(p.Wet) && unit(p.Dry)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

type comb struct {
	buffer []float64
	index  int
	store  float64
}

func (c *comb) process(input, feedback, damp1, damp2 float64) float64 {
	output := c.buffer[c.index]
	c.store = output*damp2 + c.store*damp1
	if math.Abs(c.store) < 1e-23 {
		c.store = 0
	}
	c.buffer[c.index] = input + c.store*feedback
	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}
	return output
}

type allpass struct {
	buffer []float64
	index  int
}

func (a *allpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	a.buffer[a.index] = input + bufOut*allpassFeedback
	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}
	return bufOut - input
}

type channel struct {
	combs     [numCombs]comb
	allpasses [numAllpasses]allpass
}

// Stage applies reverb to every channel independently. Odd channels use
// delay lines longer by the stereo spread.
type Stage struct {
	params   atomic.Pointer[Parameters]
	channels []channel
}

// New returns reverb stage with provided parameters. Invalid parameters
// are replaced with DefaultParameters.
func New(p Parameters) *Stage {
	if !p.valid() {
		p = DefaultParameters
	}
	s := &Stage{}
	s.params.Store(&p)
	return s
}

// Parameters returns current parameters.
func (s *Stage) Parameters() Parameters {
	return *s.params.Load()
}

// SetDamping sets damping. Values outside [0, 1] are ignored.
func (s *Stage) SetDamping(d float64) bool {
	if !unit(d) {
		return false
	}
	next := *s.params.Load()
	next.Damping = d
	s.params.Store(&next)
	return true
}

// Prepare allocates delay lines scaled for the sample rate. Must not be
// called concurrently with Process.
func (s *Stage) Prepare(sampleRate, numChannels int) {
	s.channels = make([]channel, numChannels)
	for c := range s.channels {
		spread := 0
		if c%2 == 1 {
			spread = stereoSpread
		}
		ch := &s.channels[c]
		for i, tuning := range combTunings {
			ch.combs[i].buffer = make([]float64, scale(tuning+spread, sampleRate))
		}
		for i, tuning := range allpassTunings {
			ch.allpasses[i].buffer = make([]float64, scale(tuning+spread, sampleRate))
		}
	}
}

func scale(tuning, sampleRate int) int {
	n := tuning * sampleRate / tuningSampleRate
	if n < 1 {
		return 1
	}
	return n
}

// Reset clears delay lines.
func (s *Stage) Reset() {
	for c := range s.channels {
		ch := &s.channels[c]
		for i := range ch.combs {
			for j := range ch.combs[i].buffer {
				ch.combs[i].buffer[j] = 0
			}
			ch.combs[i].store = 0
			ch.combs[i].index = 0
		}
		for i := range ch.allpasses {
			for j := range ch.allpasses[i].buffer {
				ch.allpasses[i].buffer[j] = 0
			}
			ch.allpasses[i].index = 0
		}
	}
}

// Process applies reverb in place. Parameters are read once per block.
// With zero wet level the reverb is not computed at all.
func (s *Stage) Process(b signal.Float64) {
	p := s.params.Load()
	if p.Wet == 0 {
		if p.Dry != 1 {
			b.Scale(p.Dry)
		}
		return
	}
	feedback := p.RoomSize*roomScale + roomOffset
	damp1 := p.Damping * dampScale
	damp2 := 1 - damp1
	wet := p.Wet * wetScale
	for c := range b {
		if c >= len(s.channels) {
			return
		}
		ch := &s.channels[c]
		for i, x := range b[c] {
			in := x * fixedGain
			var acc float64
			for j := range ch.combs {
				acc += ch.combs[j].process(in, feedback, damp1, damp2)
			}
			for j := range ch.allpasses {
				acc = ch.allpasses[j].process(acc)
			}
			b[c][i] = acc*wet + x*p.Dry
		}
	}
}
