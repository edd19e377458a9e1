// Package gain provides the volume stage of a deck.
package gain

import (
	"math"
	"sync/atomic"

	"github.com/pipelined/djdeck/signal"
)

// Gain limits, both exclusive.
const (
	Min = 0.0
	Max = 10.0
)

// Stage multiplies every sample by linear gain.
type Stage struct {
	gain atomic.Uint64
}

// New returns stage with unity gain.
func New() *Stage {
	s := &Stage{}
	s.gain.Store(math.Float64bits(1))
	return s
}

// SetGain sets linear gain. Values outside (0, 10) are ignored.
func (s *Stage) SetGain(g float64) bool {
	if !(g > Min && g < Max) {
		return false
	}
	s.gain.Store(math.Float64bits(g))
	return true
}

// Gain returns current gain.
func (s *Stage) Gain() float64 {
	return math.Float64frombits(s.gain.Load())
}

// Process applies gain in place.
func (s *Stage) Process(b signal.Float64) {
	if g := s.Gain(); g != 1 {
		b.Scale(g)
	}
}
