package eq_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/djdeck/eq"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/test"
)

// steadyPeak processes one second of sine and returns peak of the second
// half, when filter transients are gone.
func steadyPeak(s *eq.Stage, frequency float64) float64 {
	in := test.Signal(1, test.SampleRate, test.Sine(frequency, 0.1, test.SampleRate))
	for i := 0; i < in.Size(); i += test.BufferSize {
		n := test.BufferSize
		if i+n > in.Size() {
			n = in.Size() - i
		}
		s.Process(in.View(signal.EmptyFloat64(1, 0), i, n))
	}
	return in.Slice(in.Size()/2, in.Size()/2).Peak()
}

func TestBypass(t *testing.T) {
	in := test.Signal(2, 4096, test.Sine(440, 0.9, test.SampleRate))
	out := test.Signal(2, 4096, test.Sine(440, 0.9, test.SampleRate))
	s := eq.New()
	s.Prepare(test.SampleRate, 2)
	s.Process(out)
	assert.Equal(t, in, out)

	// back to zero after boost
	s.SetBandGain(eq.Mid, 6)
	s.SetBandGain(eq.Mid, 0)
	s.Process(out)
	assert.Equal(t, in, out)
}

func TestSetBandGain(t *testing.T) {
	s := eq.New()
	s.Prepare(test.SampleRate, 2)
	bass := s.Coefficients(eq.Bass)
	treble := s.Coefficients(eq.Treble)

	tests := []struct {
		band     eq.Band
		db       float64
		accepted bool
	}{
		{band: eq.Mid, db: 6, accepted: true},
		{band: eq.Mid, db: -24, accepted: true},
		{band: eq.Mid, db: 24, accepted: true},
		{band: eq.Mid, db: 24.1},
		{band: eq.Mid, db: -30},
		{band: eq.Mid, db: math.NaN()},
		{band: eq.Band(7), db: 3},
	}
	for _, c := range tests {
		before := s.BandGain(c.band)
		assert.Equal(t, c.accepted, s.SetBandGain(c.band, c.db), "%v %v", c.band, c.db)
		if c.accepted {
			assert.Equal(t, c.db, s.BandGain(c.band))
		} else {
			assert.Equal(t, before, s.BandGain(c.band))
		}
	}
	// other bands untouched
	assert.Equal(t, bass, s.Coefficients(eq.Bass))
	assert.Equal(t, treble, s.Coefficients(eq.Treble))
}

func TestResponse(t *testing.T) {
	tests := []struct {
		description string
		band        eq.Band
		db          float64
		frequency   float64
		gain        float64
		delta       float64
	}{
		{description: "mid peak at center", band: eq.Mid, db: 6, frequency: 1000, gain: math.Pow(10, 6.0/20), delta: 0.05},
		{description: "mid cut at center", band: eq.Mid, db: -12, frequency: 1000, gain: math.Pow(10, -12.0/20), delta: 0.02},
		{description: "mid far away", band: eq.Mid, db: 12, frequency: 15000, gain: 1, delta: 0.1},
		{description: "bass boost low", band: eq.Bass, db: 12, frequency: 30, gain: math.Pow(10, 12.0/20), delta: 0.3},
		{description: "bass boost high", band: eq.Bass, db: 12, frequency: 10000, gain: 1, delta: 0.05},
		{description: "treble boost high", band: eq.Treble, db: 12, frequency: 18000, gain: math.Pow(10, 12.0/20), delta: 0.3},
		{description: "treble boost low", band: eq.Treble, db: 12, frequency: 100, gain: 1, delta: 0.05},
	}
	for _, c := range tests {
		s := eq.New()
		s.Prepare(test.SampleRate, 1)
		assert.True(t, s.SetBandGain(c.band, c.db))
		peak := steadyPeak(s, c.frequency)
		assert.InDelta(t, c.gain, peak/0.1, c.delta, c.description)
	}
}

func TestChannelsIndependent(t *testing.T) {
	mono := test.Signal(1, 2048, test.Sine(1000, 0.5, test.SampleRate))
	stereo := test.Signal(2, 2048, test.Sine(1000, 0.5, test.SampleRate))

	m := eq.New()
	m.Prepare(test.SampleRate, 1)
	m.SetBandGain(eq.Bass, -6)
	m.SetBandGain(eq.Mid, 9)
	m.Process(mono)

	s := eq.New()
	s.SetBandGain(eq.Bass, -6)
	s.SetBandGain(eq.Mid, 9)
	// gains set before prepare are kept
	s.Prepare(test.SampleRate, 2)
	s.Process(stereo)

	assert.Equal(t, mono[0], stereo[0])
	assert.Equal(t, mono[0], stereo[1])
}
