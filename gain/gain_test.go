package gain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/djdeck/gain"
	"github.com/pipelined/djdeck/test"
)

func TestGain(t *testing.T) {
	tests := []struct {
		gain     float64
		expected float64
	}{
		{gain: 0.5, expected: 0.5},
		{gain: 2, expected: 2},
		{gain: 9.99, expected: 9.99},
		{gain: 0.001, expected: 0.001},
		// ignored values keep the previous gain
		{gain: 0, expected: 0.001},
		{gain: -1, expected: 0.001},
		{gain: 10, expected: 0.001},
		{gain: 11, expected: 0.001},
		{gain: math.NaN(), expected: 0.001},
	}
	s := gain.New()
	for _, c := range tests {
		s.SetGain(c.gain)
		assert.Equal(t, c.expected, s.Gain())

		block := test.Signal(2, test.BufferSize, test.Constant(1))
		s.Process(block)
		for ch := range block {
			for _, v := range block[ch] {
				assert.InDelta(t, c.expected, v, 1e-12, "gain %v", c.gain)
			}
		}
	}
}

func TestUnity(t *testing.T) {
	in := test.Signal(2, test.BufferSize, test.Sine(440, 1, test.SampleRate))
	out := test.Signal(2, test.BufferSize, test.Sine(440, 1, test.SampleRate))
	gain.New().Process(out)
	assert.Equal(t, in, out)
}
