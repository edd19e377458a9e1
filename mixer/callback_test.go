package mixer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/djdeck/internal/mock"
	"github.com/pipelined/djdeck/mixer"
	"github.com/pipelined/djdeck/test"
)

func TestCallback(t *testing.T) {
	m := mixer.New(nil, &mock.Deck{Value: 0.25}, &mock.Deck{Value: 0.25})
	m.Prepare(test.SampleRate, 4, 2)
	cb := mixer.NewCallback(m, 4, 2)

	tests := []struct {
		description string
		out         [][]float32
		expected    float32
	}{
		{description: "block", out: [][]float32{make([]float32, 4), make([]float32, 4)}, expected: 0.5},
		{description: "longer block", out: [][]float32{make([]float32, 10), make([]float32, 10)}, expected: 0.5},
		{description: "mono device", out: [][]float32{{1, 1}}, expected: 0},
		{description: "uneven", out: [][]float32{{1, 1}, {1}}, expected: 0},
		{description: "nil", out: nil},
	}
	for _, c := range tests {
		assert.NotPanics(t, func() { cb.Process(c.out) }, c.description)
		for i := range c.out {
			for _, v := range c.out[i] {
				assert.Equal(t, c.expected, v, c.description)
			}
		}
	}
}
