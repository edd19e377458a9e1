package mixer

import (
	"expvar"

	"github.com/pipelined/djdeck/metric"
	"github.com/pipelined/djdeck/signal"
)

// Source is pulled by device callback.
type Source interface {
	PullNextBlock(signal.Float64)
}

// Callback converts pulled float64 blocks into non-interleaved float32
// device buffers. It's used as a device stream callback.
type Callback struct {
	source  Source
	block   signal.Float64
	view    signal.Float64
	silence *expvar.Int
}

// NewCallback allocates buffers for blocks up to blockSize frames.
func NewCallback(source Source, blockSize, numChannels int) *Callback {
	return &Callback{
		source:  source,
		block:   signal.EmptyFloat64(numChannels, blockSize),
		view:    signal.EmptyFloat64(numChannels, 0),
		silence: metric.Silence(&Callback{}),
	}
}

// Process fills device buffers. Unexpected buffer shape results in
// silence.
func (c *Callback) Process(out [][]float32) {
	if !c.valid(out) {
		for i := range out {
			for j := range out[i] {
				out[i][j] = 0
			}
		}
		c.silence.Add(1)
		return
	}
	size := len(out[0])
	blockSize := c.block.Size()
	for start := 0; start < size; start += blockSize {
		n := blockSize
		if start+n > size {
			n = size - start
		}
		b := c.block.View(c.view, 0, n)
		c.source.PullNextBlock(b)
		for i := range out {
			dst := out[i][start : start+n]
			for j, v := range b[i] {
				dst[j] = float32(v)
			}
		}
	}
}

func (c *Callback) valid(out [][]float32) bool {
	if len(out) != c.block.NumChannels() || c.block.Size() == 0 {
		return false
	}
	for i := range out {
		if out[i] == nil || len(out[i]) != len(out[0]) {
			return false
		}
	}
	return true
}
