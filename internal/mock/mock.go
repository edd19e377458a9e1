// Package mock provides mocks for mixer decks and tap writers.
package mock

import (
	"github.com/pipelined/djdeck/signal"
)

// Deck mocks a mixer.Deck interface. It fills every pulled block with
// Value until Limit frames are emitted, then silence. Zero Limit means
// no limit.
type Deck struct {
	counter
	Value float64
	Limit int
	Hooks
}

// Prepare implements mixer.Deck.
func (m *Deck) Prepare(sampleRate, blockSize, numChannels int) {
	m.Prepared++
	m.SampleRate = sampleRate
	m.BlockSize = blockSize
	m.NumChannels = numChannels
}

// Release implements mixer.Deck.
func (m *Deck) Release() {
	m.Released++
}

// PullNextBlock implements mixer.Deck.
func (m *Deck) PullNextBlock(b signal.Float64) {
	n := b.Size()
	if m.Limit > 0 {
		if left := m.Limit - m.samples; left < n {
			n = left
		}
	}
	for c := range b {
		for i := range b[c] {
			if i < n {
				b[c][i] = m.Value
			} else {
				b[c][i] = 0
			}
		}
	}
	m.advance(n)
}

// Writer mocks a tap.Writer interface. It keeps every written block.
type Writer struct {
	counter
	ErrorOnCall error
	buffer      signal.Float64
}

// Write implements tap.Writer.
func (m *Writer) Write(b signal.Float64) error {
	if m.ErrorOnCall != nil {
		return m.ErrorOnCall
	}
	m.buffer = m.buffer.Append(b)
	m.advance(b.Size())
	return nil
}

// Buffer returns written signal.
func (m *Writer) Buffer() signal.Float64 {
	return m.buffer
}

// Hooks records lifecycle calls of a deck.
type Hooks struct {
	Prepared int
	Released int

	SampleRate  int
	BlockSize   int
	NumChannels int
}

// counter counts calls and frames.
type counter struct {
	calls   int
	samples int
}

func (c *counter) advance(size int) {
	c.calls++
	c.samples += size
}

// Count returns number of calls and frames.
func (c *counter) Count() (int, int) {
	return c.calls, c.samples
}
