// Package tap passes copies of audio blocks from the audio thread to
// consumer goroutines. Tap is a bounded single producer single consumer
// queue: producer never blocks and never allocates, frames are dropped
// when consumer falls behind.
package tap

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/pipelined/djdeck/signal"
)

// Frame is a copied block with its peak magnitude.
type Frame struct {
	Samples signal.Float64
	Peak    float64
}

// Handler consumes frames. Frame is valid only for the duration of call.
type Handler func(Frame) error

// Writer writes blocks, recorder sinks implement it.
type Writer interface {
	Write(signal.Float64) error
}

// Tap is a ring of preallocated frames.
type Tap struct {
	slots   []Frame
	buffers []signal.Float64
	// head is written by producer only, tail by consumer only.
	head    atomic.Uint64
	tail    atomic.Uint64
	dropped atomic.Uint64
	wake    chan struct{}
}

// New allocates tap with provided number of slots for blocks of provided
// shape.
func New(slots, numChannels, blockSize int) *Tap {
	if slots < 1 {
		slots = 1
	}
	t := &Tap{
		slots:   make([]Frame, slots),
		buffers: make([]signal.Float64, slots),
		wake:    make(chan struct{}, 1),
	}
	for i := range t.slots {
		t.buffers[i] = signal.EmptyFloat64(numChannels, blockSize)
		t.slots[i].Samples = signal.EmptyFloat64(numChannels, 0)
	}
	return t
}

// Push copies the block into a free slot. If no slot is free, block is
// dropped and false is returned. Blocks larger than the slot are
// truncated.
func (t *Tap) Push(b signal.Float64) bool {
	head := t.head.Load()
	if head-t.tail.Load() >= uint64(len(t.slots)) {
		t.dropped.Add(1)
		return false
	}
	i := head % uint64(len(t.slots))
	buf := t.buffers[i]
	n := b.Size()
	if n > buf.Size() {
		n = buf.Size()
	}
	f := &t.slots[i]
	buf.View(f.Samples, 0, n)
	f.Samples.Zero()
	f.Samples.CopyFrom(b)
	f.Peak = f.Samples.Peak()
	t.head.Store(head + 1)

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return true
}

// Run calls handler for every pushed frame until context is done or
// handler returns an error. Frames pushed before cancellation are
// drained.
func (t *Tap) Run(ctx context.Context, handler Handler) error {
	for {
		if err := t.drain(handler); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return t.drain(handler)
		case <-t.wake:
		}
	}
}

func (t *Tap) drain(handler Handler) error {
	for {
		tail := t.tail.Load()
		if tail == t.head.Load() {
			return nil
		}
		err := handler(t.slots[tail%uint64(len(t.slots))])
		t.tail.Store(tail + 1)
		if err != nil {
			return err
		}
	}
}

// Dropped returns number of dropped frames.
func (t *Tap) Dropped() uint64 {
	return t.dropped.Load()
}

// Pending returns number of frames waiting for consumer.
func (t *Tap) Pending() int {
	return int(t.head.Load() - t.tail.Load())
}

// Sink returns handler writing frames into w.
func Sink(w Writer) Handler {
	return func(f Frame) error {
		return w.Write(f.Samples)
	}
}

// Meter keeps the peak of the last consumed frame. It's read by the UI.
type Meter struct {
	peak atomic.Uint64
}

// Handle stores frame peak.
func (m *Meter) Handle(f Frame) error {
	m.peak.Store(math.Float64bits(f.Peak))
	return nil
}

// Peak returns last stored peak.
func (m *Meter) Peak() float64 {
	return math.Float64frombits(m.peak.Load())
}
