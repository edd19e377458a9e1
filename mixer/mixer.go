// Package mixer sums decks into the device output block.
package mixer

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pipelined/djdeck/log"
	"github.com/pipelined/djdeck/metric"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/tap"
)

// Deck is a source of the mixer.
type Deck interface {
	Prepare(sampleRate, blockSize, numChannels int)
	Release()
	PullNextBlock(signal.Float64)
}

// Mixer sums attached decks. Decks are added and removed from the control
// goroutine, PullNextBlock is called from the audio thread.
type Mixer struct {
	logger log.Logger

	// m guards deck list updates and prepare state.
	m           sync.Mutex
	decks       atomic.Pointer[[]Deck]
	prepared    atomic.Bool
	sampleRate  int
	blockSize   int
	numChannels int

	tap     atomic.Pointer[tap.Tap]
	silence *expvar.Int
	drops   *expvar.Int
	meter   metric.ResetFunc

	// owned by the audio thread after Prepare.
	scratch signal.Float64
	view    signal.Float64
	outView signal.Float64
	measure metric.MeasureFunc
}

// New returns mixer with provided decks.
func New(logger log.Logger, decks ...Deck) *Mixer {
	if logger == nil {
		logger = log.Discard()
	}
	m := &Mixer{logger: logger}
	list := append([]Deck(nil), decks...)
	m.decks.Store(&list)
	m.silence = metric.Silence(m)
	m.drops = metric.Drops(m)
	return m
}

// AddDeck attaches the deck. If mixer is prepared, the deck is prepared
// before it becomes visible to the audio thread.
func (m *Mixer) AddDeck(d Deck) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.prepared.Load() {
		d.Prepare(m.sampleRate, m.blockSize, m.numChannels)
	}
	old := *m.decks.Load()
	next := make([]Deck, 0, len(old)+1)
	next = append(next, old...)
	next = append(next, d)
	m.decks.Store(&next)
}

// RemoveDeck detaches the deck. The deck isn't released, since audio
// thread can still be pulling it in the current block. Returns false if
// deck isn't attached.
func (m *Mixer) RemoveDeck(d Deck) bool {
	m.m.Lock()
	defer m.m.Unlock()
	old := *m.decks.Load()
	next := make([]Deck, 0, len(old))
	for _, attached := range old {
		if attached != d {
			next = append(next, attached)
		}
	}
	if len(next) == len(old) {
		return false
	}
	m.decks.Store(&next)
	return true
}

// Decks returns attached decks.
func (m *Mixer) Decks() []Deck {
	return append([]Deck(nil), *m.decks.Load()...)
}

// SetTap sets the tap which receives copies of mixed blocks. Nil removes
// the tap.
func (m *Mixer) SetTap(t *tap.Tap) {
	m.tap.Store(t)
}

// Prepare allocates scratch buffers and prepares all attached decks. It
// must not be called concurrently with PullNextBlock.
func (m *Mixer) Prepare(sampleRate, blockSize, numChannels int) {
	m.m.Lock()
	defer m.m.Unlock()
	m.sampleRate = sampleRate
	m.blockSize = blockSize
	m.numChannels = numChannels
	m.scratch = signal.EmptyFloat64(numChannels, blockSize)
	m.view = signal.EmptyFloat64(numChannels, 0)
	m.outView = signal.EmptyFloat64(numChannels, 0)
	for _, d := range *m.decks.Load() {
		d.Prepare(sampleRate, blockSize, numChannels)
	}
	if m.meter == nil {
		m.meter = metric.Meter(m, sampleRate)
	}
	m.measure = m.meter()
	m.prepared.Store(true)
	m.logger.Debug(fmt.Sprintf("mixer: prepared %d Hz, block %d, %d channels", sampleRate, blockSize, numChannels))
}

// Release releases all attached decks. Mixer must be prepared again
// before the next pull.
func (m *Mixer) Release() {
	m.m.Lock()
	defer m.m.Unlock()
	m.prepared.Store(false)
	for _, d := range *m.decks.Load() {
		d.Release()
	}
}

// PullNextBlock mixes attached decks into out. Invalid output produces
// silence for whatever can be written and is counted, it never panics.
// Blocks longer than prepared block size are mixed in chunks.
func (m *Mixer) PullNextBlock(out signal.Float64) {
	if !m.valid(out) {
		for c := range out {
			for i := range out[c] {
				out[c][i] = 0
			}
		}
		m.silence.Add(1)
		return
	}
	decks := *m.decks.Load()
	t := m.tap.Load()
	size := out.Size()
	for start := 0; start < size; start += m.blockSize {
		n := m.blockSize
		if start+n > size {
			n = size - start
		}
		o := out.View(m.outView, start, n)
		o.Zero()
		s := m.scratch.View(m.view, 0, n)
		for _, d := range decks {
			d.PullNextBlock(s)
			o.Add(s)
		}
		if t != nil && !t.Push(o) {
			m.drops.Add(1)
		}
	}
	if m.measure != nil {
		m.measure(int64(size))
	}
}

func (m *Mixer) valid(out signal.Float64) bool {
	if !m.prepared.Load() || m.blockSize <= 0 || out == nil || out.NumChannels() != m.numChannels {
		return false
	}
	size := out.Size()
	for c := range out {
		if out[c] == nil || len(out[c]) != size {
			return false
		}
	}
	return true
}
