// Package deck composes a single player: track source, speed, equalizer,
// reverb and gain stages pulled in fixed order.
//
// Setters and Load are called from the control goroutine. PullNextBlock is
// called from the audio thread: it doesn't lock, allocate or do I/O.
package deck

import (
	"expvar"
	"fmt"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/pipelined/djdeck/eq"
	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/gain"
	"github.com/pipelined/djdeck/log"
	"github.com/pipelined/djdeck/metric"
	"github.com/pipelined/djdeck/reverb"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/speed"
	"github.com/pipelined/djdeck/tap"
	"github.com/pipelined/djdeck/track"
	"github.com/pipelined/djdeck/waveform"
)

// State is a transport state of the deck.
type State int32

const (
	// Stopped deck outputs silence and keeps its position.
	Stopped State = iota
	// Playing deck pulls its track.
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Parameters is a snapshot of deck playback parameters.
type Parameters struct {
	Gain            float64
	Speed           float64
	BassGainDB      float64
	MidGainDB       float64
	TrebleGainDB    float64
	ReverbDamping   float64
	PositionSeconds float64
}

// Deck is a single player.
type Deck struct {
	id     string
	logger log.Logger

	source *track.Source
	speed  *speed.Stage
	eq     *eq.Stage
	reverb *reverb.Stage
	gain   *gain.Stage

	state atomic.Int32
	tap   atomic.Pointer[tap.Tap]

	// fields below are owned by the audio thread after Prepare.
	pull    speed.PullFunc
	epoch   uint64
	meter   metric.ResetFunc
	measure metric.MeasureFunc
	drops   *expvar.Int
}

// Option configures a deck.
type Option func(*Deck)

// WithLogger sets deck logger.
func WithLogger(l log.Logger) Option {
	return func(d *Deck) {
		d.logger = l
	}
}

// WithReverb sets construction reverb parameters.
func WithReverb(p reverb.Parameters) Option {
	return func(d *Deck) {
		d.reverb = reverb.New(p)
	}
}

// New returns stopped deck without a track.
func New(registry *format.Registry, options ...Option) *Deck {
	d := &Deck{
		id:     xid.New().String(),
		logger: log.Discard(),
		source: track.New(registry),
		speed:  speed.New(),
		eq:     eq.New(),
		reverb: reverb.New(reverb.DefaultParameters),
		gain:   gain.New(),
	}
	d.pull = d.source.Pull
	for _, option := range options {
		option(d)
	}
	d.drops = metric.Drops(d)
	return d
}

// ID returns unique deck id.
func (d *Deck) ID() string {
	return d.id
}

// Load decodes the file and replaces the current track. Deck is stopped
// regardless of the result. If error is returned, previous track and its
// position are kept.
func (d *Deck) Load(path string) (track.Info, error) {
	d.state.Store(int32(Stopped))
	info, err := d.source.Load(path)
	if err != nil {
		d.logger.Warn(fmt.Sprintf("deck %s: %v", d.id, err))
		return track.Info{}, err
	}
	d.logger.Info(fmt.Sprintf("deck %s: loaded %s (%s, %d Hz, %d channels, %.1fs)",
		d.id, info.Title, info.Codec, info.SampleRate, info.NumChannels, info.LengthSeconds))
	return info, nil
}

// Start starts playback. No-op if already playing or no track loaded.
func (d *Deck) Start() bool {
	if !d.source.Loaded() {
		return false
	}
	return d.state.CompareAndSwap(int32(Stopped), int32(Playing))
}

// Stop stops playback, position is kept.
func (d *Deck) Stop() {
	d.state.Store(int32(Stopped))
}

// State returns transport state.
func (d *Deck) State() State {
	return State(d.state.Load())
}

// SetGain sets linear gain in (0, 10).
func (d *Deck) SetGain(g float64) {
	d.ignored("gain", g, d.gain.SetGain(g))
}

// SetSpeed sets speed ratio in (0, 100).
func (d *Deck) SetSpeed(r float64) {
	d.ignored("speed", r, d.speed.SetRatio(r))
}

// SetBassGain sets bass gain in [-24, 24] dB.
func (d *Deck) SetBassGain(db float64) {
	d.ignored("bass", db, d.eq.SetBandGain(eq.Bass, db))
}

// SetMidGain sets mid gain in [-24, 24] dB.
func (d *Deck) SetMidGain(db float64) {
	d.ignored("mid", db, d.eq.SetBandGain(eq.Mid, db))
}

// SetTrebleGain sets treble gain in [-24, 24] dB.
func (d *Deck) SetTrebleGain(db float64) {
	d.ignored("treble", db, d.eq.SetBandGain(eq.Treble, db))
}

// SetDamping sets reverb damping in [0, 1].
func (d *Deck) SetDamping(v float64) {
	d.ignored("damping", v, d.reverb.SetDamping(v))
}

// SetPosition moves playback to provided second. Values past the end are
// clamped to the track length, negative values are ignored.
func (d *Deck) SetPosition(seconds float64) {
	if !(seconds >= 0) {
		d.ignored("position", seconds, false)
		return
	}
	d.source.SeekSeconds(seconds)
}

// SetPositionRelative moves playback to pct percent of the track length,
// pct must be in (0, 100). Sub-second precision is not guaranteed.
func (d *Deck) SetPositionRelative(pct float64) {
	if !(pct > 0 && pct < 100) {
		d.ignored("relative position", pct, false)
		return
	}
	d.SetPosition(pct / 100 * d.source.LengthSeconds())
}

// PositionRelative returns position in percent of the track length, 0 if
// no track loaded.
func (d *Deck) PositionRelative() float64 {
	length := d.source.LengthSeconds()
	if length == 0 {
		return 0
	}
	return d.source.PositionSeconds() / length * 100
}

// PositionSeconds returns position in seconds.
func (d *Deck) PositionSeconds() float64 {
	return d.source.PositionSeconds()
}

// LengthSeconds returns track length, 0 if no track loaded.
func (d *Deck) LengthSeconds() float64 {
	return d.source.LengthSeconds()
}

// Info returns loaded track info.
func (d *Deck) Info() (track.Info, bool) {
	return d.source.Info()
}

// Thumbnail returns waveform peaks of the loaded track.
func (d *Deck) Thumbnail(buckets int) []waveform.Peak {
	return waveform.Thumbnail(d.source.Samples(), buckets)
}

// Parameters returns current parameters.
func (d *Deck) Parameters() Parameters {
	return Parameters{
		Gain:            d.gain.Gain(),
		Speed:           d.speed.Ratio(),
		BassGainDB:      d.eq.BandGain(eq.Bass),
		MidGainDB:       d.eq.BandGain(eq.Mid),
		TrebleGainDB:    d.eq.BandGain(eq.Treble),
		ReverbDamping:   d.reverb.Parameters().Damping,
		PositionSeconds: d.source.PositionSeconds(),
	}
}

// SetTap sets the tap which receives copies of output blocks. Nil removes
// the tap.
func (d *Deck) SetTap(t *tap.Tap) {
	d.tap.Store(t)
}

// Unload stops the deck and drops its track.
func (d *Deck) Unload() {
	d.Stop()
	d.source.Unload()
}

// Prepare allocates stage buffers. It must be called before the first
// PullNextBlock and never concurrently with it.
func (d *Deck) Prepare(sampleRate, blockSize, numChannels int) {
	d.speed.Prepare(sampleRate, blockSize, numChannels)
	d.eq.Prepare(sampleRate, numChannels)
	d.reverb.Prepare(sampleRate, numChannels)
	d.epoch = d.source.Epoch()
	if d.meter == nil {
		d.meter = metric.Meter(d, sampleRate)
	}
	d.measure = d.meter()
	d.logger.Debug(fmt.Sprintf("deck %s: prepared %d Hz, block %d, %d channels", d.id, sampleRate, blockSize, numChannels))
}

// Release clears stage state. Deck can be prepared again.
func (d *Deck) Release() {
	d.speed.Reset()
	d.eq.Reset()
	d.reverb.Reset()
	d.measure = nil
}

// PullNextBlock fills the block with deck output. Stopped deck still runs
// its effects over silence, so reverb tails decay naturally.
func (d *Deck) PullNextBlock(b signal.Float64) {
	b.Zero()
	if State(d.state.Load()) == Playing {
		if e := d.source.Epoch(); e != d.epoch {
			d.epoch = e
			d.speed.Reset()
		}
		n := d.speed.Process(b, d.source.SampleRate(), d.pull)
		if n < b.Size() && d.source.AtEnd() {
			d.state.CompareAndSwap(int32(Playing), int32(Stopped))
		}
	}
	d.eq.Process(b)
	d.reverb.Process(b)
	d.gain.Process(b)

	if t := d.tap.Load(); t != nil && !t.Push(b) {
		d.drops.Add(1)
	}
	if d.measure != nil {
		d.measure(int64(b.Size()))
	}
}

func (d *Deck) ignored(name string, v float64, accepted bool) {
	if !accepted {
		d.logger.Debug(fmt.Sprintf("deck %s: %s %v out of range, ignored", d.id, name, v))
	}
}
