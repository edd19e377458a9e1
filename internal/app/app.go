// Package app assembles decks, mixer, taps and library into a running
// engine. Device output is attached by the caller.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pipelined/djdeck/aiff"
	"github.com/pipelined/djdeck/config"
	"github.com/pipelined/djdeck/control"
	"github.com/pipelined/djdeck/deck"
	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/log"
	"github.com/pipelined/djdeck/mixer"
	"github.com/pipelined/djdeck/mp3"
	"github.com/pipelined/djdeck/playlist"
	"github.com/pipelined/djdeck/reverb"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/tap"
	"github.com/pipelined/djdeck/wav"
)

// NumDecks is a number of decks of the engine.
const NumDecks = 2

// Recorder bit rate and quality of mp3 recordings.
const (
	mp3BitRate = 192
	mp3Quality = 2
)

// ErrRecordFormat is returned when record path extension is not .wav or
// .mp3.
var ErrRecordFormat = errors.New("record format must be wav or mp3")

// Recorder writes the mix into a file.
type Recorder interface {
	tap.Writer
	io.Closer
}

// Engine is a set of wired components.
type Engine struct {
	logger log.Logger

	Registry   *format.Registry
	Decks      []*deck.Deck
	Mixer      *mixer.Mixer
	Library    *playlist.Library
	Dispatcher *control.Dispatcher

	// Meters are fed by deck taps, Master by the mix tap.
	Meters []*tap.Meter
	Master *tap.Meter

	deckTaps  []*tap.Tap
	masterTap *tap.Tap
	recorder  Recorder
}

// NewRegistry returns registry with every supported codec.
func NewRegistry() *format.Registry {
	return format.NewRegistry(wav.Codec{}, aiff.Codec{}, mp3.Codec{})
}

// New builds the engine from configuration. Library is loaded from
// cfg.LibraryPath. If recordPath is not empty, the mix is recorded into
// it.
func New(cfg config.Config, recordPath string, logger log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Discard()
	}
	e := &Engine{
		logger:   logger,
		Registry: NewRegistry(),
		Master:   &tap.Meter{},
	}
	params := reverb.Parameters{
		RoomSize: cfg.ReverbRoomSize,
		Damping:  reverb.DefaultParameters.Damping,
		Wet:      cfg.ReverbWet,
		Dry:      cfg.ReverbDry,
	}
	mixerDecks := make([]mixer.Deck, 0, NumDecks)
	for i := 0; i < NumDecks; i++ {
		d := deck.New(e.Registry, deck.WithLogger(logger), deck.WithReverb(params))
		t := tap.New(cfg.TapSlots, cfg.NumChannels, cfg.BlockSize)
		d.SetTap(t)
		e.Decks = append(e.Decks, d)
		e.deckTaps = append(e.deckTaps, t)
		e.Meters = append(e.Meters, &tap.Meter{})
		mixerDecks = append(mixerDecks, d)
	}
	e.Mixer = mixer.New(logger, mixerDecks...)
	e.masterTap = tap.New(cfg.TapSlots, cfg.NumChannels, cfg.BlockSize)
	e.Mixer.SetTap(e.masterTap)

	e.Library = playlist.New(e.Registry, logger)
	if err := e.Library.LoadFile(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("load library %s: %w", cfg.LibraryPath, err)
	}
	e.Dispatcher = control.NewDispatcher(e.Decks, e.Library, cfg.LibraryPath, logger)

	if recordPath != "" {
		r, err := NewRecorder(recordPath, cfg.SampleRate, cfg.NumChannels)
		if err != nil {
			return nil, err
		}
		e.recorder = r
	}
	return e, nil
}

// NewRecorder creates a wav or mp3 recorder depending on path extension.
func NewRecorder(path string, sampleRate, numChannels int) (Recorder, error) {
	var (
		r   Recorder
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		r, err = wav.Create(path, sampleRate, numChannels, signal.BitDepth16)
	case ".mp3":
		r, err = mp3.Create(path, sampleRate, numChannels, mp3BitRate, mp3Quality)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrRecordFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("create recorder: %w", err)
	}
	return r, nil
}

// Run consumes taps until the context is done. The recorder is closed
// when Run returns.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range e.deckTaps {
		t, meter := t, e.Meters[i]
		g.Go(func() error {
			return t.Run(ctx, meter.Handle)
		})
	}
	master := e.Master.Handle
	if e.recorder != nil {
		record := tap.Sink(e.recorder)
		master = func(f tap.Frame) error {
			e.Master.Handle(f)
			return record(f)
		}
	}
	g.Go(func() error {
		return e.masterTap.Run(ctx, master)
	})
	err := g.Wait()
	if e.recorder != nil {
		if cerr := e.recorder.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close recorder: %w", cerr)
		}
	}
	e.logger.Debug(fmt.Sprintf("engine: taps stopped, mix frames dropped %d", e.masterTap.Dropped()))
	return err
}
