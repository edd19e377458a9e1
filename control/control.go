// Package control is the control thread of the application. UI events are
// turned into commands and executed one at a time by the dispatcher.
package control

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pipelined/djdeck/deck"
	"github.com/pipelined/djdeck/log"
	"github.com/pipelined/djdeck/playlist"
	"github.com/pipelined/djdeck/waveform"
)

var (
	// ErrUnknownDeck is returned when command refers to missing deck.
	ErrUnknownDeck = errors.New("unknown deck")
	// ErrUnknownTrack is returned when command refers to missing library
	// track.
	ErrUnknownTrack = errors.New("unknown library track")
	// ErrUnknownCommand is returned for unsupported command kinds.
	ErrUnknownCommand = errors.New("unknown command")
)

// Kind is a command kind.
type Kind int

const (
	// Load loads Path into the deck.
	Load Kind = iota
	// Play starts the deck.
	Play
	// Stop stops the deck.
	Stop
	// Gain sets deck gain to Value.
	Gain
	// Speed sets deck speed ratio to Value.
	Speed
	// Position sets deck position to Value percent.
	Position
	// Bass sets deck bass gain to Value dB.
	Bass
	// Mid sets deck mid gain to Value dB.
	Mid
	// Treble sets deck treble gain to Value dB.
	Treble
	// Damping sets deck reverb damping to Value.
	Damping
	// Import adds Path to the library.
	Import
	// Remove deletes library track at Index.
	Remove
	// Save writes the library file.
	Save
)

var kindNames = map[Kind]string{
	Load:     "load",
	Play:     "play",
	Stop:     "stop",
	Gain:     "gain",
	Speed:    "speed",
	Position: "position",
	Bass:     "bass",
	Mid:      "mid",
	Treble:   "treble",
	Damping:  "damping",
	Import:   "import",
	Remove:   "remove",
	Save:     "save",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Command is a single control event. Deck is an index of the deck, Index
// is an index of the library track.
type Command struct {
	Kind  Kind
	Deck  int
	Value float64
	Path  string
	Index int
}

// DeckStatus is polled by the UI.
type DeckStatus struct {
	ID              string
	Title           string
	Loaded          bool
	State           deck.State
	Position        float64
	PositionSeconds float64
	LengthSeconds   float64
	Parameters      deck.Parameters
}

// Dispatcher executes commands sequentially.
type Dispatcher struct {
	logger      log.Logger
	decks       []*deck.Deck
	library     *playlist.Library
	libraryPath string

	m sync.Mutex
}

// NewDispatcher returns dispatcher for provided decks and library.
func NewDispatcher(decks []*deck.Deck, library *playlist.Library, libraryPath string, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Discard()
	}
	return &Dispatcher{
		logger:      logger,
		decks:       decks,
		library:     library,
		libraryPath: libraryPath,
	}
}

// Library returns dispatcher library.
func (d *Dispatcher) Library() *playlist.Library {
	return d.library
}

// Dispatch executes the command. Load and import errors are returned to
// the caller, out of range parameter values are ignored by the decks.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	d.m.Lock()
	defer d.m.Unlock()
	d.logger.Debug(fmt.Sprintf("control: %s deck=%d value=%v path=%q index=%d", cmd.Kind, cmd.Deck, cmd.Value, cmd.Path, cmd.Index))

	switch cmd.Kind {
	case Import:
		_, err := d.library.Import(ctx, cmd.Path)
		return err
	case Remove:
		if !d.library.Remove(cmd.Index) {
			return fmt.Errorf("remove %d: %w", cmd.Index, ErrUnknownTrack)
		}
		return nil
	case Save:
		return d.library.SaveFile(d.libraryPath)
	}

	dk, err := d.deck(cmd.Deck)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Kind, err)
	}
	switch cmd.Kind {
	case Load:
		_, err := dk.Load(cmd.Path)
		return err
	case Play:
		dk.Start()
	case Stop:
		dk.Stop()
	case Gain:
		dk.SetGain(cmd.Value)
	case Speed:
		dk.SetSpeed(cmd.Value)
	case Position:
		dk.SetPositionRelative(cmd.Value)
	case Bass:
		dk.SetBassGain(cmd.Value)
	case Mid:
		dk.SetMidGain(cmd.Value)
	case Treble:
		dk.SetTrebleGain(cmd.Value)
	case Damping:
		dk.SetDamping(cmd.Value)
	default:
		return fmt.Errorf("%s: %w", cmd.Kind, ErrUnknownCommand)
	}
	return nil
}

func (d *Dispatcher) deck(i int) (*deck.Deck, error) {
	if i < 0 || i >= len(d.decks) {
		return nil, fmt.Errorf("deck %d: %w", i, ErrUnknownDeck)
	}
	return d.decks[i], nil
}

// Status returns status of every deck. It only reads atomics, so it
// doesn't wait for running commands.
func (d *Dispatcher) Status() []DeckStatus {
	status := make([]DeckStatus, len(d.decks))
	for i, dk := range d.decks {
		info, loaded := dk.Info()
		status[i] = DeckStatus{
			ID:              dk.ID(),
			Title:           info.Title,
			Loaded:          loaded,
			State:           dk.State(),
			Position:        dk.PositionRelative(),
			PositionSeconds: dk.PositionSeconds(),
			LengthSeconds:   dk.LengthSeconds(),
			Parameters:      dk.Parameters(),
		}
	}
	return status
}

// NumDecks returns number of decks.
func (d *Dispatcher) NumDecks() int {
	return len(d.decks)
}

// Thumbnail returns waveform peaks of the track loaded into the deck.
func (d *Dispatcher) Thumbnail(i, buckets int) ([]waveform.Peak, error) {
	dk, err := d.deck(i)
	if err != nil {
		return nil, err
	}
	return dk.Thumbnail(buckets), nil
}
