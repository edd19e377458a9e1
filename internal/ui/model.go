// Package ui provides the Bubbletea terminal user interface of the decks.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pipelined/djdeck/control"
	"github.com/pipelined/djdeck/deck"
	"github.com/pipelined/djdeck/playlist"
	"github.com/pipelined/djdeck/tap"
	"github.com/pipelined/djdeck/waveform"
)

// Control steps of key bindings.
const (
	gainStep     = 0.1
	speedStep    = 0.05
	positionStep = 5.0
	bandStep     = 1.0
	dampingStep  = 0.1

	thumbnailBuckets = 200
)

// mode of the input line.
type mode int

const (
	modeNormal mode = iota
	modeImport
	modeSearch
)

// deckView holds what UI knows about a deck between polls.
type deckView struct {
	status    control.DeckStatus
	path      string
	thumbnail []waveform.Peak
}

// Model is the Bubbletea model of the deck UI.
type Model struct {
	ctx        context.Context
	dispatcher *control.Dispatcher
	meters     []*tap.Meter
	master     *tap.Meter
	poll       time.Duration

	decks    []deckView
	selected int
	cursor   int
	tracks   []playlist.Track

	mode    mode
	input   string
	message string
	err     error

	Width int
}

// New returns model. Meters are optional, one per deck.
func New(ctx context.Context, dispatcher *control.Dispatcher, poll time.Duration, master *tap.Meter, meters ...*tap.Meter) Model {
	m := Model{
		ctx:        ctx,
		dispatcher: dispatcher,
		meters:     meters,
		master:     master,
		poll:       poll,
		decks:      make([]deckView, dispatcher.NumDecks()),
		tracks:     dispatcher.Library().Tracks(),
		Width:      100,
	}
	// key bindings step from current parameters.
	m.refreshStatus()
	return m
}

// Init starts status polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh is a command which triggers immediate poll.
func (m Model) refresh() tea.Msg {
	return tickMsg(time.Now())
}

// dispatch runs the command outside of the UI loop.
func (m Model) dispatch(cmd control.Command) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{cmd: cmd, err: m.dispatcher.Dispatch(m.ctx, cmd)}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		return m, nil
	case tickMsg:
		m.refreshStatus()
		return m, m.tick()
	case resultMsg:
		m.err = msg.err
		if msg.err == nil {
			m.message = describe(msg.cmd)
		} else {
			m.message = ""
		}
		m.tracks = m.dispatcher.Library().Tracks()
		if m.cursor >= len(m.tracks) && len(m.tracks) > 0 {
			m.cursor = len(m.tracks) - 1
		}
		m.refreshStatus()
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

// refreshStatus reads deck status and refreshes thumbnails of changed tracks.
func (m *Model) refreshStatus() {
	for i, s := range m.dispatcher.Status() {
		if i >= len(m.decks) {
			break
		}
		d := &m.decks[i]
		d.status = s
		if s.ID+s.Title != d.path {
			d.path = s.ID + s.Title
			d.thumbnail, _ = m.dispatcher.Thumbnail(i, thumbnailBuckets)
		}
	}
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.decks[m.selected].status.Parameters
	deckCmd := func(kind control.Kind, value float64) tea.Cmd {
		return m.dispatch(control.Command{Kind: kind, Deck: m.selected, Value: value})
	}
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.selected = (m.selected + 1) % len(m.decks)
	case " ":
		if m.decks[m.selected].status.State == deck.Playing {
			return m, deckCmd(control.Stop, 0)
		}
		return m, deckCmd(control.Play, 0)
	case "+", "=":
		return m, deckCmd(control.Gain, p.Gain+gainStep)
	case "-":
		return m, deckCmd(control.Gain, p.Gain-gainStep)
	case "]":
		return m, deckCmd(control.Speed, p.Speed+speedStep)
	case "[":
		return m, deckCmd(control.Speed, p.Speed-speedStep)
	case "right":
		return m, deckCmd(control.Position, m.decks[m.selected].status.Position+positionStep)
	case "left":
		return m, deckCmd(control.Position, m.decks[m.selected].status.Position-positionStep)
	case "B":
		return m, deckCmd(control.Bass, p.BassGainDB+bandStep)
	case "b":
		return m, deckCmd(control.Bass, p.BassGainDB-bandStep)
	case "M":
		return m, deckCmd(control.Mid, p.MidGainDB+bandStep)
	case "m":
		return m, deckCmd(control.Mid, p.MidGainDB-bandStep)
	case "T":
		return m, deckCmd(control.Treble, p.TrebleGainDB+bandStep)
	case "t":
		return m, deckCmd(control.Treble, p.TrebleGainDB-bandStep)
	case "D":
		return m, deckCmd(control.Damping, p.ReverbDamping+dampingStep)
	case "d":
		return m, deckCmd(control.Damping, p.ReverbDamping-dampingStep)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tracks)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.tracks) {
			return m, m.dispatch(control.Command{Kind: control.Load, Deck: m.selected, Path: m.tracks[m.cursor].Path})
		}
		m.message = "select a track to load"
	case "x":
		if m.cursor < len(m.tracks) {
			return m, m.dispatch(control.Command{Kind: control.Remove, Index: m.cursor})
		}
	case "s":
		return m, m.dispatch(control.Command{Kind: control.Save})
	case "i":
		m.mode = modeImport
		m.input = ""
	case "/":
		m.mode = modeSearch
		m.input = ""
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode = modeNormal
	case tea.KeyEnter:
		input := m.input
		current := m.mode
		m.mode = modeNormal
		m.input = ""
		if current == modeImport {
			if input == "" {
				return m, nil
			}
			return m, m.dispatch(control.Command{Kind: control.Import, Path: input})
		}
		if i := m.dispatcher.Library().Search(input); i >= 0 {
			m.cursor = i
			m.message = ""
		} else if input != "" {
			m.message = fmt.Sprintf("no title contains %q", input)
		}
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func describe(cmd control.Command) string {
	switch cmd.Kind {
	case control.Load:
		return fmt.Sprintf("deck %d: loaded %s", cmd.Deck+1, filepath.Base(cmd.Path))
	case control.Import:
		return fmt.Sprintf("imported %s", filepath.Base(cmd.Path))
	case control.Save:
		return "library saved"
	case control.Remove:
		return "track removed"
	}
	return ""
}
