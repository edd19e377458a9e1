package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pipelined/djdeck/deck"
	"github.com/pipelined/djdeck/playlist"
	"github.com/pipelined/djdeck/tap"
	"github.com/pipelined/djdeck/waveform"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#FF6F00")
	mutedColor   = lipgloss.Color("#888888")
	playedColor  = lipgloss.Color("#00AAFF")
	errorColor   = lipgloss.Color("#A40000")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	playedStyle = lipgloss.NewStyle().
			Foreground(playedColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	deckStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	selectedDeckStyle = deckStyle.
				BorderForeground(primaryColor)
)

const meterWidth = 20

// View renders decks, library and the status line.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("djdeck"))
	b.WriteString(" ")
	b.WriteString(renderMeter(m.master))
	b.WriteString("\n")

	panels := make([]string, len(m.decks))
	width := m.Width/len(m.decks) - 4
	if width < 20 {
		width = 20
	}
	for i := range m.decks {
		panels[i] = renderDeck(m, i, width)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	b.WriteString(renderLibrary(m.tracks, m.cursor))
	b.WriteString("\n")
	b.WriteString(renderStatusLine(m))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab deck • space play/stop • ←/→ seek • +/- gain • [/] speed • b/B m/M t/T eq • d/D damping\n↑/↓ select • enter load • i import • / search • x remove • s save • q quit"))
	return b.String()
}

func renderDeck(m Model, i, width int) string {
	d := m.decks[i]
	s := d.status
	var b strings.Builder

	title := "no track loaded"
	if s.Loaded {
		title = s.Title
	}
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(fmt.Sprintf("Deck %d", i+1)), title)

	state := mutedStyle.Render(s.State.String())
	if s.State == deck.Playing {
		state = playedStyle.Render(s.State.String())
	}
	fmt.Fprintf(&b, "%s %s / %s (%.1f%%)\n", state,
		playlist.FormatLength(s.PositionSeconds), playlist.FormatLength(s.LengthSeconds), s.Position)

	played, rest := waveform.Render(d.thumbnail, width, s.Position/100)
	b.WriteString(playedStyle.Render(played))
	b.WriteString(mutedStyle.Render(rest))
	b.WriteString("\n")

	var meter string
	if i < len(m.meters) {
		meter = renderMeter(m.meters[i])
	}
	fmt.Fprintf(&b, "level %s\n", meter)

	p := s.Parameters
	fmt.Fprintf(&b, "gain %.2f  speed %.2f\n", p.Gain, p.Speed)
	fmt.Fprintf(&b, "bass %+.0f dB  mid %+.0f dB  treble %+.0f dB\n", p.BassGainDB, p.MidGainDB, p.TrebleGainDB)
	fmt.Fprintf(&b, "damping %.1f", p.ReverbDamping)

	style := deckStyle
	if i == m.selected {
		style = selectedDeckStyle
	}
	return style.Width(width).Render(b.String())
}

// renderMeter draws the peak as a bar.
func renderMeter(meter *tap.Meter) string {
	if meter == nil {
		return mutedStyle.Render(strings.Repeat("·", meterWidth))
	}
	peak := meter.Peak()
	n := int(math.Round(math.Min(peak, 1) * meterWidth))
	bar := playedStyle.Render(strings.Repeat("█", n))
	if peak >= 1 {
		bar = errorStyle.Render(strings.Repeat("█", n))
	}
	return bar + mutedStyle.Render(strings.Repeat("·", meterWidth-n))
}

func renderLibrary(tracks []playlist.Track, cursor int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Library"))
	b.WriteString("\n")
	if len(tracks) == 0 {
		b.WriteString(mutedStyle.Render("  empty, press i to import a file"))
		b.WriteString("\n")
		return b.String()
	}
	for i, t := range tracks {
		line := fmt.Sprintf("%-40s %6s", t.Title, t.Length)
		if i == cursor {
			b.WriteString(titleStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderStatusLine(m Model) string {
	switch m.mode {
	case modeImport:
		return "import path: " + m.input + "█"
	case modeSearch:
		return "search title: " + m.input + "█"
	}
	if m.err != nil {
		return errorStyle.Render("Error: ") + m.err.Error()
	}
	return mutedStyle.Render(m.message)
}
