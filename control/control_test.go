package control_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/djdeck/control"
	"github.com/pipelined/djdeck/deck"
	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/playlist"
	"github.com/pipelined/djdeck/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newDispatcher(t *testing.T) (*control.Dispatcher, []*deck.Deck, string) {
	t.Helper()
	registry := test.Registry()
	decks := []*deck.Deck{deck.New(registry), deck.New(registry)}
	for _, d := range decks {
		d.Prepare(test.SampleRate, test.BufferSize, 2)
	}
	libraryPath := filepath.Join(t.TempDir(), "audioLibrary.csv")
	return control.NewDispatcher(decks, playlist.New(registry, nil), libraryPath, nil), decks, libraryPath
}

func TestDispatchDeck(t *testing.T) {
	path := test.WriteWav(t, "track.wav", test.SampleRate, 2, 4*test.SampleRate, test.Constant(0.1))
	ctx := context.Background()
	d, decks, _ := newDispatcher(t)

	commands := []control.Command{
		{Kind: control.Load, Deck: 1, Path: path},
		{Kind: control.Gain, Deck: 1, Value: 2},
		{Kind: control.Speed, Deck: 1, Value: 1.25},
		{Kind: control.Bass, Deck: 1, Value: -3},
		{Kind: control.Mid, Deck: 1, Value: 4},
		{Kind: control.Treble, Deck: 1, Value: 5},
		{Kind: control.Damping, Deck: 1, Value: 0.5},
		{Kind: control.Position, Deck: 1, Value: 50},
		{Kind: control.Play, Deck: 1},
	}
	for _, cmd := range commands {
		require.NoError(t, d.Dispatch(ctx, cmd), cmd.Kind.String())
	}

	status := d.Status()
	require.Len(t, status, 2)
	assert.False(t, status[0].Loaded)
	assert.Equal(t, deck.Stopped, status[0].State)

	s := status[1]
	assert.Equal(t, decks[1].ID(), s.ID)
	assert.True(t, s.Loaded)
	assert.Equal(t, "track", s.Title)
	assert.Equal(t, deck.Playing, s.State)
	assert.InDelta(t, 50, s.Position, 0.01)
	assert.InDelta(t, 2, s.PositionSeconds, 0.01)
	assert.InDelta(t, 4, s.LengthSeconds, 0.01)
	assert.Equal(t, deck.Parameters{
		Gain:            2,
		Speed:           1.25,
		BassGainDB:      -3,
		MidGainDB:       4,
		TrebleGainDB:    5,
		ReverbDamping:   0.5,
		PositionSeconds: s.PositionSeconds,
	}, s.Parameters)

	require.NoError(t, d.Dispatch(ctx, control.Command{Kind: control.Stop, Deck: 1}))
	assert.Equal(t, deck.Stopped, decks[1].State())

	// out of range values aren't errors
	require.NoError(t, d.Dispatch(ctx, control.Command{Kind: control.Gain, Deck: 1, Value: 20}))
	assert.Equal(t, 2.0, decks[1].Parameters().Gain)
}

func TestDispatchErrors(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDispatcher(t)

	tests := []struct {
		cmd control.Command
		err error
	}{
		{cmd: control.Command{Kind: control.Play, Deck: 2}, err: control.ErrUnknownDeck},
		{cmd: control.Command{Kind: control.Gain, Deck: -1, Value: 1}, err: control.ErrUnknownDeck},
		{cmd: control.Command{Kind: control.Load, Deck: 0, Path: filepath.Join(t.TempDir(), "missing.wav")}, err: format.ErrNotFound},
		{cmd: control.Command{Kind: control.Remove, Index: 3}, err: control.ErrUnknownTrack},
		{cmd: control.Command{Kind: control.Kind(42), Deck: 0}, err: control.ErrUnknownCommand},
	}
	for _, c := range tests {
		err := d.Dispatch(ctx, c.cmd)
		assert.True(t, errors.Is(err, c.err), "%v: %v", c.cmd.Kind, err)
	}
}

func TestDispatchLibrary(t *testing.T) {
	path := test.WriteWav(t, "song.wav", test.SampleRate, 2, 2*test.SampleRate, test.Constant(0.1))
	ctx := context.Background()
	d, _, libraryPath := newDispatcher(t)

	require.NoError(t, d.Dispatch(ctx, control.Command{Kind: control.Import, Path: path}))
	assert.Equal(t, 1, d.Library().Len())
	err := d.Dispatch(ctx, control.Command{Kind: control.Import, Path: path})
	assert.True(t, errors.Is(err, playlist.ErrDuplicate))

	require.NoError(t, d.Dispatch(ctx, control.Command{Kind: control.Save}))
	data, err := os.ReadFile(libraryPath)
	require.NoError(t, err)
	assert.Equal(t, path+",0:02\n", string(data))

	require.NoError(t, d.Dispatch(ctx, control.Command{Kind: control.Remove, Index: 0}))
	assert.Equal(t, 0, d.Library().Len())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "load", control.Load.String())
	assert.Equal(t, "save", control.Save.String())
	assert.Equal(t, "kind(42)", control.Kind(42).String())
}

func TestThumbnail(t *testing.T) {
	path := test.WriteWav(t, "track.wav", test.SampleRate, 2, test.SampleRate, test.Constant(0.5))
	d, _, _ := newDispatcher(t)
	assert.Equal(t, 2, d.NumDecks())

	peaks, err := d.Thumbnail(0, 16)
	require.NoError(t, err)
	assert.Empty(t, peaks)

	require.NoError(t, d.Dispatch(context.Background(), control.Command{Kind: control.Load, Deck: 0, Path: path}))
	peaks, err = d.Thumbnail(0, 16)
	require.NoError(t, err)
	assert.Len(t, peaks, 16)

	_, err = d.Thumbnail(5, 16)
	assert.True(t, errors.Is(err, control.ErrUnknownDeck))
}
