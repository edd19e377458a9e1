package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pipelined/djdeck/config"
	"github.com/pipelined/djdeck/control"
	"github.com/pipelined/djdeck/internal/app"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		SampleRate:  test.SampleRate,
		BlockSize:   test.BufferSize,
		NumChannels: 2,
		TapSlots:    16,
		LibraryPath: filepath.Join(t.TempDir(), "library.csv"),
		ReverbDry:   1,
	}
}

func TestRecord(t *testing.T) {
	const blocks = 10
	cfg := testConfig(t)
	record := filepath.Join(t.TempDir(), "mix.wav")
	path := test.WriteWav(t, "loop.wav", test.SampleRate, 2, 2*test.SampleRate, test.Constant(0.25))

	e, err := app.New(cfg, record, nil)
	require.NoError(t, err)
	require.Len(t, e.Decks, app.NumDecks)

	ctx := context.Background()
	require.NoError(t, e.Dispatcher.Dispatch(ctx, control.Command{Kind: control.Load, Deck: 0, Path: path}))
	require.NoError(t, e.Dispatcher.Dispatch(ctx, control.Command{Kind: control.Play, Deck: 0}))

	e.Mixer.Prepare(cfg.SampleRate, cfg.BlockSize, cfg.NumChannels)
	out := signal.EmptyFloat64(cfg.NumChannels, cfg.BlockSize)
	for i := 0; i < blocks; i++ {
		e.Mixer.PullNextBlock(out)
	}
	e.Mixer.Release()

	// taps hold every block, canceled run drains them
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, e.Run(canceled))

	assert.InDelta(t, 0.25, e.Master.Peak(), 1e-3)
	assert.InDelta(t, 0.25, e.Meters[0].Peak(), 1e-3)
	assert.Equal(t, 0.0, e.Meters[1].Peak())

	decoded, err := e.Registry.Open(record)
	require.NoError(t, err)
	assert.Equal(t, blocks*cfg.BlockSize, decoded.Samples.Size())
	assert.InDelta(t, 0.25, decoded.Samples.Peak(), 1e-3)
}

func TestNewRecorder(t *testing.T) {
	dir := t.TempDir()
	_, err := app.NewRecorder(filepath.Join(dir, "mix.flac"), test.SampleRate, 2)
	assert.ErrorIs(t, err, app.ErrRecordFormat)

	r, err := app.NewRecorder(filepath.Join(dir, "mix.wav"), test.SampleRate, 2)
	require.NoError(t, err)
	assert.NoError(t, r.Close())

	_, err = app.NewRecorder(filepath.Join(dir, "missing", "mix.wav"), test.SampleRate, 2)
	assert.Error(t, err)
}

func TestLibraryLoaded(t *testing.T) {
	cfg := testConfig(t)
	path := test.WriteWav(t, "intro.wav", test.SampleRate, 1, test.SampleRate, test.Constant(0.1))

	e, err := app.New(cfg, "", nil)
	require.NoError(t, err)
	require.NoError(t, e.Dispatcher.Dispatch(context.Background(), control.Command{Kind: control.Import, Path: path}))
	require.NoError(t, e.Dispatcher.Dispatch(context.Background(), control.Command{Kind: control.Save}))

	e, err = app.New(cfg, "", nil)
	require.NoError(t, err)
	tracks := e.Library.Tracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, "intro", tracks[0].Title)
	assert.Equal(t, "0:01", tracks[0].Length)
}
