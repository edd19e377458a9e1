//go:build portaudio
// +build portaudio

package portaudio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/djdeck/deck"
	"github.com/pipelined/djdeck/mixer"
	"github.com/pipelined/djdeck/portaudio"
	"github.com/pipelined/djdeck/test"
)

func TestOutput(t *testing.T) {
	path := test.WriteWav(t, "sine.wav", test.SampleRate, 1, test.SampleRate/2, test.Sine(440, 0.2, test.SampleRate))
	d := deck.New(test.Registry())
	m := mixer.New(nil, d)

	out, err := portaudio.Open(m, test.SampleRate, test.BufferSize, nil)
	require.NoError(t, err)
	_, err = d.Load(path)
	require.NoError(t, err)
	d.Start()

	require.NoError(t, out.Start())
	time.Sleep(700 * time.Millisecond)
	require.NoError(t, out.Stop())
	require.NoError(t, out.Close())
	assert.Equal(t, deck.Stopped, d.State())
	assert.Equal(t, 100.0, d.PositionRelative())
}
