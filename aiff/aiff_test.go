package aiff_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	goaiff "github.com/go-audio/aiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/djdeck/aiff"
	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/test"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		header   []byte
		expected bool
	}{
		{header: []byte("FORM\x00\x00\x00\x00AIFF"), expected: true},
		{header: []byte("FORM\x00\x00\x00\x00AIFC"), expected: true},
		{header: []byte("FORM\x00\x00\x00\x008SVX"), expected: false},
		{header: []byte("RIFF\x00\x00\x00\x00WAVE"), expected: false},
		{header: []byte("FORM"), expected: false},
	}
	for _, c := range tests {
		assert.Equal(t, c.expected, aiff.Codec{}.Sniff(c.header), "header %q", c.header)
	}
}

func TestDecode(t *testing.T) {
	const (
		numChannels = 2
		frames      = 2000
	)
	path := filepath.Join(t.TempDir(), "sample.aiff")
	f, err := os.Create(path)
	require.NoError(t, err)
	in := test.Signal(numChannels, frames, test.Sine(220, 0.25, test.SampleRate))
	e := goaiff.NewEncoder(f, test.SampleRate, 16, numChannels)
	err = e.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: test.SampleRate},
		Data:           in.AsInterInt(signal.BitDepth16),
		SourceBitDepth: 16,
	})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, f.Close())

	registry := format.NewRegistry(aiff.Codec{})
	props, err := registry.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, test.SampleRate, props.SampleRate)
	assert.Equal(t, numChannels, props.NumChannels)
	assert.Equal(t, int64(frames), props.Frames)

	decoded, err := registry.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "aiff", decoded.Codec)
	assert.Equal(t, frames, decoded.Samples.Size())
	for c := range in {
		for i := range in[c] {
			assert.InDelta(t, in[c][i], decoded.Samples[c][i], 1e-4)
		}
	}
}
