package format_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/test"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		description string
		path        string
		expected    string
		err         error
	}{
		{description: "absolute", path: filepath.Join(dir, "a.wav"), expected: filepath.Join(dir, "a.wav")},
		{description: "file url", path: "file://" + filepath.ToSlash(filepath.Join(dir, "b.wav")), expected: filepath.Join(dir, "b.wav")},
		{description: "http url", path: "http://example.com/a.wav", err: format.ErrNotFound},
	}
	for _, c := range tests {
		resolved, err := format.Resolve(c.path)
		if c.err != nil {
			assert.ErrorIs(t, err, c.err, c.description)
			continue
		}
		require.NoError(t, err, c.description)
		assert.Equal(t, c.expected, resolved, c.description)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Night Drive", format.Title("/music/Night Drive.wav"))
	assert.Equal(t, "noext", format.Title("noext"))
}

func TestOpenErrors(t *testing.T) {
	r := test.Registry()
	assert.Equal(t, []string{"wav"}, r.Codecs())

	tests := []struct {
		description string
		path        string
		err         error
	}{
		{description: "missing", path: filepath.Join(t.TempDir(), "missing.wav"), err: format.ErrNotFound},
		{description: "directory", path: t.TempDir(), err: format.ErrNotFound},
		{description: "text", path: test.WriteFile(t, "notes.txt", []byte("just text")), err: format.ErrUnsupportedFormat},
		{description: "truncated", path: test.WriteFile(t, "short.wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt ")), err: format.ErrCorrupt},
	}
	for _, c := range tests {
		_, err := r.Open(c.path)
		assert.ErrorIs(t, err, c.err, c.description)
		var loadErr *format.LoadError
		require.True(t, errors.As(err, &loadErr), c.description)
		assert.Contains(t, loadErr.Error(), filepath.Base(c.path), c.description)

		_, err = r.Probe(c.path)
		assert.ErrorIs(t, err, c.err, c.description)
	}
}

func TestOpen(t *testing.T) {
	path := test.WriteWav(t, "tone.wav", test.SampleRate, 1, 1000, test.Constant(0.5))
	r := test.Registry()

	p, err := r.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, format.Properties{SampleRate: test.SampleRate, NumChannels: 1, Frames: 1000}, p)

	d, err := r.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "wav", d.Codec)
	assert.Equal(t, path, d.Path)
	assert.Equal(t, 1000, d.Samples.Size())
	assert.InDelta(t, 0.5, d.Samples.Peak(), 1e-3)
	assert.InDelta(t, 1000.0/test.SampleRate, d.Properties().LengthSeconds(), 1e-9)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
