// Package test contains helper functions useful for testing djdeck packages.
package test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pipelined/djdeck/format"
	"github.com/pipelined/djdeck/signal"
	"github.com/pipelined/djdeck/wav"
)

const (
	// SampleRate is a default sample rate of generated assets.
	SampleRate = 44100
	// BufferSize is a default block size used in tests.
	BufferSize = 512
)

// SampleFunc returns sample value for channel and frame index.
type SampleFunc func(channel, frame int) float64

// Constant returns a function emitting constant value.
func Constant(v float64) SampleFunc {
	return func(int, int) float64 {
		return v
	}
}

// Sine returns a function emitting sine of frequency f at sample rate sr
// with amplitude a.
func Sine(f, a float64, sr int) SampleFunc {
	return func(_, i int) float64 {
		return a * math.Sin(2*math.Pi*f*float64(i)/float64(sr))
	}
}

// Ramp returns a function emitting frame index scaled by step. Used to
// check ordering and positions.
func Ramp(step float64) SampleFunc {
	return func(_, i int) float64 {
		return float64(i) * step
	}
}

// Signal generates a block of provided shape.
func Signal(numChannels, frames int, fn SampleFunc) signal.Float64 {
	s := signal.EmptyFloat64(numChannels, frames)
	for c := range s {
		for i := range s[c] {
			s[c][i] = fn(c, i)
		}
	}
	return s
}

// WriteWav writes 16-bit wav file into t.TempDir and returns its path.
func WriteWav(t testing.TB, name string, sampleRate, numChannels, frames int, fn SampleFunc) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	sink, err := wav.Create(path, sampleRate, numChannels, signal.BitDepth16)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	if frames > 0 {
		if err := sink.Write(Signal(numChannels, frames, fn)); err != nil {
			t.Fatalf("write wav: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
	return path
}

// WriteFile writes raw bytes into t.TempDir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// Registry returns a registry with wav codec only, enough for most tests.
func Registry() *format.Registry {
	return format.NewRegistry(wav.Codec{})
}
