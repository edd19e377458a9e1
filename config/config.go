// Package config loads runtime settings of the deck application.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"
)

const (
	// DefaultSampleRate is used when device rate is not configured.
	DefaultSampleRate = 44100
	// DefaultBlockSize is a number of frames per device callback.
	DefaultBlockSize = 512
	// DefaultNumChannels is fixed for the reference deployment.
	DefaultNumChannels = 2
	// DefaultPollInterval is the period of UI position refresh.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultTapSlots is a number of preallocated frames in each tap.
	DefaultTapSlots = 8

	libraryFile = "audioLibrary.csv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	SampleRate   int
	BlockSize    int
	NumChannels  int
	PollInterval time.Duration
	TapSlots     int

	// LibraryPath is the playlist csv location.
	LibraryPath string

	// Reverb construction defaults. Only damping is adjustable at runtime.
	ReverbRoomSize float64
	ReverbWet      float64
	ReverbDry      float64
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:     envInt("DJDECK_SAMPLE_RATE", DefaultSampleRate),
		BlockSize:      envInt("DJDECK_BLOCK_SIZE", DefaultBlockSize),
		NumChannels:    DefaultNumChannels,
		PollInterval:   time.Duration(envInt("DJDECK_POLL_MS", int(DefaultPollInterval/time.Millisecond))) * time.Millisecond,
		TapSlots:       envInt("DJDECK_TAP_SLOTS", DefaultTapSlots),
		LibraryPath:    envStr("DJDECK_LIBRARY", DefaultLibraryPath()),
		ReverbRoomSize: envUnit("DJDECK_REVERB_ROOM", 0),
		ReverbWet:      envUnit("DJDECK_REVERB_WET", 0),
		ReverbDry:      envUnit("DJDECK_REVERB_DRY", 1),
	}
}

// DefaultLibraryPath returns ~/.djdeck/audioLibrary.csv. If home directory
// cannot be resolved, the file is kept in the working directory.
func DefaultLibraryPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return libraryFile
	}
	return filepath.Join(home, ".djdeck", libraryFile)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// envUnit reads a float in [0, 1].
func envUnit(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			return f
		}
	}
	return fallback
}
