package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pipelined/djdeck/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DJDECK_SAMPLE_RATE",
		"DJDECK_BLOCK_SIZE",
		"DJDECK_POLL_MS",
		"DJDECK_TAP_SLOTS",
		"DJDECK_LIBRARY",
		"DJDECK_REVERB_ROOM",
		"DJDECK_REVERB_WET",
		"DJDECK_REVERB_DRY",
	} {
		t.Setenv(key, "")
	}
	cfg := config.Load()
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 512, cfg.BlockSize)
	assert.Equal(t, 2, cfg.NumChannels)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 8, cfg.TapSlots)
	assert.Equal(t, config.DefaultLibraryPath(), cfg.LibraryPath)
	assert.Equal(t, 0.0, cfg.ReverbRoomSize)
	assert.Equal(t, 0.0, cfg.ReverbWet)
	assert.Equal(t, 1.0, cfg.ReverbDry)
}

func TestLoadOverrides(t *testing.T) {
	tests := []struct {
		key    string
		value  string
		assert func(*testing.T, config.Config)
	}{
		{
			key:   "DJDECK_SAMPLE_RATE",
			value: "48000",
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 48000, cfg.SampleRate)
			},
		},
		{
			key:   "DJDECK_BLOCK_SIZE",
			value: "-1",
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, config.DefaultBlockSize, cfg.BlockSize)
			},
		},
		{
			key:   "DJDECK_POLL_MS",
			value: "250",
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
			},
		},
		{
			key:   "DJDECK_LIBRARY",
			value: "/tmp/lib.csv",
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "/tmp/lib.csv", cfg.LibraryPath)
			},
		},
		{
			key:   "DJDECK_REVERB_WET",
			value: "1.5",
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 0.0, cfg.ReverbWet)
			},
		},
		{
			key:   "DJDECK_REVERB_ROOM",
			value: "0.3",
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 0.3, cfg.ReverbRoomSize)
			},
		},
	}
	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			t.Setenv(test.key, test.value)
			test.assert(t, config.Load())
		})
	}
}
