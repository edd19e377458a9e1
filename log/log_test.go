package log_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/djdeck/log"
)

func TestToFile(t *testing.T) {
	log.SetDebug(true)
	defer log.SetDebug(false)

	path := filepath.Join(t.TempDir(), "djdeck.log")
	l, closer, err := log.ToFile(path)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.Debug("deck ignored gain")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "deck ignored gain")

	_, _, err = log.ToFile(filepath.Join(t.TempDir(), "missing", "djdeck.log"))
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	var l log.Logger = log.Discard()
	assert.NotPanics(t, func() { l.Warn("dropped") })
}
