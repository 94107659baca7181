package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, lvl)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "index.log")

	logger, err := NewLogger("info", logFile)
	require.NoError(t, err)
	logger.WithField("run_id", "r1").Info("indexing started")
	logger.Debug("not written at info level")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "indexing started")
	assert.Contains(t, string(data), "run_id=r1")
	assert.NotContains(t, string(data), "not written")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger("chatty", "")
	assert.Error(t, err)
}
