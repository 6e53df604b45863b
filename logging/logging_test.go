package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spidev.log")
	require.NoError(t, Init("DEBUG", "text", true, path))
	t.Cleanup(func() { Close() })

	slog.Debug("hello from test")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello from test")
}

func TestInitUnknownLevelDefaultsToInfo(t *testing.T) {
	require.NoError(t, Init("CHATTY", "text", false, ""))
	assert.False(t, slog.Default().Enabled(nil, slog.LevelDebug))
	assert.True(t, slog.Default().Enabled(nil, slog.LevelInfo))
}

func TestCloseWithoutFile(t *testing.T) {
	require.NoError(t, Init("INFO", "json", false, ""))
	assert.NoError(t, Close())
}
