package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "roof.log")
	log, err := New(Config{Level: "debug", Format: "json", OutputPath: out})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	log.Info("resolved")
	_ = log.Sync()

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"resolved"`)
	assert.Contains(t, string(b), `"service":"roof"`)
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	log, err := New(Config{Level: "chatty", OutputPath: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
