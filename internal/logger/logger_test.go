package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		env, level string
		debug      bool
	}{
		{"local", "", true},
		{"production", "", false},
		{"production", "debug", true},
		{"local", "warn", false},
	}
	for _, tt := range tests {
		log, err := New(tt.env, tt.level, "")
		require.NoError(t, err)
		assert.Equal(t, tt.debug, log.Core().Enabled(zapcore.DebugLevel), "env=%s level=%s", tt.env, tt.level)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("local", "loud", "")
	assert.Error(t, err)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studyhall.log")

	log, err := New("production", "info", path)
	require.NoError(t, err)
	log.Info("quiz completed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "quiz completed"))
}
