package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "crowd.log")
	cfg := DefaultConfig()
	cfg.File = file
	cfg.Console = false
	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("tick", zap.Int("frame", 3))
	_ = l.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"frame":3`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := New(cfg)
	require.Error(t, err)
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	require.Same(t, l, OrNop(l))
}
