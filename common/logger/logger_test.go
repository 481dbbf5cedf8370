package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("mmaps", "json", zapcore.InfoLevel, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("loaded mmap", zap.Uint32("region", 1))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "loaded mmap", entry["msg"])
	require.Equal(t, "mmaps", entry["logger"])
	require.Equal(t, float64(1), entry["region"])
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := New("mmaps", cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Format = "xml"
	_, err = New("mmaps", cfg)
	require.Error(t, err)
}

func TestNewWritesRotatingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.File = filepath.Join(t.TempDir(), "mmaps.log")

	log, err := New("mmaps", cfg)
	require.NoError(t, err)
	log.Info("to file")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}
