package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mmaps.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
data_dir = "/srv/world"

[query]
max_nodes = 4096

[log]
level = "debug"
format = "json"
file = "/var/log/mmaps.log"
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/world", c.DataDir)
	assert.Equal(t, int32(4096), c.Query.MaxNodes)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "/var/log/mmaps.log", c.Log.File)
	// Unset keys keep their defaults.
	assert.Equal(t, Default().Log.MaxBackups, c.Log.MaxBackups)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "data_dir = \"/srv/world\"\n")
	t.Setenv("MMAPS_DATA_DIR", "/srv/other")
	t.Setenv("MMAPS_QUERY_MAX_NODES", "2048")
	t.Setenv("MMAPS_LOG_LEVEL", "warn")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/other", c.DataDir)
	assert.Equal(t, int32(2048), c.Query.MaxNodes)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeFile(t, "data_dir = [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "[query]\nmax_nodes = 70000\n"))
	assert.ErrorContains(t, err, "max_nodes")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"max budget", func(c *Config) { c.Query.MaxNodes = 65535 }, true},
		{"empty data dir", func(c *Config) { c.DataDir = " " }, false},
		{"zero nodes", func(c *Config) { c.Query.MaxNodes = 0 }, false},
		{"too many nodes", func(c *Config) { c.Query.MaxNodes = 65536 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, Default()))
	out := buf.String()
	assert.Contains(t, out, `data_dir = "."`)
	assert.Contains(t, out, "[query]")
	assert.Contains(t, out, "max_nodes = 1024")
	assert.Contains(t, out, "[log]")

	path := filepath.Join(t.TempDir(), "conf", "mmaps.toml")
	want := Default()
	want.DataDir = "/srv/world"
	require.NoError(t, WriteTemplateFile(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoggerConfig(t *testing.T) {
	c := Default()
	c.Log.File = "out.log"
	lc := c.Logger()
	assert.Equal(t, "out.log", lc.File)
	assert.Equal(t, c.Log.Level, lc.Level)
	assert.Equal(t, c.Log.MaxAgeDays, lc.MaxAgeDays)
}
