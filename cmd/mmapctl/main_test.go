package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gorustyt/mmaps/config"
	"github.com/gorustyt/mmaps/mmap"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	c := config.Default()
	c.DataDir = filepath.Join(dir, "data")
	c.Log.Level = "error"
	path := filepath.Join(dir, "mmaps.toml")
	require.NoError(t, config.WriteTemplateFile(path, c))
	return path, c.DataDir
}

func TestParseTiles(t *testing.T) {
	got, err := parseTiles("1,2 3,4;5, 6")
	require.NoError(t, err)
	assert.Equal(t, []mmap.TileCoord{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}, got)

	got, err = parseTiles("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseTiles("1")
	assert.Error(t, err)
	_, err = parseTiles("a,1")
	assert.Error(t, err)
}

func TestGenThenLoad(t *testing.T) {
	cfgPath, dataDir := writeConfig(t)

	require.NoError(t, run([]string{"-config", cfgPath, "gen", "-region", "530", "-tiles", "31,32 32,32"}, &bytes.Buffer{}))
	_, err := os.Stat(filepath.Join(dataDir, "mmaps", "530.mmap"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dataDir, "mmaps", "5303132.mmtile"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cfgPath, "load", "-region", "530",
		"-tiles", "31,32 32,32", "-unload", "32,32", "-instances", "2"}, &out))

	var snap structpb.Struct
	require.NoError(t, protojson.Unmarshal(out.Bytes(), &snap))
	fields := snap.AsMap()
	assert.EqualValues(t, 1, fields["loaded_tiles"])
	assert.EqualValues(t, 1, fields["loaded_maps"])
	regions := fields["regions"].([]any)
	require.Len(t, regions, 1)
	region := regions[0].(map[string]any)
	assert.EqualValues(t, 530, region["region"])
	assert.Len(t, region["instances"], 2)
	assert.Equal(t, []any{float64(mmap.TileCoord{X: 31, Y: 32}.Pack())}, region["tiles"])
}

func TestLoadMissingRegion(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	err := run([]string{"-config", cfgPath, "load", "-region", "9"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, mmap.ErrIO)
}

func TestTemplate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"template"}, &out))
	assert.Contains(t, out.String(), "max_nodes = 1024")

	path := filepath.Join(t.TempDir(), "mmaps.toml")
	require.NoError(t, run([]string{"template", "-o", path}, &bytes.Buffer{}))
	_, err := config.Load(path)
	require.NoError(t, err)
}

func TestRegionFlag(t *testing.T) {
	var r regionFlag
	require.NoError(t, r.Set("4294967295"))
	assert.Equal(t, regionFlag(4294967295), r)
	assert.Equal(t, "4294967295", r.String())

	for _, bad := range []string{"4294967296", "-1", "abc"} {
		assert.Error(t, r.Set(bad), bad)
	}

	cfgPath, dataDir := writeConfig(t)
	err := run([]string{"-config", cfgPath, "gen", "-region", "4294967297", "-tiles", "0,0"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "4294967297")
	_, statErr := os.Stat(filepath.Join(dataDir, "mmaps", "001.mmap"))
	assert.True(t, os.IsNotExist(statErr), "wrapped region id must not be written")
}

func TestRunErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	assert.Error(t, run(nil, &bytes.Buffer{}))
	assert.ErrorContains(t, run([]string{"-config", cfgPath, "bogus"}, &bytes.Buffer{}), "unknown command")
}
