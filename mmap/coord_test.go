package mmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileCoordValid(t *testing.T) {
	tests := []struct {
		c     TileCoord
		valid bool
	}{
		{TileCoord{0, 0}, true},
		{TileCoord{63, 63}, true},
		{TileCoord{0xFFFF, 0xFFFF}, true},
		{TileCoord{-1, 0}, false},
		{TileCoord{0, -1}, false},
		{TileCoord{0x10000, 0}, false},
		{TileCoord{0, 0x10000}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.c.Valid(), "%v", tt.c)
	}
}

func TestTileCoordPack(t *testing.T) {
	c := TileCoord{X: 32, Y: 48}
	assert.Equal(t, uint32(32<<16|48), c.Pack())
	assert.Equal(t, c, UnpackTileCoord(c.Pack()))

	// Distinct valid coordinates never share a key.
	assert.NotEqual(t, TileCoord{1, 0}.Pack(), TileCoord{0, 1}.Pack())
	assert.Equal(t, "[03, 07]", TileCoord{3, 7}.String())
}

func TestDefaultPaths(t *testing.T) {
	p := DefaultPaths{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "mmaps", "001.mmap"), p.MeshPath(1))
	assert.Equal(t, filepath.Join("data", "mmaps", "5303248.mmtile"), p.TilePath(530, TileCoord{32, 48}))
	assert.Equal(t, filepath.Join("data", "mmaps", "0000102.mmtile"), p.TilePath(0, TileCoord{1, 2}))
}
