package mmap

import (
	"fmt"
	"path/filepath"
)

// PathResolver maps regions and tiles to their files.
type PathResolver interface {
	MeshPath(region RegionID) string
	TilePath(region RegionID, c TileCoord) string
}

// DefaultPaths lays files out as <DataDir>/mmaps/RRR.mmap and
// <DataDir>/mmaps/RRRXXYY.mmtile.
type DefaultPaths struct {
	DataDir string
}

func (p DefaultPaths) MeshPath(region RegionID) string {
	return filepath.Join(p.DataDir, "mmaps", fmt.Sprintf("%03d.mmap", region))
}

func (p DefaultPaths) TilePath(region RegionID, c TileCoord) string {
	return filepath.Join(p.DataDir, "mmaps", fmt.Sprintf("%03d%02d%02d.mmtile", region, c.X, c.Y))
}
