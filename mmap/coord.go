package mmap

import "fmt"

// RegionID identifies a map region; assigned by the world service.
type RegionID uint32

// InstanceID identifies a consumer of query handles within a region.
type InstanceID uint32

const maxTileCoord = 0xFFFF

// TileCoord is a tile position in a region's grid. It is used directly as
// the registry key so distinct coordinates never collide.
type TileCoord struct {
	X, Y int32
}

// Valid reports whether both components fit the 16 bit grid.
func (c TileCoord) Valid() bool {
	return c.X >= 0 && c.X <= maxTileCoord && c.Y >= 0 && c.Y <= maxTileCoord
}

// Pack returns the x<<16|y key used by the on-disk tooling and in logs.
// Only meaningful for valid coordinates.
func (c TileCoord) Pack() uint32 {
	return uint32(c.X)<<16 | uint32(c.Y)&0xFFFF
}

// UnpackTileCoord reverses Pack.
func UnpackTileCoord(packed uint32) TileCoord {
	return TileCoord{X: int32(packed >> 16), Y: int32(packed & 0xFFFF)}
}

func (c TileCoord) String() string {
	return fmt.Sprintf("[%02d, %02d]", c.X, c.Y)
}
