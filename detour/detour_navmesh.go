package detour

import (
	"math"

	"github.com/gorustyt/mmaps/common"
	"github.com/gorustyt/mmaps/common/rw"
)

/// @{
/// @name Initialization and Tile Management

// / Initializes the navigation mesh for tiled use.
// /  @param[in]	params		Initialization parameters.
// / @return The status flags for the operation.
func NewDtNavMeshWithParams(params *NavMeshParams) (IDtNavMesh, DtStatus) {
	if params == nil || params.MaxTiles <= 0 || params.MaxPolys <= 0 ||
		!(params.TileWidth > 0) || !(params.TileHeight > 0) {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	mesh := &DtNavMesh{}
	mesh.m_params = *params
	mesh.m_orig = params.Origin()
	mesh.m_tileWidth = params.TileWidth
	mesh.m_tileHeight = params.TileHeight

	// Init ID generator values.
	mesh.m_tileBits = common.Ilog2(common.NextPow2(uint32(params.MaxTiles)))
	mesh.m_polyBits = common.Ilog2(common.NextPow2(uint32(params.MaxPolys)))
	// Only allow 31 salt bits, since the salt mask is calculated using 32bit uint and it will overflow.
	if mesh.m_tileBits+mesh.m_polyBits >= 32 {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	mesh.m_saltBits = common.Min(31, 32-mesh.m_tileBits-mesh.m_polyBits)
	if mesh.m_saltBits < 10 {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	// Init tiles
	mesh.m_maxTiles = params.MaxTiles
	mesh.m_tileLutSize = int32(common.NextPow2(uint32(params.MaxTiles / 4)))
	if mesh.m_tileLutSize == 0 {
		mesh.m_tileLutSize = 1
	}
	mesh.m_tileLutMask = mesh.m_tileLutSize - 1
	mesh.m_posLookup = make([]*DtMeshTile, mesh.m_tileLutSize)
	mesh.m_tiles = make([]*DtMeshTile, mesh.m_maxTiles)
	for i := mesh.m_maxTiles - 1; i >= 0; i-- {
		mesh.m_tiles[i] = &DtMeshTile{salt: 1, Next: mesh.m_nextFree}
		mesh.m_nextFree = mesh.m_tiles[i]
	}
	return mesh, DT_SUCCESS
}

func decodeMeshHeader(data []byte) (*DtMeshHeader, DtStatus) {
	if len(data) < DT_MESH_HEADER_SIZE {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	r := rw.NewNavMeshDataBinReader(data[:DT_MESH_HEADER_SIZE])
	header := (&DtMeshHeader{}).FromBin(r)
	if r.Err() != nil {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	// Make sure the data is in right format.
	if header.Magic != DT_NAVMESH_MAGIC {
		return nil, DT_FAILURE | DT_WRONG_MAGIC
	}
	if header.Version != DT_NAVMESH_VERSION {
		return nil, DT_FAILURE | DT_WRONG_VERSION
	}
	return header, DT_SUCCESS
}

func (mesh *DtNavMesh) getTileIndex(tile *DtMeshTile) int {
	for index, v := range mesh.m_tiles {
		if v == tile {
			return index
		}
	}
	return -1
}

func (mesh *DtNavMesh) GetTileRef(tile *DtMeshTile) DtTileRef {
	if tile == nil {
		return 0
	}
	it := mesh.getTileIndex(tile)
	if it < 0 {
		return 0
	}
	return DtTileRef(mesh.EncodePolyId(tile.salt, uint32(it), 0))
}

func (mesh *DtNavMesh) GetTileAt(x, y, layer int32) *DtMeshTile {
	// Find tile based on hash.
	h := common.ComputeTileHash(x, y, mesh.m_tileLutMask)
	tile := mesh.m_posLookup[h]
	for tile != nil {
		if tile.Header != nil && tile.Header.X == x && tile.Header.Y == y && tile.Header.Layer == layer {
			return tile
		}
		tile = tile.Next
	}
	return nil
}

func (mesh *DtNavMesh) GetTileRefAt(x, y, layer int32) DtTileRef {
	return mesh.GetTileRef(mesh.GetTileAt(x, y, layer))
}

func (mesh *DtNavMesh) GetTileByRef(ref DtTileRef) *DtMeshTile {
	if ref == 0 {
		return nil
	}
	tileIndex := mesh.DecodePolyIdTile(DtPolyRef(ref))
	tileSalt := mesh.DecodePolyIdSalt(DtPolyRef(ref))
	if int64(tileIndex) >= int64(mesh.m_maxTiles) {
		return nil
	}
	tile := mesh.m_tiles[tileIndex]
	if tile.salt != tileSalt || tile.Header == nil {
		return nil
	}
	return tile
}

func (mesh *DtNavMesh) CalcTileLoc(pos common.Vec3) (tx, ty int32) {
	tx = int32(math.Floor(float64((pos.X() - mesh.m_orig.X()) / mesh.m_tileWidth)))
	ty = int32(math.Floor(float64((pos.Z() - mesh.m_orig.Z()) / mesh.m_tileHeight)))
	return tx, ty
}

// / @par
// /
// / The add operation will fail if the data is in the wrong format, the allocated tile
// / space is full, or there is a tile already at the specified reference.
// /
// / The lastRef parameter is used to restore a tile with the same tile
// / reference it had previously used.  In this case the #DtPolyRef's for the
// / tile will be restored to the same values they were before the tile was
// / removed.
// /
// / The nav mesh assumes exclusive access to the data passed and will make
// / changes to the dynamic portion of the data. For that reason the data
// / should not be reused in other nav meshes until the tile has been successfully
// / removed from this nav mesh.
func (mesh *DtNavMesh) AddTile(data []byte, flags DtTileFlags, lastRef DtTileRef) (result DtTileRef, status DtStatus) {
	header, status := decodeMeshHeader(data)
	if status.DtStatusFailed() {
		return 0, status
	}

	// Do not allow adding more polygons than specified in the NavMesh's maxPolys constraint.
	// Otherwise, the poly ID cannot be represented with the given number of bits.
	if header.PolyCount < 0 || mesh.m_polyBits < common.Ilog2(common.NextPow2(uint32(header.PolyCount))) {
		return 0, DT_FAILURE | DT_INVALID_PARAM
	}

	// Make sure the location is free.
	if mesh.GetTileAt(header.X, header.Y, header.Layer) != nil {
		return 0, DT_FAILURE | DT_ALREADY_OCCUPIED
	}

	var tile *DtMeshTile
	if lastRef == 0 {
		if mesh.m_nextFree != nil {
			tile = mesh.m_nextFree
			mesh.m_nextFree = tile.Next
			tile.Next = nil
		}
	} else {
		// Try to relocate the tile to specific index with same salt.
		tileIndex := mesh.DecodePolyIdTile(DtPolyRef(lastRef))
		if int64(tileIndex) >= int64(mesh.m_maxTiles) {
			return 0, DT_FAILURE | DT_OUT_OF_MEMORY
		}

		// Try to find the specific tile id from the free list.
		target := mesh.m_tiles[tileIndex]
		var prev *DtMeshTile
		tile = mesh.m_nextFree
		for tile != nil && tile != target {
			prev = tile
			tile = tile.Next
		}
		// Could not find the correct location.
		if tile != target {
			return 0, DT_FAILURE | DT_OUT_OF_MEMORY
		}

		// Remove from freelist
		if prev == nil {
			mesh.m_nextFree = tile.Next
		} else {
			prev.Next = tile.Next
		}

		// Restore salt.
		tile.salt = mesh.DecodePolyIdSalt(DtPolyRef(lastRef))
		tile.Next = nil
	}

	// Make sure we could allocate a tile.
	if tile == nil {
		return 0, DT_FAILURE | DT_OUT_OF_MEMORY
	}

	// Insert tile into the position lut.
	h := common.ComputeTileHash(header.X, header.Y, mesh.m_tileLutMask)
	tile.Next = mesh.m_posLookup[h]
	mesh.m_posLookup[h] = tile

	// Init tile.
	tile.Header = header
	tile.Data = data
	tile.Flags = flags
	mesh.m_tileCount++

	return mesh.GetTileRef(tile), DT_SUCCESS
}

// / @par
// /
// / This function returns the data for the tile so that, if desired,
// / it can be added back to the navigation mesh at a later point.
// / Tiles added with #DT_TILE_FREE_DATA are owned by the mesh and return nil.
func (mesh *DtNavMesh) RemoveTile(ref DtTileRef) (data []byte, status DtStatus) {
	if ref == 0 {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	tileIndex := mesh.DecodePolyIdTile(DtPolyRef(ref))
	tileSalt := mesh.DecodePolyIdSalt(DtPolyRef(ref))
	if int64(tileIndex) >= int64(mesh.m_maxTiles) {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	tile := mesh.m_tiles[tileIndex]
	if tile.salt != tileSalt || tile.Header == nil {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}

	// Remove tile from hash lookup.
	h := common.ComputeTileHash(tile.Header.X, tile.Header.Y, mesh.m_tileLutMask)
	var prev *DtMeshTile
	cur := mesh.m_posLookup[h]
	for cur != nil {
		if cur == tile {
			if prev != nil {
				prev.Next = cur.Next
			} else {
				mesh.m_posLookup[h] = cur.Next
			}
			break
		}
		prev = cur
		cur = cur.Next
	}
	common.AssertTrue(cur != nil, "tile %d missing from position lookup", tileIndex)

	// Reset tile.
	if tile.Flags&DT_TILE_FREE_DATA == 0 {
		data = tile.Data
	}
	tile.Data = nil
	tile.Header = nil
	tile.Flags = 0

	// Update salt, salt should never be zero.
	tile.salt = (tile.salt + 1) & (uint32(1)<<mesh.m_saltBits - 1)
	if tile.salt == 0 {
		tile.salt++
	}

	// Add to free list.
	tile.Next = mesh.m_nextFree
	mesh.m_nextFree = tile
	mesh.m_tileCount--

	return data, DT_SUCCESS
}

// Release drops every inserted tile. The mesh is unusable afterwards.
func (mesh *DtNavMesh) Release() {
	for _, tile := range mesh.m_tiles {
		tile.Data = nil
		tile.Header = nil
		tile.Next = nil
	}
	mesh.m_tiles = nil
	mesh.m_posLookup = make([]*DtMeshTile, len(mesh.m_posLookup))
	mesh.m_nextFree = nil
	mesh.m_maxTiles = 0
	mesh.m_tileCount = 0
}
