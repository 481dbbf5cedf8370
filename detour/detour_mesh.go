package detour

import (
	"github.com/gorustyt/mmaps/common"
	"github.com/gorustyt/mmaps/common/rw"
)

const (
	/// A magic number used to detect compatibility of navigation tile data.
	DT_NAVMESH_MAGIC = 'D'<<24 | 'N'<<16 | 'A'<<8 | 'V'

	/// A version number used to detect compatibility of navigation tile data.
	DT_NAVMESH_VERSION = 7

	// Serialized size of DtMeshHeader.
	DT_MESH_HEADER_SIZE = 100

	// Serialized size of NavMeshParams.
	DT_NAVMESH_PARAMS_SIZE = 28
)

type DtTileFlags int32

const (
	/// The navigation mesh owns the tile memory and is responsible for freeing it.
	DT_TILE_FREE_DATA DtTileFlags = 0x01
)

type DtPolyRef uint64
type DtTileRef uint64

// / Provides high level information related to a DtMeshTile object.
type DtMeshHeader struct {
	Magic           int32  ///< Tile magic number. (Used to identify the data format.)
	Version         int32  ///< Tile data format version number.
	X               int32  ///< The x-position of the tile within the DtNavMesh tile grid. (x, y, layer)
	Y               int32  ///< The y-position of the tile within the DtNavMesh tile grid. (x, y, layer)
	Layer           int32  ///< The layer of the tile within the DtNavMesh tile grid. (x, y, layer)
	UserId          uint32 ///< The user defined id of the tile.
	PolyCount       int32  ///< The number of polygons in the tile.
	VertCount       int32  ///< The number of vertices in the tile.
	MaxLinkCount    int32  ///< The number of allocated links.
	DetailMeshCount int32  ///< The number of sub-meshes in the detail mesh.

	/// The number of unique vertices in the detail mesh. (In addition to the polygon vertices.)
	DetailVertCount int32

	DetailTriCount  int32      ///< The number of triangles in the detail mesh.
	BvNodeCount     int32      ///< The number of bounding volume nodes. (Zero if bounding volumes are disabled.)
	OffMeshConCount int32      ///< The number of off-mesh connections.
	OffMeshBase     int32      ///< The index of the first polygon which is an off-mesh connection.
	WalkableHeight  float32    ///< The height of the agents using the tile.
	WalkableRadius  float32    ///< The radius of the agents using the tile.
	WalkableClimb   float32    ///< The maximum climb height of the agents using the tile.
	Bmin            [3]float32 ///< The minimum bounds of the tile's AABB. [(x, y, z)]
	Bmax            [3]float32 ///< The maximum bounds of the tile's AABB. [(x, y, z)]

	/// The bounding volume quantization factor.
	BvQuantFactor float32
}

func (d *DtMeshHeader) ToBin(w *rw.ReaderWriter) {
	w.WriteInt32(d.Magic)
	w.WriteInt32(d.Version)
	w.WriteInt32(d.X)
	w.WriteInt32(d.Y)
	w.WriteInt32(d.Layer)
	w.WriteUInt32(d.UserId)
	w.WriteInt32(d.PolyCount)
	w.WriteInt32(d.VertCount)
	w.WriteInt32(d.MaxLinkCount)
	w.WriteInt32(d.DetailMeshCount)
	w.WriteInt32(d.DetailVertCount)
	w.WriteInt32(d.DetailTriCount)
	w.WriteInt32(d.BvNodeCount)
	w.WriteInt32(d.OffMeshConCount)
	w.WriteInt32(d.OffMeshBase)
	w.WriteFloat32(d.WalkableHeight)
	w.WriteFloat32(d.WalkableRadius)
	w.WriteFloat32(d.WalkableClimb)
	w.WriteFloat32s(d.Bmin[:])
	w.WriteFloat32s(d.Bmax[:])
	w.WriteFloat32(d.BvQuantFactor)
}

// FromBin decodes the header; check r.Err() for short input.
func (d *DtMeshHeader) FromBin(r *rw.ReaderWriter) *DtMeshHeader {
	d.Magic = r.ReadInt32()
	d.Version = r.ReadInt32()
	d.X = r.ReadInt32()
	d.Y = r.ReadInt32()
	d.Layer = r.ReadInt32()
	d.UserId = r.ReadUInt32()
	d.PolyCount = r.ReadInt32()
	d.VertCount = r.ReadInt32()
	d.MaxLinkCount = r.ReadInt32()
	d.DetailMeshCount = r.ReadInt32()
	d.DetailVertCount = r.ReadInt32()
	d.DetailTriCount = r.ReadInt32()
	d.BvNodeCount = r.ReadInt32()
	d.OffMeshConCount = r.ReadInt32()
	d.OffMeshBase = r.ReadInt32()
	d.WalkableHeight = r.ReadFloat32()
	d.WalkableRadius = r.ReadFloat32()
	d.WalkableClimb = r.ReadFloat32()
	r.ReadFloat32s(d.Bmin[:])
	r.ReadFloat32s(d.Bmax[:])
	d.BvQuantFactor = r.ReadFloat32()
	return d
}

// / Configuration parameters used to define multi-tile navigation meshes.
// / The values are used to allocate space during the initialization of a navigation mesh.
type NavMeshParams struct {
	Orig       [3]float32 ///< The world space origin of the navigation mesh's tile space. [(x, y, z)]
	TileWidth  float32    ///< The width of each tile. (Along the x-axis.)
	TileHeight float32    ///< The height of each tile. (Along the z-axis.)
	MaxTiles   int32      ///< The maximum number of tiles the navigation mesh can contain.
	MaxPolys   int32      ///< The maximum number of polygons each tile can contain.
}

func (d *NavMeshParams) FromBin(r *rw.ReaderWriter) {
	r.ReadFloat32s(d.Orig[:])
	d.TileWidth = r.ReadFloat32()
	d.TileHeight = r.ReadFloat32()
	d.MaxTiles = r.ReadInt32()
	d.MaxPolys = r.ReadInt32()
}

func (d *NavMeshParams) ToBin(w *rw.ReaderWriter) {
	w.WriteFloat32s(d.Orig[:])
	w.WriteFloat32(d.TileWidth)
	w.WriteFloat32(d.TileHeight)
	w.WriteInt32(d.MaxTiles)
	w.WriteInt32(d.MaxPolys)
}

// Origin returns the tile space origin as a vector.
func (d *NavMeshParams) Origin() common.Vec3 {
	return common.Vec3FromArray(d.Orig)
}

// / Defines a navigation mesh tile.
type DtMeshTile struct {
	salt   uint32        ///< Counter describing modifications to the tile.
	Header *DtMeshHeader ///< The tile header.
	// Data is the raw tile payload, header included.
	Data  []byte
	Flags DtTileFlags ///< Tile flags. (See: #dtTileFlags)
	Next  *DtMeshTile ///< The next free tile, or the next tile in the spatial grid.
}

// Bounds returns the tile AABB.
func (t *DtMeshTile) Bounds() (bmin, bmax common.Vec3) {
	if t.Header == nil {
		return
	}
	return common.Vec3FromArray(t.Header.Bmin), common.Vec3FromArray(t.Header.Bmax)
}

type IDtNavMesh interface {
	GetParams() *NavMeshParams
	/// Adds a tile to the navigation mesh.
	///  @param[in]		data		Data for the new tile mesh.
	///  @param[in]		flags		Tile flags. (See: #dtTileFlags)
	///  @param[in]		lastRef		The desired reference for the tile. (When reloading a tile.) [opt]
	AddTile(data []byte, flags DtTileFlags, lastRef DtTileRef) (DtTileRef, DtStatus)
	/// Removes the specified tile from the navigation mesh. The tile data is
	/// returned only when the mesh does not own it.
	RemoveTile(ref DtTileRef) ([]byte, DtStatus)
	GetTileAt(x, y, layer int32) *DtMeshTile
	GetTileByRef(ref DtTileRef) *DtMeshTile
	GetTileRefAt(x, y, layer int32) DtTileRef
	CalcTileLoc(pos common.Vec3) (tx, ty int32)
	GetMaxTiles() int32
	GetTileCount() int32
	GetTile(i int) *DtMeshTile
	// Release frees every tile still held by the mesh.
	Release()
}

type DtNavMesh struct {
	m_params                  NavMeshParams ///< Current initialization params.
	m_orig                    common.Vec3   ///< Origin of the tile (0,0)
	m_tileWidth, m_tileHeight float32       ///< Dimensions of each tile.
	m_maxTiles                int32         ///< Max number of tiles.
	m_tileLutSize             int32         ///< Tile hash lookup size (must be pot).
	m_tileLutMask             int32         ///< Tile hash lookup mask.
	m_posLookup               []*DtMeshTile ///< Tile hash lookup.
	m_nextFree                *DtMeshTile   ///< Freelist of tiles.
	m_tiles                   []*DtMeshTile ///< List of tiles.
	m_tileCount               int32

	m_saltBits uint32 ///< Number of salt bits in the tile ID.
	m_tileBits uint32 ///< Number of tile bits in the tile ID.
	m_polyBits uint32 ///< Number of poly bits in the tile ID.
}

func (mesh *DtNavMesh) GetParams() *NavMeshParams { return &mesh.m_params }

func (mesh *DtNavMesh) GetTile(i int) *DtMeshTile { return mesh.m_tiles[i] }

func (mesh *DtNavMesh) GetMaxTiles() int32 { return mesh.m_maxTiles }

// GetTileCount returns the number of tiles currently inserted.
func (mesh *DtNavMesh) GetTileCount() int32 { return mesh.m_tileCount }

/// @{
/// @name Encoding and Decoding
/// These functions are generally meant for internal use only.

// / Derives a standard polygon reference.
// /  @param[in]	salt	The tile's salt value.
// /  @param[in]	it		The index of the tile.
// /  @param[in]	ip		The index of the polygon within the tile.
func (mesh *DtNavMesh) EncodePolyId(salt, it, ip uint32) DtPolyRef {
	return DtPolyRef(uint64(salt)<<(mesh.m_polyBits+mesh.m_tileBits) | uint64(it)<<mesh.m_polyBits | uint64(ip))
}

// / Decodes a standard polygon reference.
func (mesh *DtNavMesh) DecodePolyId(ref DtPolyRef) (salt, it, ip uint32) {
	saltMask := uint64(1)<<mesh.m_saltBits - 1
	tileMask := uint64(1)<<mesh.m_tileBits - 1
	polyMask := uint64(1)<<mesh.m_polyBits - 1
	salt = uint32((uint64(ref) >> (mesh.m_polyBits + mesh.m_tileBits)) & saltMask)
	it = uint32((uint64(ref) >> mesh.m_polyBits) & tileMask)
	ip = uint32(uint64(ref) & polyMask)
	return
}

func (mesh *DtNavMesh) DecodePolyIdTile(ref DtPolyRef) uint32 {
	_, it, _ := mesh.DecodePolyId(ref)
	return it
}

func (mesh *DtNavMesh) DecodePolyIdSalt(ref DtPolyRef) uint32 {
	salt, _, _ := mesh.DecodePolyId(ref)
	return salt
}
