package detour

import (
	"github.com/gorustyt/mmaps/common"
)

const (
	// Size of the small pool used for local searches.
	DT_TINY_NODE_POOL_SIZE = 64
	// Search node budget limit imposed by 16 bit node indices.
	DT_MAX_QUERY_NODES = 65535
)

// DtNavMeshQuery is a reusable query object bound to one navigation mesh.
// It owns the working memory (node pools and open list) for searches.
type DtNavMeshQuery struct {
	m_nav          IDtNavMesh ///< Pointer to navmesh data.
	m_nodePool     *DtNodePool
	m_tinyNodePool *DtNodePool
	m_openList     NodeQueue[*DtNode]
}

// / Initializes the query object.
// /  @param[in]		nav			Pointer to the DtNavMesh object to use for all queries.
// /  @param[in]		maxNodes	Maximum number of search nodes. [Limits: 0 < value <= 65535]
// / @returns The status flags for the query.
func NewDtNavMeshQuery(nav IDtNavMesh, maxNodes int32) (*DtNavMeshQuery, DtStatus) {
	if nav == nil || maxNodes <= 0 || maxNodes > DT_MAX_QUERY_NODES {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	hashSize := int32(common.NextPow2(uint32(maxNodes / 4)))
	if hashSize == 0 {
		hashSize = 1
	}
	nodePool, status := NewDtNodePool(maxNodes, hashSize)
	if status.DtStatusFailed() {
		return nil, status | DT_OUT_OF_MEMORY
	}
	tinyNodePool, status := NewDtNodePool(DT_TINY_NODE_POOL_SIZE, 32)
	if status.DtStatusFailed() {
		return nil, status | DT_OUT_OF_MEMORY
	}
	query := &DtNavMeshQuery{
		m_nav:          nav,
		m_nodePool:     nodePool,
		m_tinyNodePool: tinyNodePool,
		m_openList: NewNodeQueue(func(t1, t2 *DtNode) bool {
			return t1.Total < t2.Total
		}),
	}
	return query, DT_SUCCESS
}

// / Gets the node pool.
func (query *DtNavMeshQuery) GetNodePool() *DtNodePool { return query.m_nodePool }

// / Gets the navigation mesh the query object is using.
func (query *DtNavMeshQuery) GetAttachedNavMesh() IDtNavMesh { return query.m_nav }

// OpenList exposes the search frontier.
func (query *DtNavMeshQuery) OpenList() NodeQueue[*DtNode] { return query.m_openList }

// Released reports whether Release has been called.
func (query *DtNavMeshQuery) Released() bool { return query.m_nav == nil }

// Release detaches the query from its mesh and drops its working memory.
func (query *DtNavMeshQuery) Release() {
	query.m_nav = nil
	query.m_nodePool = nil
	query.m_tinyNodePool = nil
	if query.m_openList != nil {
		query.m_openList.Reset()
	}
}

// FindTileAt returns the reference of the tile (layer 0) containing pos.
func (query *DtNavMeshQuery) FindTileAt(pos common.Vec3) (DtTileRef, DtStatus) {
	if query.m_nav == nil {
		return 0, DT_FAILURE | DT_INVALID_PARAM
	}
	tx, ty := query.m_nav.CalcTileLoc(pos)
	ref := query.m_nav.GetTileRefAt(tx, ty, 0)
	if ref == 0 {
		return 0, DT_FAILURE
	}
	return ref, DT_SUCCESS
}

// QueryTiles collects the tiles whose bounds overlap the box [bmin, bmax].
func (query *DtNavMeshQuery) QueryTiles(bmin, bmax common.Vec3) ([]DtTileRef, DtStatus) {
	if query.m_nav == nil {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	minx, miny := query.m_nav.CalcTileLoc(bmin)
	maxx, maxy := query.m_nav.CalcTileLoc(bmax)

	var refs []DtTileRef
	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			tile := query.m_nav.GetTileAt(x, y, 0)
			if tile == nil {
				continue
			}
			tmin, tmax := tile.Bounds()
			if !overlapBounds(bmin, bmax, tmin, tmax) {
				continue
			}
			refs = append(refs, query.m_nav.GetTileRefAt(x, y, 0))
		}
	}
	return refs, DT_SUCCESS
}

func overlapBounds(amin, amax, bmin, bmax common.Vec3) bool {
	for i := 0; i < 3; i++ {
		if amin[i] > bmax[i] || amax[i] < bmin[i] {
			return false
		}
	}
	return true
}
