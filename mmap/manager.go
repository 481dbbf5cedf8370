// Package mmap keeps navigation meshes resident per region, pages their tiles
// in and out on demand and hands out per-instance query objects.
package mmap

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gorustyt/mmaps/common/message"
	"github.com/gorustyt/mmaps/detour"
)

// DEFAULT_MAX_QUERY_NODES is the search node budget of a new query handle.
const DEFAULT_MAX_QUERY_NODES = 1024

type (
	// MeshAllocator builds an empty mesh from the region parameters.
	MeshAllocator func(params *detour.NavMeshParams) (detour.IDtNavMesh, detour.DtStatus)
	// QueryAllocator builds a query object over mesh.
	QueryAllocator func(mesh detour.IDtNavMesh, maxNodes int32) (*detour.DtNavMeshQuery, detour.DtStatus)
	// FatalHandler is called when a tile cannot be removed from its mesh.
	FatalHandler func(err *FatalError)
)

// regionData is everything held for one loaded region.
type regionData struct {
	mu       sync.Mutex
	id       RegionID
	params   detour.NavMeshParams
	mesh     detour.IDtNavMesh
	tiles    map[TileCoord]detour.DtTileRef
	queries  map[InstanceID]*detour.DtNavMeshQuery
	released bool
}

func newRegionData(id RegionID, params detour.NavMeshParams, mesh detour.IDtNavMesh) *regionData {
	return &regionData{
		id:      id,
		params:  params,
		mesh:    mesh,
		tiles:   make(map[TileCoord]detour.DtTileRef),
		queries: make(map[InstanceID]*detour.DtNavMeshQuery),
	}
}

// sortedTiles returns the loaded coordinates in row-major order so unloads
// and diagnostics are deterministic.
func (r *regionData) sortedTiles() []TileCoord {
	coords := make([]TileCoord, 0, len(r.tiles))
	for c := range r.tiles {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Y < coords[j].Y
	})
	return coords
}

// release drops every query handle and the mesh. Tiles still inserted are
// freed with the mesh.
func (r *regionData) release() {
	for id, q := range r.queries {
		q.Release()
		delete(r.queries, id)
	}
	r.mesh.Release()
	r.tiles = make(map[TileCoord]detour.DtTileRef)
	r.released = true
}

// Manager is the registry of loaded regions. All methods are safe for
// concurrent use; searching a mesh while its tiles change is not.
type Manager struct {
	mu          sync.RWMutex
	regions     map[RegionID]*regionData
	loadedTiles atomic.Uint32

	paths         PathResolver
	logger        *zap.Logger
	maxQueryNodes int32
	newMesh       MeshAllocator
	newQuery      QueryAllocator
	onFatal       FatalHandler
}

type Option func(m *Manager)

func WithPaths(paths PathResolver) Option {
	return func(m *Manager) { m.paths = paths }
}

func WithDataDir(dir string) Option {
	return WithPaths(DefaultPaths{DataDir: dir})
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMaxQueryNodes(n int32) Option {
	return func(m *Manager) { m.maxQueryNodes = n }
}

func WithMeshAllocator(alloc MeshAllocator) Option {
	return func(m *Manager) { m.newMesh = alloc }
}

func WithQueryAllocator(alloc QueryAllocator) Option {
	return func(m *Manager) { m.newQuery = alloc }
}

// WithFatalHandler replaces the default handler, which logs at fatal level
// and exits the process. The handler runs after the Manager has released its
// locks, so it may inspect the Manager through Stats or the counters.
func WithFatalHandler(h FatalHandler) Option {
	return func(m *Manager) { m.onFatal = h }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		regions:       make(map[RegionID]*regionData),
		paths:         DefaultPaths{DataDir: "."},
		logger:        zap.NewNop(),
		maxQueryNodes: DEFAULT_MAX_QUERY_NODES,
		newMesh:       detour.NewDtNavMeshWithParams,
		newQuery:      detour.NewDtNavMeshQuery,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.onFatal == nil {
		m.onFatal = func(err *FatalError) {
			m.logger.Fatal("navmesh state is corrupt",
				zap.Uint32("region", uint32(err.Region)),
				zap.Int32("x", err.Coord.X),
				zap.Int32("y", err.Coord.Y),
				zap.Stringer("status", err.Status))
		}
	}
	return m
}

func (m *Manager) region(id RegionID) (*regionData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regions[id]
	return r, ok
}

// GetNavMesh returns the mesh of a loaded region.
func (m *Manager) GetNavMesh(region RegionID) (detour.IDtNavMesh, bool) {
	r, ok := m.region(region)
	if !ok {
		return nil, false
	}
	return r.mesh, true
}

// LoadedTilesCount is the number of tiles inserted across all regions.
func (m *Manager) LoadedTilesCount() uint32 { return m.loadedTiles.Load() }

func (m *Manager) LoadedMapsCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regions)
}

func (m *Manager) RegionTileCount(region RegionID) int {
	r, ok := m.region(region)
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tiles)
}

func (m *Manager) IsTileLoaded(region RegionID, x, y int32) bool {
	r, ok := m.region(region)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok = r.tiles[TileCoord{X: x, Y: y}]
	return ok
}

type RegionStats struct {
	Region    RegionID
	Tiles     []TileCoord
	Instances []InstanceID
	MaxTiles  int32
	MeshTiles int32
}

type Stats struct {
	LoadedTiles uint32
	Regions     []RegionStats
}

// Stats returns a point in time view of every region, ordered by id.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	ids := make([]RegionID, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	regions := make([]*regionData, 0, len(ids))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		regions = append(regions, m.regions[id])
	}
	m.mu.RUnlock()

	s := Stats{LoadedTiles: m.loadedTiles.Load()}
	for _, r := range regions {
		r.mu.Lock()
		if r.released {
			r.mu.Unlock()
			continue
		}
		rs := RegionStats{
			Region:    r.id,
			Tiles:     r.sortedTiles(),
			MaxTiles:  r.mesh.GetMaxTiles(),
			MeshTiles: r.mesh.GetTileCount(),
		}
		for id := range r.queries {
			rs.Instances = append(rs.Instances, id)
		}
		r.mu.Unlock()
		sort.Slice(rs.Instances, func(i, j int) bool { return rs.Instances[i] < rs.Instances[j] })
		s.Regions = append(s.Regions, rs)
	}
	return s
}

// Snapshot renders Stats as a protobuf Struct for shipping to tooling.
func (m *Manager) Snapshot() (*structpb.Struct, error) {
	s := m.Stats()
	regions := make([]any, 0, len(s.Regions))
	for _, r := range s.Regions {
		tiles := make([]any, 0, len(r.Tiles))
		for _, c := range r.Tiles {
			tiles = append(tiles, c.Pack())
		}
		instances := make([]any, 0, len(r.Instances))
		for _, id := range r.Instances {
			instances = append(instances, uint32(id))
		}
		regions = append(regions, map[string]any{
			"region":     uint32(r.Region),
			"tiles":      tiles,
			"instances":  instances,
			"max_tiles":  r.MaxTiles,
			"mesh_tiles": r.MeshTiles,
		})
	}
	return message.NewStruct(map[string]any{
		"loaded_tiles": s.LoadedTiles,
		"loaded_maps":  len(s.Regions),
		"regions":      regions,
	})
}

// Close releases every region. The manager is empty and usable afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.regions {
		r.mu.Lock()
		tiles := len(r.tiles)
		r.release()
		r.mu.Unlock()
		delete(m.regions, id)
		m.logger.Info("released mmap", zap.Uint32("region", uint32(id)), zap.Int("tiles", tiles))
	}
	m.loadedTiles.Store(0)
	return nil
}
