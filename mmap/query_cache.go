package mmap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gorustyt/mmaps/detour"
)

// GetNavMeshQuery returns the query handle of instance on region, creating
// it on first use. It reports false when the region is not loaded or the
// handle could not be built.
func (m *Manager) GetNavMeshQuery(region RegionID, instance InstanceID) (*detour.DtNavMeshQuery, bool) {
	r, ok := m.region(region)
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, false
	}
	if q, ok := r.queries[instance]; ok {
		return q, true
	}

	log := m.logger.With(zap.Uint32("region", uint32(region)), zap.Uint32("instance", uint32(instance)))
	q, status := m.newQuery(r.mesh, m.maxQueryNodes)
	if status.DtStatusFailed() || q == nil {
		log.Error("failed to initialize dtNavMeshQuery", zap.Stringer("status", status))
		return nil, false
	}
	r.queries[instance] = q
	log.Info("created dtNavMeshQuery", zap.Int32("max_nodes", m.maxQueryNodes))
	return q, true
}

// UnloadMapInstance releases the query handle of instance on region.
func (m *Manager) UnloadMapInstance(region RegionID, instance InstanceID) error {
	log := m.logger.With(zap.Uint32("region", uint32(region)), zap.Uint32("instance", uint32(instance)))

	r, ok := m.region(region)
	if !ok {
		log.Debug("asked to unload not loaded navmesh map")
		return fmt.Errorf("%w: region %03d", ErrRegionNotLoaded, region)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queries[instance]
	if r.released || !ok {
		log.Debug("asked to unload not loaded dtNavMeshQuery")
		return fmt.Errorf("%w: region %03d instance %d", ErrQueryNotLoaded, region, instance)
	}
	q.Release()
	delete(r.queries, instance)
	log.Info("unloaded dtNavMeshQuery")
	return nil
}
