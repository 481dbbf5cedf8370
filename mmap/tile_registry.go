package mmap

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gorustyt/mmaps/detour"
)

func readTileFile(path string) (*TileBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return DecodeTile(bufio.NewReader(f))
}

// LoadTile reads tile (x, y) of region and inserts it into the region mesh,
// loading the region first when needed.
func (m *Manager) LoadTile(region RegionID, x, y int32) error {
	coord := TileCoord{X: x, Y: y}
	if !coord.Valid() {
		return fmt.Errorf("%w: region %03d tile %v", ErrInvalidCoordinate, region, coord)
	}
	r, err := m.ensureRegion(region)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegionNotLoaded, err)
	}

	log := m.logger.With(zap.Uint32("region", uint32(region)), zap.Int32("x", x), zap.Int32("y", y))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return fmt.Errorf("%w: region %03d", ErrRegionNotLoaded, region)
	}
	if _, ok := r.tiles[coord]; ok {
		log.Warn("asked to load already loaded mmtile")
		return fmt.Errorf("%w: region %03d tile %v", ErrTileAlreadyLoaded, region, coord)
	}

	path := m.paths.TilePath(region, coord)
	buf, err := readTileFile(path)
	if err != nil {
		log.Error("could not load mmtile", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("region %03d tile %v: %w", region, coord, err)
	}
	if err := buf.CheckCoord(coord); err != nil {
		buf.Release()
		log.Error("mmtile does not match requested tile", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("region %03d tile %v: %w", region, coord, err)
	}

	ref, status := insertTile(r.mesh, buf)
	if status.DtStatusFailed() {
		log.Error("could not load mmtile into navmesh", zap.Stringer("status", status))
		return fmt.Errorf("%w: region %03d tile %v: %w", ErrInsertion, region, coord, status.Err())
	}

	r.tiles[coord] = ref
	m.loadedTiles.Add(1)
	log.Info("loaded mmtile", zap.Uint32("loaded", m.loadedTiles.Load()))
	return nil
}

// UnloadTile removes tile (x, y) from region. A mesh that refuses the
// removal is reported through the fatal handler.
func (m *Manager) UnloadTile(region RegionID, x, y int32) error {
	err := m.unloadTile(region, TileCoord{X: x, Y: y})
	m.reportFatal(err)
	return err
}

func (m *Manager) unloadTile(region RegionID, coord TileCoord) error {
	log := m.logger.With(zap.Uint32("region", uint32(region)), zap.Int32("x", coord.X), zap.Int32("y", coord.Y))

	r, ok := m.region(region)
	if !ok {
		log.Debug("asked to unload not loaded navmesh map")
		return fmt.Errorf("%w: region %03d", ErrRegionNotLoaded, region)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return fmt.Errorf("%w: region %03d", ErrRegionNotLoaded, region)
	}
	ref, ok := r.tiles[coord]
	if !ok {
		log.Debug("asked to unload not loaded navmesh tile")
		return fmt.Errorf("%w: region %03d tile %v", ErrTileNotLoaded, region, coord)
	}
	return m.removeTile(r, coord, ref)
}

// removeTile expects r.mu held.
func (m *Manager) removeTile(r *regionData, coord TileCoord, ref detour.DtTileRef) error {
	log := m.logger.With(zap.Uint32("region", uint32(r.id)), zap.Int32("x", coord.X), zap.Int32("y", coord.Y))

	if _, status := r.mesh.RemoveTile(ref); status.DtStatusFailed() {
		log.Error("could not unload mmtile from navmesh", zap.Stringer("status", status))
		return &FatalError{Region: r.id, Coord: coord, Status: status}
	}

	delete(r.tiles, coord)
	m.loadedTiles.Add(^uint32(0))
	log.Info("unloaded mmtile")
	return nil
}

// reportFatal hands a FatalError to the fatal handler. Callers release
// every lock first.
func (m *Manager) reportFatal(err error) {
	var fe *FatalError
	if errors.As(err, &fe) {
		m.onFatal(fe)
	}
}

// UnloadRegion removes every tile of region, then drops its query handles
// and mesh.
func (m *Manager) UnloadRegion(region RegionID) error {
	err := m.unloadRegion(region)
	m.reportFatal(err)
	return err
}

func (m *Manager) unloadRegion(region RegionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logger.With(zap.Uint32("region", uint32(region)))
	r, ok := m.regions[region]
	if !ok {
		log.Debug("asked to unload not loaded navmesh map")
		return fmt.Errorf("%w: region %03d", ErrRegionNotLoaded, region)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	unloaded := 0
	for _, coord := range r.sortedTiles() {
		if err := m.removeTile(r, coord, r.tiles[coord]); err != nil {
			return err
		}
		unloaded++
	}
	r.release()
	delete(m.regions, region)
	log.Info("unloaded mmap", zap.Int("tiles", unloaded))
	return nil
}
