package mmap

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/gorustyt/mmaps/common/rw"
	"github.com/gorustyt/mmaps/detour"
)

// ReadMeshParams decodes the fixed size parameter record of a region file.
func ReadMeshParams(r io.Reader) (detour.NavMeshParams, error) {
	var params detour.NavMeshParams
	br := rw.NewStreamReader(r)
	params.FromBin(br)
	if err := br.Err(); err != nil {
		return detour.NavMeshParams{}, fmt.Errorf("%w: mesh params truncated at %d of %d bytes",
			ErrMalformedData, br.BytesRead(), detour.DT_NAVMESH_PARAMS_SIZE)
	}
	return params, nil
}

// WriteMeshParams writes params in the region file format.
func WriteMeshParams(w io.Writer, params detour.NavMeshParams) error {
	_, err := w.Write(detour.EncodeParams(params))
	return err
}

// EnsureRegionLoaded builds the region mesh from its parameter file unless
// it is already resident.
func (m *Manager) EnsureRegionLoaded(region RegionID) error {
	_, err := m.ensureRegion(region)
	return err
}

func (m *Manager) ensureRegion(region RegionID) (*regionData, error) {
	if r, ok := m.region(region); ok {
		return r, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.regions[region]; ok {
		return r, nil
	}
	r, err := m.loadRegion(region)
	if err != nil {
		return nil, err
	}
	m.regions[region] = r
	return r, nil
}

func (m *Manager) loadRegion(region RegionID) (*regionData, error) {
	path := m.paths.MeshPath(region)
	log := m.logger.With(zap.Uint32("region", uint32(region)), zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		log.Debug("could not load mmap", zap.Error(err))
		return nil, fmt.Errorf("%w: region %03d: %v", ErrIO, region, err)
	}
	defer f.Close()

	params, err := ReadMeshParams(bufio.NewReader(f))
	if err != nil {
		log.Error("could not read mmap params", zap.Error(err))
		return nil, fmt.Errorf("region %03d: %w", region, err)
	}

	mesh, status := m.newMesh(&params)
	if status.DtStatusFailed() || mesh == nil {
		log.Error("failed to initialize dtNavMesh", zap.Stringer("status", status))
		return nil, fmt.Errorf("%w: region %03d: %v", ErrInitialization, region, status)
	}

	log.Info("loaded mmap", zap.Int32("max_tiles", params.MaxTiles), zap.Int32("max_polys", params.MaxPolys))
	return newRegionData(region, params, mesh), nil
}
