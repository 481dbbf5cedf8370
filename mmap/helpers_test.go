package mmap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gorustyt/mmaps/detour"
)

const testTileSize = 64

func testMeshParams() detour.NavMeshParams {
	return detour.NavMeshParams{
		Orig:       [3]float32{0, 0, 0},
		TileWidth:  testTileSize,
		TileHeight: testTileSize,
		MaxTiles:   16,
		MaxPolys:   1 << 10,
	}
}

func tilePayload(x, y int32) []byte {
	return detour.CreateTileData(detour.DtMeshHeader{
		X:         x,
		Y:         y,
		PolyCount: 8,
		VertCount: 12,
		Bmin:      [3]float32{float32(x) * testTileSize, -10, float32(y) * testTileSize},
		Bmax:      [3]float32{float32(x+1) * testTileSize, 10, float32(y+1) * testTileSize},
	}, bytes.Repeat([]byte{0xab}, 64))
}

// oversizedTilePayload reports more polygons than testMeshParams can address.
func oversizedTilePayload(x, y int32) []byte {
	return detour.CreateTileData(detour.DtMeshHeader{X: x, Y: y, PolyCount: 1 << 12}, nil)
}

type fixture struct {
	t     *testing.T
	paths DefaultPaths
}

func newFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mmaps"), 0o755))
	return &fixture{t: t, paths: DefaultPaths{DataDir: dir}}
}

func (f *fixture) write(path string, data []byte) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(path, data, 0o644))
}

func (f *fixture) region(region RegionID) *fixture {
	var buf bytes.Buffer
	require.NoError(f.t, WriteMeshParams(&buf, testMeshParams()))
	f.write(f.paths.MeshPath(region), buf.Bytes())
	return f
}

func (f *fixture) regionRaw(region RegionID, data []byte) *fixture {
	f.write(f.paths.MeshPath(region), data)
	return f
}

// tile writes a well formed tile whose payload reports (x, y).
func (f *fixture) tile(region RegionID, x, y int32) *fixture {
	return f.tileReporting(region, TileCoord{X: x, Y: y}, x, y)
}

func (f *fixture) tileReporting(region RegionID, at TileCoord, x, y int32) *fixture {
	var buf bytes.Buffer
	require.NoError(f.t, EncodeTile(&buf, tilePayload(x, y)))
	f.write(f.paths.TilePath(region, at), buf.Bytes())
	return f
}

func (f *fixture) tileBytes(region RegionID, x, y int32, payload []byte) *fixture {
	var buf bytes.Buffer
	require.NoError(f.t, EncodeTile(&buf, payload))
	f.write(f.paths.TilePath(region, TileCoord{X: x, Y: y}), buf.Bytes())
	return f
}

func (f *fixture) tileWithHeader(region RegionID, x, y int32, h TileFileHeader, payload []byte) *fixture {
	var buf bytes.Buffer
	require.NoError(f.t, EncodeTileWithHeader(&buf, h, payload))
	f.write(f.paths.TilePath(region, TileCoord{X: x, Y: y}), buf.Bytes())
	return f
}

type fatalRecorder struct {
	errs []*FatalError
}

func (r *fatalRecorder) handle(err *FatalError) { r.errs = append(r.errs, err) }

func (f *fixture) manager(opts ...Option) (*Manager, *observer.ObservedLogs, *fatalRecorder) {
	core, logs := observer.New(zapcore.DebugLevel)
	fatal := &fatalRecorder{}
	base := []Option{
		WithPaths(f.paths),
		WithLogger(zap.New(core)),
		WithFatalHandler(fatal.handle),
	}
	m := NewManager(append(base, opts...)...)
	f.t.Cleanup(func() { _ = m.Close() })
	return m, logs, fatal
}

// refusingMesh is a mesh that cannot remove tiles.
type refusingMesh struct {
	detour.IDtNavMesh
}

func (refusingMesh) RemoveTile(detour.DtTileRef) ([]byte, detour.DtStatus) {
	return nil, detour.DT_FAILURE | detour.DT_INVALID_PARAM
}

func refusingAllocator(params *detour.NavMeshParams) (detour.IDtNavMesh, detour.DtStatus) {
	mesh, status := detour.NewDtNavMeshWithParams(params)
	if status.DtStatusFailed() {
		return nil, status
	}
	return refusingMesh{mesh}, status
}

type recordingHook struct {
	msgs *[]string
}

func (h recordingHook) OnWrite(ce *zapcore.CheckedEntry, _ []zapcore.Field) {
	*h.msgs = append(*h.msgs, ce.Message)
}
