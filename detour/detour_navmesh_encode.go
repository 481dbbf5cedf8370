package detour

import (
	"github.com/gorustyt/mmaps/common/rw"
)

// CreateTileData serializes header followed by body into a tile payload
// accepted by AddTile. Magic and version are filled in when left zero.
func CreateTileData(header DtMeshHeader, body []byte) []byte {
	if header.Magic == 0 {
		header.Magic = DT_NAVMESH_MAGIC
	}
	if header.Version == 0 {
		header.Version = DT_NAVMESH_VERSION
	}
	w := rw.NewNavMeshDataBinWriter()
	header.ToBin(w)
	w.WriteBytes(body)
	return w.GetWriteBytes()
}

// DecodeTileHeader reads the DtMeshHeader at the front of a tile payload.
func DecodeTileHeader(data []byte) (*DtMeshHeader, error) {
	header, status := decodeMeshHeader(data)
	return header, status.Err()
}

// EncodeParams serializes mesh parameters in their on-disk form.
func EncodeParams(params NavMeshParams) []byte {
	w := rw.NewNavMeshDataBinWriter()
	params.ToBin(w)
	return w.GetWriteBytes()
}
