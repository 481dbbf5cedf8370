package mmap

import (
	"fmt"
	"io"

	"github.com/gorustyt/mmaps/common/rw"
	"github.com/gorustyt/mmaps/detour"
)

const (
	MMAP_MAGIC   = 0x4d4d4150 // 'MMAP'
	MMAP_VERSION = 15

	// TileFileHeaderSize is the serialized size of TileFileHeader.
	TileFileHeaderSize = 12
	// MaxTilePayload bounds the allocation made for a single tile.
	MaxTilePayload = 64 << 20
)

// TileFileHeader precedes every tile payload on disk.
type TileFileHeader struct {
	Magic   uint32
	Version uint32
	Size    uint32
}

func (h *TileFileHeader) FromBin(r *rw.ReaderWriter) {
	h.Magic = r.ReadUInt32()
	h.Version = r.ReadUInt32()
	h.Size = r.ReadUInt32()
}

func (h *TileFileHeader) ToBin(w *rw.ReaderWriter) {
	w.WriteUInt32(h.Magic)
	w.WriteUInt32(h.Version)
	w.WriteUInt32(h.Size)
}

// Validate checks magic and version exactly; there is no compatibility window.
func (h TileFileHeader) Validate() error {
	if h.Magic != MMAP_MAGIC {
		return fmt.Errorf("%w: bad magic 0x%08x, expected 0x%08x", ErrMalformedData, h.Magic, MMAP_MAGIC)
	}
	if h.Version != MMAP_VERSION {
		return fmt.Errorf("%w: built with generator v%d, expected v%d", ErrVersionMismatch, h.Version, MMAP_VERSION)
	}
	if h.Size > MaxTilePayload {
		return fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrMalformedData, h.Size, MaxTilePayload)
	}
	return nil
}

// ReadTileHeader reads the fixed size file header.
func ReadTileHeader(r io.Reader) (TileFileHeader, error) {
	var h TileFileHeader
	br := rw.NewStreamReader(r)
	h.FromBin(br)
	if err := br.Err(); err != nil {
		return TileFileHeader{}, fmt.Errorf("%w: short header: %v", ErrMalformedData, err)
	}
	return h, nil
}

// DecodeTile reads and validates a header, then exactly header.Size payload bytes.
func DecodeTile(r io.Reader) (*TileBuffer, error) {
	h, err := ReadTileHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	data := make([]byte, h.Size)
	br := rw.NewStreamReader(r)
	br.ReadBytes(data)
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("%w: payload truncated at %d of %d bytes", ErrMalformedData, br.BytesRead(), h.Size)
	}
	return &TileBuffer{header: h, data: data}, nil
}

// EncodeTile writes payload framed by a current-version header.
func EncodeTile(w io.Writer, payload []byte) error {
	return EncodeTileWithHeader(w, TileFileHeader{Magic: MMAP_MAGIC, Version: MMAP_VERSION, Size: uint32(len(payload))}, payload)
}

// EncodeTileWithHeader writes payload after an arbitrary header.
func EncodeTileWithHeader(w io.Writer, h TileFileHeader, payload []byte) error {
	bw := rw.NewNavMeshDataBinWriter()
	h.ToBin(bw)
	bw.WriteBytes(payload)
	_, err := w.Write(bw.GetWriteBytes())
	return err
}

type bufferState uint8

const (
	bufferHeld bufferState = iota
	bufferHandedOff
	bufferReleased
)

// TileBuffer is a tile payload with a single owner. It is either handed off
// to the mesh (which then frees it with the tile) or released by the loader
// when insertion fails. Both are terminal.
type TileBuffer struct {
	header TileFileHeader
	data   []byte
	state  bufferState
}

func (b *TileBuffer) Header() TileFileHeader { return b.header }

func (b *TileBuffer) Bytes() []byte { return b.data }

func (b *TileBuffer) Len() int { return len(b.data) }

// MeshHeader decodes the navigation tile header at the start of the payload.
func (b *TileBuffer) MeshHeader() (*detour.DtMeshHeader, error) {
	return detour.DecodeTileHeader(b.data)
}

// CheckCoord verifies that the payload describes tile c. File names are not
// unique across every coordinate, so the payload header is the authority.
func (b *TileBuffer) CheckCoord(c TileCoord) error {
	h, err := b.MeshHeader()
	if err != nil {
		return fmt.Errorf("%w: tile payload: %w", ErrMalformedData, err)
	}
	if h.X != c.X || h.Y != c.Y {
		return fmt.Errorf("%w: payload holds tile %v, requested %v", ErrMalformedData, TileCoord{X: h.X, Y: h.Y}, c)
	}
	return nil
}

// Release drops the payload unless it was handed off.
func (b *TileBuffer) Release() {
	if b.state != bufferHeld {
		return
	}
	b.data = nil
	b.state = bufferReleased
}

func (b *TileBuffer) Released() bool { return b.state == bufferReleased }

func (b *TileBuffer) HandedOff() bool { return b.state == bufferHandedOff }

// handOff marks the payload as owned by the mesh. The buffer keeps no claim on it.
func (b *TileBuffer) handOff() {
	if b.state == bufferHeld {
		b.data = nil
		b.state = bufferHandedOff
	}
}

// insertTile hands buf to mesh. On failure the buffer is released here since
// ownership never moved.
func insertTile(mesh detour.IDtNavMesh, buf *TileBuffer) (detour.DtTileRef, detour.DtStatus) {
	ref, status := mesh.AddTile(buf.Bytes(), detour.DT_TILE_FREE_DATA, 0)
	if status.DtStatusFailed() {
		buf.Release()
		return 0, status
	}
	buf.handOff()
	return ref, status
}
