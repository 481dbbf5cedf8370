package rw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ReaderWriter reads or writes little-endian records. Reads are sticky on
// error: once a read fails every later read returns zero and Err reports the
// first failure.
type ReaderWriter struct {
	order   binary.ByteOrder
	dataBuf []byte
	rw      bytes.Buffer
	src     io.Reader
	err     error
	n       int
}

func NewNavMeshDataBinWriter() *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
}

func NewNavMeshDataBinReader(data []byte) *ReaderWriter {
	d := &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
	d.rw.Write(data)
	d.src = &d.rw
	return d
}

// NewStreamReader reads records straight from r without buffering the whole input.
func NewStreamReader(r io.Reader) *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8), src: r}
}

func (w *ReaderWriter) fill(n int) []byte {
	if w.err != nil {
		return nil
	}
	if w.src == nil {
		w.err = errors.New("rw: reader has no source")
		return nil
	}
	read, err := io.ReadFull(w.src, w.dataBuf[:n])
	w.n += read
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		w.err = err
		return nil
	}
	return w.dataBuf[:n]
}

// Err returns the first read error, if any.
func (w *ReaderWriter) Err() error { return w.err }

// BytesRead is the number of bytes consumed so far.
func (w *ReaderWriter) BytesRead() int { return w.n }

func (w *ReaderWriter) ReadUInt8() uint8 {
	b := w.fill(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (w *ReaderWriter) ReadUInt16() uint16 {
	b := w.fill(2)
	if b == nil {
		return 0
	}
	return w.order.Uint16(b)
}

func (w *ReaderWriter) ReadUInt32() uint32 {
	b := w.fill(4)
	if b == nil {
		return 0
	}
	return w.order.Uint32(b)
}

func (w *ReaderWriter) ReadInt32() int32 { return int32(w.ReadUInt32()) }

func (w *ReaderWriter) ReadFloat32() float32 {
	return math.Float32frombits(w.ReadUInt32())
}

func (w *ReaderWriter) ReadFloat32s(value []float32) {
	for i := range value {
		value[i] = w.ReadFloat32()
	}
}

// ReadBytes reads exactly len(value) bytes.
func (w *ReaderWriter) ReadBytes(value []byte) {
	if w.err != nil {
		return
	}
	if w.src == nil {
		w.err = errors.New("rw: reader has no source")
		return
	}
	read, err := io.ReadFull(w.src, value)
	w.n += read
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		w.err = err
	}
}

func (w *ReaderWriter) WriteUInt8(v uint8) { w.rw.WriteByte(v) }

func (w *ReaderWriter) WriteUInt16(v uint16) {
	w.order.PutUint16(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:2])
}

func (w *ReaderWriter) WriteUInt32(v uint32) {
	w.order.PutUint32(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:4])
}

func (w *ReaderWriter) WriteInt32(v int32) { w.WriteUInt32(uint32(v)) }

func (w *ReaderWriter) WriteFloat32(v float32) { w.WriteUInt32(math.Float32bits(v)) }

func (w *ReaderWriter) WriteFloat32s(v []float32) {
	for _, f := range v {
		w.WriteFloat32(f)
	}
}

func (w *ReaderWriter) WriteBytes(v []byte) { w.rw.Write(v) }

func (w *ReaderWriter) GetWriteBytes() []byte { return w.rw.Bytes() }

func (w *ReaderWriter) ChangeOrder(order binary.ByteOrder) { w.order = order }

func (w *ReaderWriter) Size() int { return w.rw.Len() }
