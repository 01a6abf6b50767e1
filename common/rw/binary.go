package rw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var ErrShortBuffer = errors.New("rw: short buffer")

// ReaderWriter is a little endian reader/writer. Reads after the first error
// return zero values; check Err once at the end.
type ReaderWriter struct {
	order   binary.ByteOrder
	dataBuf []byte
	rw      bytes.Buffer
	err     error
}

func NewBinWriter() *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
}

func NewBinReader(data []byte) *ReaderWriter {
	d := &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
	d.rw.Write(data)
	return d
}

func (w *ReaderWriter) Err() error {
	return w.err
}

func (w *ReaderWriter) read(n int) []byte {
	if w.err != nil {
		return nil
	}
	buf := w.dataBuf[:n]
	if _, err := io.ReadFull(&w.rw, buf); err != nil {
		w.err = fmt.Errorf("%w: want %d bytes: %v", ErrShortBuffer, n, err)
		return nil
	}
	return buf
}

func (w *ReaderWriter) ReadUInt32() uint32 {
	b := w.read(4)
	if b == nil {
		return 0
	}
	return w.order.Uint32(b)
}

func (w *ReaderWriter) ReadInt32() int32 {
	return int32(w.ReadUInt32())
}

func (w *ReaderWriter) ReadFloat32() float32 {
	return math.Float32frombits(w.ReadUInt32())
}

// ReadInt32s reads n values. A negative or oversized count sets the error.
func (w *ReaderWriter) ReadInt32s(n int32) []int32 {
	if !w.checkCount(n, 4) {
		return nil
	}
	res := make([]int32, n)
	for i := range res {
		res[i] = w.ReadInt32()
	}
	return res
}

func (w *ReaderWriter) ReadFloat32s(n int32) []float32 {
	if !w.checkCount(n, 4) {
		return nil
	}
	res := make([]float32, n)
	for i := range res {
		res[i] = w.ReadFloat32()
	}
	return res
}

func (w *ReaderWriter) checkCount(n int32, size int) bool {
	if w.err != nil {
		return false
	}
	if n < 0 || int(n)*size > w.rw.Len() {
		w.err = fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrShortBuffer, n, w.rw.Len())
		return false
	}
	return true
}

func (w *ReaderWriter) WriteUInt32(v uint32) {
	w.order.PutUint32(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:4])
}

func (w *ReaderWriter) WriteInt32(v int32) {
	w.WriteUInt32(uint32(v))
}

func (w *ReaderWriter) WriteFloat32(v float32) {
	w.WriteUInt32(math.Float32bits(v))
}

func (w *ReaderWriter) WriteInt32s(v []int32) {
	for _, tmp := range v {
		w.WriteInt32(tmp)
	}
}

func (w *ReaderWriter) WriteFloat32s(v []float32) {
	for _, tmp := range v {
		w.WriteFloat32(tmp)
	}
}

func (w *ReaderWriter) GetWriteBytes() []byte {
	return w.rw.Bytes()
}

func (w *ReaderWriter) Size() int {
	return w.rw.Len()
}
