package rw

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/L3nn0x/rose-tools/pkg/types"
)

// Writer encodes ROSE primitive values onto an underlying stream.
//
// Writes are sequential and unbuffered; the Writer keeps a running count of
// bytes written so callers can know the current offset without the stream
// being seekable. Formats that patch earlier bytes (the VFS index) seek the
// underlying stream themselves and use its positions instead.
type Writer struct {
	w   io.Writer
	n   int64
	buf [8]byte
}

// NewWriter returns a Writer encoding onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the number of bytes written through this Writer.
func (w *Writer) Offset() int64 {
	return w.n
}

func (w *Writer) write(b []byte) error {
	n, err := w.w.Write(b)
	w.n += int64(n)
	return err
}

// WriteUint8 writes one unsigned byte.
func (w *Writer) WriteUint8(v uint8) error {
	w.buf[0] = v
	return w.write(w.buf[:1])
}

// WriteUint16 writes a little-endian unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	return w.write(w.buf[:2])
}

// WriteUint32 writes a little-endian unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	return w.write(w.buf[:4])
}

// WriteInt8 writes one signed byte.
func (w *Writer) WriteInt8(v int8) error {
	return w.WriteUint8(uint8(v))
}

// WriteInt16 writes a little-endian signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

// WriteInt32 writes a little-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteBool writes true as 0x01 and false as 0x00.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

// WriteFloat32 writes a little-endian IEEE 754 single precision float.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes a little-endian IEEE 754 double precision float.
func (w *Writer) WriteFloat64(v float64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	return w.write(w.buf[:8])
}

// WriteCString writes the raw string bytes followed by a NUL terminator.
func (w *Writer) WriteCString(s string) error {
	if err := w.write([]byte(s)); err != nil {
		return err
	}
	return w.WriteUint8(0)
}

// WriteString8 writes a u8 length prefix followed by the raw string bytes.
func (w *Writer) WriteString8(s string) error {
	if err := w.WriteUint8(uint8(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

// WriteString16 writes a u16 length prefix followed by the raw string bytes.
func (w *Writer) WriteString16(s string) error {
	if err := w.WriteUint16(uint16(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

// WriteString32 writes a u32 length prefix followed by the raw string bytes.
func (w *Writer) WriteString32(s string) error {
	if err := w.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	return w.write([]byte(s))
}

// WriteColor4 writes a float color in R, G, B, A order.
func (w *Writer) WriteColor4(c types.Color4) error {
	if err := w.WriteFloat32(c.R); err != nil {
		return err
	}
	if err := w.WriteFloat32(c.G); err != nil {
		return err
	}
	if err := w.WriteFloat32(c.B); err != nil {
		return err
	}
	return w.WriteFloat32(c.A)
}

// WriteVector2 writes a float vector in X, Y order.
func (w *Writer) WriteVector2(v types.Vector2) error {
	if err := w.WriteFloat32(v.X); err != nil {
		return err
	}
	return w.WriteFloat32(v.Y)
}

// WriteVector3 writes a float vector in X, Y, Z order.
func (w *Writer) WriteVector3(v types.Vector3) error {
	if err := w.WriteFloat32(v.X); err != nil {
		return err
	}
	if err := w.WriteFloat32(v.Y); err != nil {
		return err
	}
	return w.WriteFloat32(v.Z)
}

// WriteVector3Int16 writes a 16-bit vector in X, Y, Z order.
func (w *Writer) WriteVector3Int16(v types.Vector3Int16) error {
	if err := w.WriteInt16(v.X); err != nil {
		return err
	}
	if err := w.WriteInt16(v.Y); err != nil {
		return err
	}
	return w.WriteInt16(v.Z)
}

// WriteVector4 writes a float vector in W, X, Y, Z order.
func (w *Writer) WriteVector4(v types.Vector4) error {
	if err := w.WriteFloat32(v.W); err != nil {
		return err
	}
	if err := w.WriteFloat32(v.X); err != nil {
		return err
	}
	if err := w.WriteFloat32(v.Y); err != nil {
		return err
	}
	return w.WriteFloat32(v.Z)
}

// WriteVector4Int16 writes a 16-bit vector in W, X, Y, Z order.
func (w *Writer) WriteVector4Int16(v types.Vector4Int16) error {
	if err := w.WriteInt16(v.W); err != nil {
		return err
	}
	if err := w.WriteInt16(v.X); err != nil {
		return err
	}
	if err := w.WriteInt16(v.Y); err != nil {
		return err
	}
	return w.WriteInt16(v.Z)
}
