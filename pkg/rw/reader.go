// Package rw implements the primitive little-endian codec shared by every
// ROSE file format.
//
// All multi-byte values are little-endian. Strings are stored in a legacy
// 8-bit encoding (EUC-KR in the original assets) and are decoded lossily to
// UTF-8: byte sequences that are not valid UTF-8 are replaced rather than
// rejected, so some string data may not survive a round trip.
package rw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/L3nn0x/rose-tools/pkg/types"
)

// Reader decodes ROSE primitive values from an underlying stream.
//
// Reads are sequential; a Reader never seeks. Formats that need random
// access (the VFS index) seek the underlying stream between calls. Any
// read that cannot obtain enough bytes returns the underlying I/O error
// (io.EOF or io.ErrUnexpectedEOF); values themselves are never validated.
type Reader struct {
	r   io.Reader
	buf [8]byte
}

// NewReader returns a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) fill(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadUint8 reads one unsigned byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadInt16 reads a little-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a little-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadBool reads a single byte; zero is false, anything else is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadFloat32 reads a little-endian IEEE 754 single precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a little-endian IEEE 754 double precision float.
func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadCString reads bytes up to and including a NUL terminator and decodes
// the bytes before the terminator.
func (r *Reader) ReadCString() (string, error) {
	var raw bytes.Buffer
	for {
		b, err := r.ReadUint8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		raw.WriteByte(b)
	}
	return decodeText(raw.Bytes()), nil
}

// ReadString reads exactly n bytes and decodes them. A single trailing NUL
// byte is dropped when present; the terminator is not guaranteed to exist.
func (r *Reader) ReadString(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("rw: negative string length %d", n)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r.r, raw); err != nil {
		return "", err
	}
	if n > 0 && raw[n-1] == 0 {
		raw = raw[:n-1]
	}
	return decodeText(raw), nil
}

// ReadString8 reads a string prefixed with a u8 length.
func (r *Reader) ReadString8() (string, error) {
	n, err := r.ReadUint8()
	if err != nil {
		return "", err
	}
	return r.ReadString(int(n))
}

// ReadString16 reads a string prefixed with a u16 length.
func (r *Reader) ReadString16() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	return r.ReadString(int(n))
}

// ReadString32 reads a string prefixed with a u32 length.
func (r *Reader) ReadString32() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	return r.ReadString(int(n))
}

// ReadColor4 reads a float color in R, G, B, A order.
func (r *Reader) ReadColor4() (types.Color4, error) {
	var c types.Color4
	var err error
	if c.R, err = r.ReadFloat32(); err != nil {
		return c, err
	}
	if c.G, err = r.ReadFloat32(); err != nil {
		return c, err
	}
	if c.B, err = r.ReadFloat32(); err != nil {
		return c, err
	}
	c.A, err = r.ReadFloat32()
	return c, err
}

// ReadVector2 reads a float vector in X, Y order.
func (r *Reader) ReadVector2() (types.Vector2, error) {
	var v types.Vector2
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	v.Y, err = r.ReadFloat32()
	return v, err
}

// ReadVector3 reads a float vector in X, Y, Z order.
func (r *Reader) ReadVector3() (types.Vector3, error) {
	var v types.Vector3
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadFloat32()
	return v, err
}

// ReadVector3Int16 reads a 16-bit vector in X, Y, Z order.
func (r *Reader) ReadVector3Int16() (types.Vector3Int16, error) {
	var v types.Vector3Int16
	var err error
	if v.X, err = r.ReadInt16(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadInt16(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadInt16()
	return v, err
}

// ReadVector4 reads a float vector in W, X, Y, Z order.
func (r *Reader) ReadVector4() (types.Vector4, error) {
	var v types.Vector4
	var err error
	if v.W, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	if v.X, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadFloat32()
	return v, err
}

// ReadVector4Int16 reads a 16-bit vector in W, X, Y, Z order.
func (r *Reader) ReadVector4Int16() (types.Vector4Int16, error) {
	var v types.Vector4Int16
	var err error
	if v.W, err = r.ReadInt16(); err != nil {
		return v, err
	}
	if v.X, err = r.ReadInt16(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadInt16(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadInt16()
	return v, err
}

// decodeText lossily decodes legacy 8-bit string bytes to UTF-8, replacing
// invalid sequences with U+FFFD.
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
