package rw

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/L3nn0x/rose-tools/pkg/types"
)

func TestScalars(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	w := NewWriter(buf)

	if err := w.WriteInt32(-12345); err != nil {
		t.Fatalf("write i32: %v", err)
	}
	if err := w.WriteUint16(0xCAFE); err != nil {
		t.Fatalf("write u16: %v", err)
	}
	if err := w.WriteFloat32(1.5); err != nil {
		t.Fatalf("write f32: %v", err)
	}
	if err := w.WriteFloat64(-2.25); err != nil {
		t.Fatalf("write f64: %v", err)
	}
	if w.Offset() != 4+2+4+8 {
		t.Errorf("offset: got %d, want %d", w.Offset(), 4+2+4+8)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if v, err := r.ReadInt32(); err != nil || v != -12345 {
		t.Errorf("read i32: got %d, %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0xCAFE {
		t.Errorf("read u16: got %#x, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 1.5 {
		t.Errorf("read f32: got %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != -2.25 {
		t.Errorf("read f64: got %v, %v", v, err)
	}
}

func TestBool(t *testing.T) {
	// Any nonzero byte decodes as true.
	r := NewReader(bytes.NewReader([]byte{0x00, 0x01, 0x7F}))
	for i, want := range []bool{false, true, true} {
		got, err := r.ReadBool()
		if err != nil {
			t.Fatalf("read bool %d: %v", i, err)
		}
		if got != want {
			t.Errorf("bool %d: got %v, want %v", i, got, want)
		}
	}

	buf := bytes.NewBuffer(nil)
	w := NewWriter(buf)
	if err := w.WriteBool(true); err != nil {
		t.Fatalf("write bool: %v", err)
	}
	if err := w.WriteBool(false); err != nil {
		t.Fatalf("write bool: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x01, 0x00}) {
		t.Errorf("bool encoding: got %v", buf.Bytes())
	}
}

func TestStrings(t *testing.T) {
	t.Run("CString", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		if err := NewWriter(buf).WriteCString("CART01"); err != nil {
			t.Fatalf("write: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), []byte("CART01\x00")) {
			t.Errorf("encoding: got %q", buf.Bytes())
		}

		s, err := NewReader(bytes.NewReader(buf.Bytes())).ReadCString()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if s != "CART01" {
			t.Errorf("got %q, want %q", s, "CART01")
		}
	})

	t.Run("LengthPrefixed", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		w := NewWriter(buf)
		if err := w.WriteString8("a"); err != nil {
			t.Fatalf("write u8: %v", err)
		}
		if err := w.WriteString16("DATA.VFS"); err != nil {
			t.Fatalf("write u16: %v", err)
		}
		if err := w.WriteString32(""); err != nil {
			t.Fatalf("write u32: %v", err)
		}

		r := NewReader(bytes.NewReader(buf.Bytes()))
		if s, err := r.ReadString8(); err != nil || s != "a" {
			t.Errorf("read u8: got %q, %v", s, err)
		}
		if s, err := r.ReadString16(); err != nil || s != "DATA.VFS" {
			t.Errorf("read u16: got %q, %v", s, err)
		}
		if s, err := r.ReadString32(); err != nil || s != "" {
			t.Errorf("read u32: got %q, %v", s, err)
		}
	})

	t.Run("TrailingNul", func(t *testing.T) {
		// A single trailing NUL inside the counted bytes is dropped;
		// it is tolerated, not required.
		raw := []byte{0x04, 0x00, 'a', 'b', 'c', 0x00}
		s, err := NewReader(bytes.NewReader(raw)).ReadString16()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if s != "abc" {
			t.Errorf("got %q, want %q", s, "abc")
		}
	})

	t.Run("LossyDecode", func(t *testing.T) {
		// 0xB0 0xA1 is EUC-KR; invalid UTF-8 bytes are replaced, never
		// rejected.
		raw := []byte{'A', 0xB0, 0xA1, 'B', 0x00}
		s, err := NewReader(bytes.NewReader(raw)).ReadCString()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if s == "" || s[0] != 'A' || s[len(s)-1] != 'B' {
			t.Errorf("lossy decode mangled ASCII: %q", s)
		}
		if bytes.ContainsRune([]byte(s), 0xB0) {
			t.Errorf("invalid bytes survived decode: %q", s)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte{0x05, 0x00, 'a'})).ReadString16()
		if err != io.ErrUnexpectedEOF {
			t.Errorf("got %v, want %v", err, io.ErrUnexpectedEOF)
		}
	})
}

func TestAggregateComponentOrder(t *testing.T) {
	t.Run("Vector4WFirst", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		v := types.Vector4{W: 1, X: 2, Y: 3, Z: 4}
		if err := NewWriter(buf).WriteVector4(v); err != nil {
			t.Fatalf("write: %v", err)
		}
		first := binary.LittleEndian.Uint32(buf.Bytes()[:4])
		if first != 0x3F800000 { // 1.0f
			t.Errorf("first component is not W: %#x", first)
		}

		got, err := NewReader(bytes.NewReader(buf.Bytes())).ReadVector4()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != v {
			t.Errorf("round trip: got %+v, want %+v", got, v)
		}
	})

	t.Run("Vector4Int16WFirst", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		v := types.Vector4Int16{W: 10, X: 20, Y: 30, Z: 40}
		if err := NewWriter(buf).WriteVector4Int16(v); err != nil {
			t.Fatalf("write: %v", err)
		}
		if binary.LittleEndian.Uint16(buf.Bytes()[:2]) != 10 {
			t.Errorf("first component is not W: %v", buf.Bytes()[:2])
		}

		got, err := NewReader(bytes.NewReader(buf.Bytes())).ReadVector4Int16()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != v {
			t.Errorf("round trip: got %+v, want %+v", got, v)
		}
	})

	t.Run("Color4RGBA", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		c := types.Color4{R: 0.25, G: 0.5, B: 0.75, A: 1}
		if err := NewWriter(buf).WriteColor4(c); err != nil {
			t.Fatalf("write: %v", err)
		}

		r := NewReader(bytes.NewReader(buf.Bytes()))
		if first, _ := r.ReadFloat32(); first != 0.25 {
			t.Errorf("first component is not R: %v", first)
		}

		got, err := NewReader(bytes.NewReader(buf.Bytes())).ReadColor4()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != c {
			t.Errorf("round trip: got %+v, want %+v", got, c)
		}
	})

	t.Run("Vector3", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		v := types.Vector3{X: -1, Y: 2, Z: -3}
		if err := NewWriter(buf).WriteVector3(v); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := NewReader(bytes.NewReader(buf.Bytes())).ReadVector3()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != v {
			t.Errorf("round trip: got %+v, want %+v", got, v)
		}
	})
}

func TestShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))
	if _, err := r.ReadInt32(); err == nil {
		t.Fatal("expected error on short read")
	}
}
