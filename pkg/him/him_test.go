package him

import (
	"bytes"
	"testing"

	"github.com/chewxy/math32"

	"github.com/L3nn0x/rose-tools/pkg/rw"
)

func TestHeightmapRead(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	w := rw.NewWriter(buf)

	must := func(err error) {
		if err != nil {
			t.Fatalf("build stream: %v", err)
		}
	}
	must(w.WriteInt32(3)) // width
	must(w.WriteInt32(2)) // height
	must(w.WriteInt32(4)) // grid count
	must(w.WriteFloat32(2.5))

	samples := [][]float32{
		{10, -5, 0},
		{3, 25, 7},
	}
	for _, row := range samples {
		for _, s := range row {
			must(w.WriteFloat32(s))
		}
	}
	// Trailing patch data after the grid is ignored.
	must(w.WriteInt32(0xBEEF))

	h, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if h.Width != 3 || h.Height != 2 {
		t.Errorf("dimensions: got %dx%d, want 3x2", h.Width, h.Height)
	}
	if h.GridCount != 4 {
		t.Errorf("grid count: got %d, want 4", h.GridCount)
	}
	if h.Scale != 2.5 {
		t.Errorf("scale: got %v, want 2.5", h.Scale)
	}

	for y, row := range samples {
		for x, want := range row {
			if h.Heights[y][x] != want {
				t.Errorf("sample (%d,%d): got %v, want %v", x, y, h.Heights[y][x], want)
			}
		}
	}

	if h.MinHeight != -5 {
		t.Errorf("min height: got %v, want -5", h.MinHeight)
	}
	if h.MaxHeight != 25 {
		t.Errorf("max height: got %v, want 25", h.MaxHeight)
	}
}

func TestNegativeDimensionsDecodeEmpty(t *testing.T) {
	// Negative dimensions on disk are an empty grid, never a crash. The
	// raw header values are still reported.
	buf := bytes.NewBuffer(nil)
	w := rw.NewWriter(buf)
	must := func(err error) {
		if err != nil {
			t.Fatalf("build stream: %v", err)
		}
	}
	must(w.WriteInt32(-3)) // width
	must(w.WriteInt32(-2)) // height
	must(w.WriteInt32(4))  // grid count
	must(w.WriteFloat32(2.5))

	h, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if h.Width != -3 || h.Height != -2 {
		t.Errorf("dimensions: got %dx%d, want -3x-2", h.Width, h.Height)
	}
	if len(h.Heights) != 0 {
		t.Errorf("rows: got %d, want 0", len(h.Heights))
	}
	if !math32.IsNaN(h.MinHeight) || !math32.IsNaN(h.MaxHeight) {
		t.Errorf("extremes: got %v/%v, want NaN/NaN", h.MinHeight, h.MaxHeight)
	}
}

func TestHeightmapTruncated(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	w := rw.NewWriter(buf)
	w.WriteInt32(4)
	w.WriteInt32(4)
	w.WriteInt32(4)
	w.WriteFloat32(1)
	w.WriteFloat32(1) // only one of sixteen samples

	if _, err := Read(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected error on truncated sample grid")
	}
}
