package vfs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/L3nn0x/rose-tools/pkg/rw"
)

func sampleIndex() *Index {
	return &Index{
		BaseVersion:    129,
		CurrentVersion: 129,
		FileSystems: []Metadata{
			{
				Filename: "DATA.VFS",
				Files: []FileMetadata{
					{
						Filepath:     filepath.FromSlash("3DDATA/EFFECT/FIRE.EFT"),
						Offset:       128,
						Size:         64,
						BlockSize:    64,
						IsCompressed: true,
						Version:      129,
						Checksum:     42,
					},
				},
			},
			{
				Filename: "MAP.VFS",
				Files:    nil,
			},
		},
	}
}

// encodeIndex writes idx through a temp file and returns the raw bytes.
func encodeIndex(t *testing.T, idx *Index) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.idx")
	if err := WriteFile(path, idx); err != nil {
		t.Fatalf("write index: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return data
}

func TestIndexRoundTrip(t *testing.T) {
	data := encodeIndex(t, sampleIndex())

	idx, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if idx.BaseVersion != 129 || idx.CurrentVersion != 129 {
		t.Errorf("versions: got %d/%d, want 129/129", idx.BaseVersion, idx.CurrentVersion)
	}
	if len(idx.FileSystems) != 2 {
		t.Fatalf("archive count: got %d, want 2", len(idx.FileSystems))
	}

	data0 := idx.FileSystems[0]
	if data0.Filename != "DATA.VFS" {
		t.Errorf("archive 0 filename: got %q", data0.Filename)
	}
	if len(data0.Files) != 1 {
		t.Fatalf("archive 0 file count: got %d, want 1", len(data0.Files))
	}

	file := data0.Files[0]
	want := sampleIndex().FileSystems[0].Files[0]
	if file != want {
		t.Errorf("file metadata: got %+v, want %+v", file, want)
	}

	map0 := idx.FileSystems[1]
	if map0.Filename != "MAP.VFS" {
		t.Errorf("archive 1 filename: got %q", map0.Filename)
	}
	if len(map0.Files) != 0 {
		t.Errorf("archive 1 file count: got %d, want 0", len(map0.Files))
	}

	// Encoding the decoded index again must still decode cleanly with the
	// same structure.
	again, err := Read(bytes.NewReader(encodeIndex(t, idx)))
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if len(again.FileSystems) != 2 || len(again.FileSystems[0].Files) != 1 || len(again.FileSystems[1].Files) != 0 {
		t.Errorf("structure changed across second round trip")
	}
}

// TestBodyLayout follows the written header table by hand and checks the
// backpatched offsets and per-body header fields.
func TestBodyLayout(t *testing.T) {
	idx := sampleIndex()
	idx.FileSystems[0].Files[0].IsDeleted = true
	data := encodeIndex(t, idx)

	r := bytes.NewReader(data)
	rd := rw.NewReader(r)

	for _, read := range []string{"base version", "current version", "archive count"} {
		if _, err := rd.ReadInt32(); err != nil {
			t.Fatalf("read %s: %v", read, err)
		}
	}

	type header struct {
		offset int32
	}
	var headers []header
	for i := 0; i < 2; i++ {
		if _, err := rd.ReadString16(); err != nil {
			t.Fatalf("read filename %d: %v", i, err)
		}
		off, err := rd.ReadInt32()
		if err != nil {
			t.Fatalf("read offset %d: %v", i, err)
		}
		if off == 0 {
			t.Fatalf("archive %d offset was not backpatched", i)
		}
		headers = append(headers, header{offset: off})
	}

	// First body: one file, one deleted, start offset mirrors the file's
	// offset. The path is stored with archive-style separators.
	if _, err := r.Seek(int64(headers[0].offset), io.SeekStart); err != nil {
		t.Fatalf("seek body 0: %v", err)
	}
	rd = rw.NewReader(r)
	if n, _ := rd.ReadInt32(); n != 1 {
		t.Errorf("body 0 file count: got %d, want 1", n)
	}
	if n, _ := rd.ReadInt32(); n != 1 {
		t.Errorf("body 0 deleted count: got %d, want 1", n)
	}
	if n, _ := rd.ReadInt32(); n != 128 {
		t.Errorf("body 0 start offset: got %d, want 128", n)
	}
	path, err := rd.ReadString16()
	if err != nil {
		t.Fatalf("read body 0 path: %v", err)
	}
	if path != `3DDATA\EFFECT\FIRE.EFT` {
		t.Errorf("stored path: got %q, want archive separators", path)
	}

	// Second body: empty file list; the start offset is pinned to zero
	// rather than read out of bounds.
	if _, err := r.Seek(int64(headers[1].offset), io.SeekStart); err != nil {
		t.Fatalf("seek body 1: %v", err)
	}
	rd = rw.NewReader(r)
	if n, _ := rd.ReadInt32(); n != 0 {
		t.Errorf("body 1 file count: got %d, want 0", n)
	}
	if n, _ := rd.ReadInt32(); n != 0 {
		t.Errorf("body 1 deleted count: got %d, want 0", n)
	}
	if n, _ := rd.ReadInt32(); n != 0 {
		t.Errorf("body 1 start offset: got %d, want 0", n)
	}
}

func TestNegativeCountsDecodeEmpty(t *testing.T) {
	// Negative counts on disk are empty sequences, never a crash.
	must := func(t *testing.T, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("build stream: %v", err)
		}
	}

	t.Run("ArchiveCount", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		w := rw.NewWriter(buf)
		must(t, w.WriteInt32(129))
		must(t, w.WriteInt32(129))
		must(t, w.WriteInt32(-1))

		idx, err := Read(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(idx.FileSystems) != 0 {
			t.Errorf("archives: got %d, want 0", len(idx.FileSystems))
		}
	})

	t.Run("FileCount", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		w := rw.NewWriter(buf)
		must(t, w.WriteInt32(129))
		must(t, w.WriteInt32(129))
		must(t, w.WriteInt32(1))
		must(t, w.WriteString16("A.VFS"))
		bodyOffset := w.Offset() + 4
		must(t, w.WriteInt32(int32(bodyOffset)))
		must(t, w.WriteInt32(-2)) // file count
		must(t, w.WriteInt32(0))  // deleted count
		must(t, w.WriteInt32(0))  // start offset

		idx, err := Read(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(idx.FileSystems) != 1 {
			t.Fatalf("archives: got %d, want 1", len(idx.FileSystems))
		}
		if len(idx.FileSystems[0].Files) != 0 {
			t.Errorf("files: got %d, want 0", len(idx.FileSystems[0].Files))
		}
	})
}

func TestDeletedCountRecomputed(t *testing.T) {
	idx := sampleIndex()
	idx.FileSystems[0].Files = append(idx.FileSystems[0].Files, FileMetadata{
		Filepath:  filepath.FromSlash("3DDATA/EFFECT/OLD.EFT"),
		Offset:    192,
		IsDeleted: true,
	})

	decoded, err := Read(bytes.NewReader(encodeIndex(t, idx)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var deleted int
	for _, f := range decoded.FileSystems[0].Files {
		if f.IsDeleted {
			deleted++
		}
	}
	if deleted != 1 {
		t.Errorf("deleted entries: got %d, want 1", deleted)
	}
}

func TestLookupAndOpen(t *testing.T) {
	idx := sampleIndex()
	m := &idx.FileSystems[0]

	path := filepath.FromSlash("3DDATA/EFFECT/FIRE.EFT")
	file, ok := m.Lookup(path)
	if !ok {
		t.Fatalf("lookup %q failed", path)
	}

	// A fake archive blob: the file's payload sits at its recorded offset.
	blob := make([]byte, 256)
	payload := []byte("payload!")
	copy(blob[file.Offset:], payload)

	section := file.Open(bytes.NewReader(blob))
	got := make([]byte, len(payload))
	if _, err := section.Read(got); err != nil {
		t.Fatalf("read section: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload: got %q, want %q", got, payload)
	}

	if _, ok := m.Lookup("missing"); ok {
		t.Error("lookup of missing path succeeded")
	}
}
