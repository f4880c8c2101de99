// Package vfs provides types and functions for working with the ROSE Online
// virtual file system index (.idx) files.
//
// Assets ship inside binary blobs (.vfs) accompanied by one index holding
// the metadata for every file in every blob. The index is a two-level
// structure: a header table of (archive filename, body offset) pairs, with
// each body — the per-archive file list — stored out of line later in the
// same stream. Decoding follows each offset and returns to the header;
// encoding reserves placeholder offsets and backpatches them once the body
// positions are known.
//
// Compression and encryption flags on file entries are carried as metadata
// only; payloads are never transformed.
package vfs

import (
	"fmt"
	"io"
	"os"

	"github.com/L3nn0x/rose-tools/pkg/rw"
)

// Index is a parsed virtual file system index.
type Index struct {
	BaseVersion    int32      `json:"base_version"`
	CurrentVersion int32      `json:"current_version"`
	FileSystems    []Metadata `json:"file_systems"`
}

// Metadata describes one archive: the blob's filename and the metadata of
// every file stored inside it.
type Metadata struct {
	Filename string         `json:"filename"`
	Files    []FileMetadata `json:"files"`
}

// FileMetadata describes a single file inside an archive.
type FileMetadata struct {
	Filepath     string `json:"filepath"`
	Offset       int32  `json:"offset"`
	Size         int32  `json:"size"`
	BlockSize    int32  `json:"block_size"`
	IsDeleted    bool   `json:"is_deleted"`
	IsCompressed bool   `json:"is_compressed"`
	IsEncrypted  bool   `json:"is_encrypted"`
	Version      int32  `json:"version"`
	Checksum     int32  `json:"checksum"`
}

// Read decodes an index from r. The stream must be seekable: archive bodies
// are located through offsets recorded in the header table.
func Read(r io.ReadSeeker) (*Index, error) {
	idx := &Index{}
	if err := idx.Read(r); err != nil {
		return nil, err
	}
	return idx, nil
}

// Read decodes an index from r into idx.
func (idx *Index) Read(r io.ReadSeeker) error {
	rd := rw.NewReader(r)

	var err error
	if idx.BaseVersion, err = rd.ReadInt32(); err != nil {
		return fmt.Errorf("read base version: %w", err)
	}
	if idx.CurrentVersion, err = rd.ReadInt32(); err != nil {
		return fmt.Errorf("read current version: %w", err)
	}

	archiveCount, err := rd.ReadInt32()
	if err != nil {
		return fmt.Errorf("read archive count: %w", err)
	}
	// Counts are signed on disk; a negative value decodes as an empty
	// sequence rather than a malformed one.
	if archiveCount < 0 {
		archiveCount = 0
	}

	idx.FileSystems = make([]Metadata, 0, archiveCount)
	for i := int32(0); i < archiveCount; i++ {
		var vfs Metadata
		if vfs.Filename, err = rd.ReadString16(); err != nil {
			return fmt.Errorf("read archive %d filename: %w", i, err)
		}

		bodyOffset, err := rd.ReadInt32()
		if err != nil {
			return fmt.Errorf("read archive %d offset: %w", i, err)
		}

		// The next archive's header entry starts here; come back after
		// reading the out-of-line body.
		nextEntry, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("query header position: %w", err)
		}
		if _, err := r.Seek(int64(bodyOffset), io.SeekStart); err != nil {
			return fmt.Errorf("seek archive %d body: %w", i, err)
		}

		fileCount, err := rd.ReadInt32()
		if err != nil {
			return fmt.Errorf("read archive %d file count: %w", i, err)
		}
		if _, err := rd.ReadInt32(); err != nil { // deleted count, recomputed on write
			return fmt.Errorf("read archive %d deleted count: %w", i, err)
		}
		if _, err := rd.ReadInt32(); err != nil { // start offset, not validated
			return fmt.Errorf("read archive %d start offset: %w", i, err)
		}
		if fileCount < 0 {
			fileCount = 0
		}

		vfs.Files = make([]FileMetadata, 0, fileCount)
		for j := int32(0); j < fileCount; j++ {
			var file FileMetadata
			raw, err := rd.ReadString16()
			if err != nil {
				return fmt.Errorf("read file %d path: %w", j, err)
			}
			file.Filepath = fromArchivePath(raw)
			if file.Offset, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read file %d offset: %w", j, err)
			}
			if file.Size, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read file %d size: %w", j, err)
			}
			if file.BlockSize, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read file %d block size: %w", j, err)
			}
			if file.IsDeleted, err = rd.ReadBool(); err != nil {
				return fmt.Errorf("read file %d deleted flag: %w", j, err)
			}
			if file.IsCompressed, err = rd.ReadBool(); err != nil {
				return fmt.Errorf("read file %d compressed flag: %w", j, err)
			}
			if file.IsEncrypted, err = rd.ReadBool(); err != nil {
				return fmt.Errorf("read file %d encrypted flag: %w", j, err)
			}
			if file.Version, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read file %d version: %w", j, err)
			}
			if file.Checksum, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read file %d checksum: %w", j, err)
			}
			vfs.Files = append(vfs.Files, file)
		}

		idx.FileSystems = append(idx.FileSystems, vfs)

		if i < archiveCount-1 {
			if _, err := r.Seek(nextEntry, io.SeekStart); err != nil {
				return fmt.Errorf("seek next header entry: %w", err)
			}
		}
	}

	return nil
}

// Write encodes the index onto w in two phases: first the header table with
// zero placeholders for every body offset, then the bodies, patching each
// placeholder once the body's position is known. The placeholder pass must
// complete before any body is written — header entries have variable length
// (strings), so no body position is known earlier.
func (idx *Index) Write(w io.WriteSeeker) error {
	wr := rw.NewWriter(w)

	if err := wr.WriteInt32(idx.BaseVersion); err != nil {
		return fmt.Errorf("write base version: %w", err)
	}
	if err := wr.WriteInt32(idx.CurrentVersion); err != nil {
		return fmt.Errorf("write current version: %w", err)
	}
	if err := wr.WriteInt32(int32(len(idx.FileSystems))); err != nil {
		return fmt.Errorf("write archive count: %w", err)
	}

	// Phase 1: header table with reserved offsets.
	placeholders := make([]int64, 0, len(idx.FileSystems))
	for i := range idx.FileSystems {
		if err := wr.WriteString16(idx.FileSystems[i].Filename); err != nil {
			return fmt.Errorf("write archive %d filename: %w", i, err)
		}
		pos, err := w.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("query placeholder position: %w", err)
		}
		placeholders = append(placeholders, pos)
		if err := wr.WriteInt32(0); err != nil {
			return fmt.Errorf("reserve archive %d offset: %w", i, err)
		}
	}

	// Phase 2: bodies, backpatching the reserved offsets.
	for i := range idx.FileSystems {
		vfs := &idx.FileSystems[i]

		bodyOffset, err := w.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("query body position: %w", err)
		}
		if _, err := w.Seek(placeholders[i], io.SeekStart); err != nil {
			return fmt.Errorf("seek archive %d placeholder: %w", i, err)
		}
		if err := wr.WriteInt32(int32(bodyOffset)); err != nil {
			return fmt.Errorf("patch archive %d offset: %w", i, err)
		}
		if _, err := w.Seek(bodyOffset, io.SeekStart); err != nil {
			return fmt.Errorf("seek archive %d body: %w", i, err)
		}

		var deletedCount int32
		for _, file := range vfs.Files {
			if file.IsDeleted {
				deletedCount++
			}
		}

		// The start offset header field mirrors the first file's offset.
		// An empty archive has no first file; pin the field to zero.
		var startOffset int32
		if len(vfs.Files) > 0 {
			startOffset = vfs.Files[0].Offset
		}

		if err := wr.WriteInt32(int32(len(vfs.Files))); err != nil {
			return fmt.Errorf("write archive %d file count: %w", i, err)
		}
		if err := wr.WriteInt32(deletedCount); err != nil {
			return fmt.Errorf("write archive %d deleted count: %w", i, err)
		}
		if err := wr.WriteInt32(startOffset); err != nil {
			return fmt.Errorf("write archive %d start offset: %w", i, err)
		}

		for j, file := range vfs.Files {
			if err := wr.WriteString16(toArchivePath(file.Filepath)); err != nil {
				return fmt.Errorf("write file %d path: %w", j, err)
			}
			if err := wr.WriteInt32(file.Offset); err != nil {
				return fmt.Errorf("write file %d offset: %w", j, err)
			}
			if err := wr.WriteInt32(file.Size); err != nil {
				return fmt.Errorf("write file %d size: %w", j, err)
			}
			if err := wr.WriteInt32(file.BlockSize); err != nil {
				return fmt.Errorf("write file %d block size: %w", j, err)
			}
			if err := wr.WriteBool(file.IsDeleted); err != nil {
				return fmt.Errorf("write file %d deleted flag: %w", j, err)
			}
			if err := wr.WriteBool(file.IsCompressed); err != nil {
				return fmt.Errorf("write file %d compressed flag: %w", j, err)
			}
			if err := wr.WriteBool(file.IsEncrypted); err != nil {
				return fmt.Errorf("write file %d encrypted flag: %w", j, err)
			}
			if err := wr.WriteInt32(file.Version); err != nil {
				return fmt.Errorf("write file %d version: %w", j, err)
			}
			if err := wr.WriteInt32(file.Checksum); err != nil {
				return fmt.Errorf("write file %d checksum: %w", j, err)
			}
		}
	}

	return nil
}

// ReadFile reads and parses an index from a file.
func ReadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	idx, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return idx, nil
}

// WriteFile writes an index to a file.
func WriteFile(path string, idx *Index) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if err := idx.Write(f); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Lookup returns the metadata for the file with the given host-form path.
func (m *Metadata) Lookup(path string) (*FileMetadata, bool) {
	for i := range m.Files {
		if m.Files[i].Filepath == path {
			return &m.Files[i], true
		}
	}
	return nil, false
}

// Open returns a reader over the file's raw bytes inside its archive blob.
// Payloads flagged compressed or encrypted are returned verbatim.
func (f *FileMetadata) Open(archive io.ReaderAt) *io.SectionReader {
	return io.NewSectionReader(archive, int64(f.Offset), int64(f.Size))
}
