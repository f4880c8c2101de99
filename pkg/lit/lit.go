// Package lit provides types and functions for working with ROSE Online
// lightmap (.lit) files, the pre-baked lighting data for map objects.
//
// The layout is a flat fixed-order list: no offsets, no conditional fields.
package lit

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/L3nn0x/rose-tools/pkg/rw"
)

// Lightmap is a parsed LIT file.
type Lightmap struct {
	Objects   []Object `json:"objects"`
	Filenames []string `json:"filenames"`
}

// Object groups the lightmap parts of one map object.
type Object struct {
	ID    int32  `json:"id"`
	Parts []Part `json:"parts"`
}

// Part is one lightmapped piece of an object.
type Part struct {
	Name          string `json:"name"`
	ID            int32  `json:"id"`
	Filename      string `json:"filename"`
	LightmapIndex int32  `json:"lightmap_index"`
	PixelsPerPart int32  `json:"pixels_per_part"`
	PartsPerWidth int32  `json:"parts_per_width"`
	PartPosition  int32  `json:"part_position"`
}

// Read decodes a lightmap from r.
func Read(r io.Reader) (*Lightmap, error) {
	l := &Lightmap{}
	if err := l.Read(r); err != nil {
		return nil, err
	}
	return l, nil
}

// Read decodes a lightmap from r into l.
func (l *Lightmap) Read(r io.Reader) error {
	rd := rw.NewReader(r)

	objectCount, err := rd.ReadInt32()
	if err != nil {
		return fmt.Errorf("read object count: %w", err)
	}
	// Counts are signed on disk; a negative value decodes as an empty
	// sequence rather than a malformed one.
	if objectCount < 0 {
		objectCount = 0
	}

	l.Objects = make([]Object, 0, objectCount)
	for i := int32(0); i < objectCount; i++ {
		var obj Object

		partCount, err := rd.ReadInt32()
		if err != nil {
			return fmt.Errorf("read object %d part count: %w", i, err)
		}
		if obj.ID, err = rd.ReadInt32(); err != nil {
			return fmt.Errorf("read object %d id: %w", i, err)
		}
		if partCount < 0 {
			partCount = 0
		}

		obj.Parts = make([]Part, 0, partCount)
		for j := int32(0); j < partCount; j++ {
			var part Part
			if part.Name, err = rd.ReadString8(); err != nil {
				return fmt.Errorf("read part %d name: %w", j, err)
			}
			if part.ID, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read part %d id: %w", j, err)
			}
			if part.Filename, err = rd.ReadString8(); err != nil {
				return fmt.Errorf("read part %d filename: %w", j, err)
			}
			if part.LightmapIndex, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read part %d lightmap index: %w", j, err)
			}
			if part.PixelsPerPart, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read part %d pixels per part: %w", j, err)
			}
			if part.PartsPerWidth, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read part %d parts per width: %w", j, err)
			}
			if part.PartPosition, err = rd.ReadInt32(); err != nil {
				return fmt.Errorf("read part %d position: %w", j, err)
			}
			obj.Parts = append(obj.Parts, part)
		}

		l.Objects = append(l.Objects, obj)
	}

	fileCount, err := rd.ReadInt32()
	if err != nil {
		return fmt.Errorf("read filename count: %w", err)
	}
	if fileCount < 0 {
		fileCount = 0
	}
	l.Filenames = make([]string, 0, fileCount)
	for i := int32(0); i < fileCount; i++ {
		name, err := rd.ReadString8()
		if err != nil {
			return fmt.Errorf("read filename %d: %w", i, err)
		}
		l.Filenames = append(l.Filenames, name)
	}

	return nil
}

// Write encodes the lightmap onto w.
func (l *Lightmap) Write(w io.Writer) error {
	wr := rw.NewWriter(w)

	if err := wr.WriteInt32(int32(len(l.Objects))); err != nil {
		return fmt.Errorf("write object count: %w", err)
	}
	for i := range l.Objects {
		obj := &l.Objects[i]
		if err := wr.WriteInt32(int32(len(obj.Parts))); err != nil {
			return fmt.Errorf("write object %d part count: %w", i, err)
		}
		if err := wr.WriteInt32(obj.ID); err != nil {
			return fmt.Errorf("write object %d id: %w", i, err)
		}
		for j := range obj.Parts {
			part := &obj.Parts[j]
			if err := wr.WriteString8(part.Name); err != nil {
				return fmt.Errorf("write part %d name: %w", j, err)
			}
			if err := wr.WriteInt32(part.ID); err != nil {
				return fmt.Errorf("write part %d id: %w", j, err)
			}
			if err := wr.WriteString8(part.Filename); err != nil {
				return fmt.Errorf("write part %d filename: %w", j, err)
			}
			if err := wr.WriteInt32(part.LightmapIndex); err != nil {
				return fmt.Errorf("write part %d lightmap index: %w", j, err)
			}
			if err := wr.WriteInt32(part.PixelsPerPart); err != nil {
				return fmt.Errorf("write part %d pixels per part: %w", j, err)
			}
			if err := wr.WriteInt32(part.PartsPerWidth); err != nil {
				return fmt.Errorf("write part %d parts per width: %w", j, err)
			}
			if err := wr.WriteInt32(part.PartPosition); err != nil {
				return fmt.Errorf("write part %d position: %w", j, err)
			}
		}
	}

	if err := wr.WriteInt32(int32(len(l.Filenames))); err != nil {
		return fmt.Errorf("write filename count: %w", err)
	}
	for _, name := range l.Filenames {
		if err := wr.WriteString8(name); err != nil {
			return fmt.Errorf("write filename: %w", err)
		}
	}

	return nil
}

// ReadFile reads and parses a lightmap from a file.
func ReadFile(path string) (*Lightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lightmap: %w", err)
	}
	defer f.Close()

	l, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return l, nil
}

// WriteFile writes a lightmap to a file.
func WriteFile(path string, l *Lightmap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := l.Write(w); err != nil {
		return fmt.Errorf("write lightmap: %w", err)
	}
	return w.Flush()
}
