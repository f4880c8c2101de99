// Package him provides read support for ROSE Online heightmap (.him) files.
package him

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"

	"github.com/L3nn0x/rose-tools/pkg/rw"
)

// Heightmap is one terrain tile's height grid. MinHeight and MaxHeight
// track the extremes seen while reading and stay NaN for an empty grid.
type Heightmap struct {
	Width     int32   `json:"width"`
	Height    int32   `json:"height"`
	GridCount int32   `json:"grid_count"`
	Scale     float32 `json:"scale"`

	Heights [][]float32 `json:"heights"`

	MinHeight float32 `json:"min_height"`
	MaxHeight float32 `json:"max_height"`
}

// Read decodes a heightmap from r.
func Read(r io.Reader) (*Heightmap, error) {
	h := &Heightmap{}
	if err := h.Read(r); err != nil {
		return nil, err
	}
	return h, nil
}

// Read decodes a heightmap from r into h.
func (h *Heightmap) Read(r io.Reader) error {
	rd := rw.NewReader(r)
	h.MinHeight = math32.NaN()
	h.MaxHeight = math32.NaN()

	var err error
	if h.Width, err = rd.ReadInt32(); err != nil {
		return fmt.Errorf("read width: %w", err)
	}
	if h.Height, err = rd.ReadInt32(); err != nil {
		return fmt.Errorf("read height: %w", err)
	}
	if h.GridCount, err = rd.ReadInt32(); err != nil {
		return fmt.Errorf("read grid count: %w", err)
	}
	if h.Scale, err = rd.ReadFloat32(); err != nil {
		return fmt.Errorf("read scale: %w", err)
	}

	// Dimensions are signed on disk; a negative one decodes as an empty
	// grid rather than a malformed one.
	width, height := h.Width, h.Height
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	h.Heights = make([][]float32, height)
	for y := int32(0); y < height; y++ {
		row := make([]float32, width)
		for x := int32(0); x < width; x++ {
			sample, err := rd.ReadFloat32()
			if err != nil {
				return fmt.Errorf("read sample (%d,%d): %w", x, y, err)
			}
			row[x] = sample

			if math32.IsNaN(h.MinHeight) || sample < h.MinHeight {
				h.MinHeight = sample
			}
			if math32.IsNaN(h.MaxHeight) || sample > h.MaxHeight {
				h.MaxHeight = sample
			}
		}
		h.Heights[y] = row
	}

	// The file carries more data after the sample grid (patch metadata)
	// which nothing downstream consumes; leave it unread.
	return nil
}

// ReadFile reads and parses a heightmap from a file.
func ReadFile(path string) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	h, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return h, nil
}
