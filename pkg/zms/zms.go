// Package zms provides types and functions for working with ROSE Online
// 3D model (.zms) files.
//
// A model stores its vertex attributes column-at-a-time: each enabled
// attribute is written for every vertex before the next attribute starts.
// Which attributes exist is gated by a format bitmask, and the trailing
// pool field only exists from format version 8 on. Writing always emits
// version 8, so round-tripping a version 7 model upgrades its identifier;
// every other field is preserved.
package zms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/L3nn0x/rose-tools/pkg/rw"
	"github.com/L3nn0x/rose-tools/pkg/types"
)

// Identifiers of the supported format versions. Writing always uses the
// newest identifier.
const (
	IdentifierV7 = "ZMS0007"
	IdentifierV8 = "ZMS0008"
)

var (
	// ErrUnsupportedVersion is returned when the identifier at the start of
	// the stream is not a known ZMS version tag. No bytes past the
	// identifier are consumed.
	ErrUnsupportedVersion = errors.New("zms: unsupported version")

	// ErrTooManyElements is returned by Write when a sequence does not fit
	// its signed 16-bit length field.
	ErrTooManyElements = errors.New("zms: sequence exceeds 16-bit count")
)

// VertexFormat is the bitmask gating which vertex attributes are present.
type VertexFormat int32

const (
	FormatPosition   VertexFormat = 1 << 1
	FormatNormal     VertexFormat = 1 << 2
	FormatColor      VertexFormat = 1 << 3
	FormatBoneWeight VertexFormat = 1 << 4
	FormatBoneIndex  VertexFormat = 1 << 5
	FormatTangent    VertexFormat = 1 << 6
	FormatUV1        VertexFormat = 1 << 7
	FormatUV2        VertexFormat = 1 << 8
	FormatUV3        VertexFormat = 1 << 9
	FormatUV4        VertexFormat = 1 << 10
)

// Model is a parsed ZMS file.
type Model struct {
	Identifier string               `json:"identifier"`
	Format     int32                `json:"format"`
	Bounds     types.BoundingBox    `json:"bounding_box"`
	Bones      []int16              `json:"bones"`
	Vertices   []Vertex             `json:"vertices"`
	Indices    []types.Vector3Int16 `json:"indices"`
	Materials  []int16              `json:"materials"`
	Strips     []int16              `json:"strips"`

	// Pool is the vertex buffer pool type (static/dynamic/system),
	// present on disk only for version 8.
	Pool int16 `json:"pool"`
}

// Vertex holds every attribute a model vertex can carry. Attributes whose
// format bit is unset stay at their zero value.
type Vertex struct {
	Position    types.Vector3      `json:"position"`
	Normal      types.Vector3      `json:"normal"`
	Color       types.Color4       `json:"color"`
	BoneWeights types.Vector4      `json:"bone_weights"`
	BoneIndices types.Vector4Int16 `json:"bone_indices"`
	Tangent     types.Vector3      `json:"tangent"`
	UV1         types.Vector2      `json:"uv1"`
	UV2         types.Vector2      `json:"uv2"`
	UV3         types.Vector2      `json:"uv3"`
	UV4         types.Vector2      `json:"uv4"`
}

// PositionsEnabled reports whether the position attribute is present.
func (m *Model) PositionsEnabled() bool {
	return VertexFormat(m.Format)&FormatPosition != 0
}

// NormalsEnabled reports whether the normal attribute is present.
func (m *Model) NormalsEnabled() bool {
	return VertexFormat(m.Format)&FormatNormal != 0
}

// ColorsEnabled reports whether the color attribute is present.
func (m *Model) ColorsEnabled() bool {
	return VertexFormat(m.Format)&FormatColor != 0
}

// BonesEnabled reports whether bone data is present. Both the weight and
// the index bits must be set; either one alone enables nothing.
func (m *Model) BonesEnabled() bool {
	f := VertexFormat(m.Format)
	return f&FormatBoneWeight != 0 && f&FormatBoneIndex != 0
}

// TangentsEnabled reports whether the tangent attribute is present.
func (m *Model) TangentsEnabled() bool {
	return VertexFormat(m.Format)&FormatTangent != 0
}

// UV1Enabled reports whether the first texture coordinate set is present.
func (m *Model) UV1Enabled() bool {
	return VertexFormat(m.Format)&FormatUV1 != 0
}

// UV2Enabled reports whether the second texture coordinate set is present.
func (m *Model) UV2Enabled() bool {
	return VertexFormat(m.Format)&FormatUV2 != 0
}

// UV3Enabled reports whether the third texture coordinate set is present.
func (m *Model) UV3Enabled() bool {
	return VertexFormat(m.Format)&FormatUV3 != 0
}

// UV4Enabled reports whether the fourth texture coordinate set is present.
func (m *Model) UV4Enabled() bool {
	return VertexFormat(m.Format)&FormatUV4 != 0
}

// Read decodes a model from r.
func Read(r io.Reader) (*Model, error) {
	m := &Model{}
	if err := m.Read(r); err != nil {
		return nil, err
	}
	return m, nil
}

// Read decodes a model from r into m.
func (m *Model) Read(r io.Reader) error {
	rd := rw.NewReader(r)

	var err error
	if m.Identifier, err = rd.ReadCString(); err != nil {
		return fmt.Errorf("read identifier: %w", err)
	}

	var version int
	switch m.Identifier {
	case IdentifierV7:
		version = 7
	case IdentifierV8:
		version = 8
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, m.Identifier)
	}

	if m.Format, err = rd.ReadInt32(); err != nil {
		return fmt.Errorf("read format: %w", err)
	}
	if m.Bounds.Min, err = rd.ReadVector3(); err != nil {
		return fmt.Errorf("read bounding box min: %w", err)
	}
	if m.Bounds.Max, err = rd.ReadVector3(); err != nil {
		return fmt.Errorf("read bounding box max: %w", err)
	}

	boneCount, err := rd.ReadInt16()
	if err != nil {
		return fmt.Errorf("read bone count: %w", err)
	}
	// Counts are signed on disk; a negative value decodes as an empty
	// sequence rather than a malformed one.
	if boneCount < 0 {
		boneCount = 0
	}
	m.Bones = make([]int16, 0, boneCount)
	for i := int16(0); i < boneCount; i++ {
		bone, err := rd.ReadInt16()
		if err != nil {
			return fmt.Errorf("read bone %d: %w", i, err)
		}
		m.Bones = append(m.Bones, bone)
	}

	vertCount, err := rd.ReadInt16()
	if err != nil {
		return fmt.Errorf("read vertex count: %w", err)
	}
	if vertCount < 0 {
		vertCount = 0
	}
	m.Vertices = make([]Vertex, vertCount)

	// One full attribute column per enabled attribute, in fixed order.
	if m.PositionsEnabled() {
		for i := range m.Vertices {
			if m.Vertices[i].Position, err = rd.ReadVector3(); err != nil {
				return fmt.Errorf("read vertex positions: %w", err)
			}
		}
	}
	if m.NormalsEnabled() {
		for i := range m.Vertices {
			if m.Vertices[i].Normal, err = rd.ReadVector3(); err != nil {
				return fmt.Errorf("read vertex normals: %w", err)
			}
		}
	}
	if m.ColorsEnabled() {
		for i := range m.Vertices {
			if m.Vertices[i].Color, err = rd.ReadColor4(); err != nil {
				return fmt.Errorf("read vertex colors: %w", err)
			}
		}
	}
	if m.BonesEnabled() {
		for i := range m.Vertices {
			if m.Vertices[i].BoneWeights, err = rd.ReadVector4(); err != nil {
				return fmt.Errorf("read bone weights: %w", err)
			}
			if m.Vertices[i].BoneIndices, err = rd.ReadVector4Int16(); err != nil {
				return fmt.Errorf("read bone indices: %w", err)
			}
		}
	}
	if m.TangentsEnabled() {
		for i := range m.Vertices {
			if m.Vertices[i].Tangent, err = rd.ReadVector3(); err != nil {
				return fmt.Errorf("read vertex tangents: %w", err)
			}
		}
	}
	if m.UV1Enabled() {
		for i := range m.Vertices {
			if m.Vertices[i].UV1, err = rd.ReadVector2(); err != nil {
				return fmt.Errorf("read uv1: %w", err)
			}
		}
	}
	if m.UV2Enabled() {
		for i := range m.Vertices {
			if m.Vertices[i].UV2, err = rd.ReadVector2(); err != nil {
				return fmt.Errorf("read uv2: %w", err)
			}
		}
	}
	if m.UV3Enabled() {
		for i := range m.Vertices {
			if m.Vertices[i].UV3, err = rd.ReadVector2(); err != nil {
				return fmt.Errorf("read uv3: %w", err)
			}
		}
	}
	if m.UV4Enabled() {
		for i := range m.Vertices {
			if m.Vertices[i].UV4, err = rd.ReadVector2(); err != nil {
				return fmt.Errorf("read uv4: %w", err)
			}
		}
	}

	indexCount, err := rd.ReadInt16()
	if err != nil {
		return fmt.Errorf("read index count: %w", err)
	}
	if indexCount < 0 {
		indexCount = 0
	}
	m.Indices = make([]types.Vector3Int16, 0, indexCount)
	for i := int16(0); i < indexCount; i++ {
		idx, err := rd.ReadVector3Int16()
		if err != nil {
			return fmt.Errorf("read index %d: %w", i, err)
		}
		m.Indices = append(m.Indices, idx)
	}

	materialCount, err := rd.ReadInt16()
	if err != nil {
		return fmt.Errorf("read material count: %w", err)
	}
	if materialCount < 0 {
		materialCount = 0
	}
	m.Materials = make([]int16, 0, materialCount)
	for i := int16(0); i < materialCount; i++ {
		mat, err := rd.ReadInt16()
		if err != nil {
			return fmt.Errorf("read material %d: %w", i, err)
		}
		m.Materials = append(m.Materials, mat)
	}

	stripCount, err := rd.ReadInt16()
	if err != nil {
		return fmt.Errorf("read strip count: %w", err)
	}
	if stripCount < 0 {
		stripCount = 0
	}
	m.Strips = make([]int16, 0, stripCount)
	for i := int16(0); i < stripCount; i++ {
		strip, err := rd.ReadInt16()
		if err != nil {
			return fmt.Errorf("read strip %d: %w", i, err)
		}
		m.Strips = append(m.Strips, strip)
	}

	// The pool field only exists on disk from version 8.
	if version >= 8 {
		if m.Pool, err = rd.ReadInt16(); err != nil {
			return fmt.Errorf("read pool: %w", err)
		}
	}

	return nil
}

// Write encodes the model onto w. The output is always version 8: the
// identifier is upgraded and the pool field is always emitted, regardless
// of the identifier the model was read with.
func (m *Model) Write(w io.Writer) error {
	wr := rw.NewWriter(w)

	count16 := func(what string, n int) (int16, error) {
		if n > math.MaxInt16 {
			return 0, fmt.Errorf("%w: %d %s", ErrTooManyElements, n, what)
		}
		return int16(n), nil
	}

	if err := wr.WriteCString(IdentifierV8); err != nil {
		return fmt.Errorf("write identifier: %w", err)
	}
	if err := wr.WriteInt32(m.Format); err != nil {
		return fmt.Errorf("write format: %w", err)
	}
	if err := wr.WriteVector3(m.Bounds.Min); err != nil {
		return fmt.Errorf("write bounding box min: %w", err)
	}
	if err := wr.WriteVector3(m.Bounds.Max); err != nil {
		return fmt.Errorf("write bounding box max: %w", err)
	}

	boneCount, err := count16("bones", len(m.Bones))
	if err != nil {
		return err
	}
	if err := wr.WriteInt16(boneCount); err != nil {
		return fmt.Errorf("write bone count: %w", err)
	}
	for _, bone := range m.Bones {
		if err := wr.WriteInt16(bone); err != nil {
			return fmt.Errorf("write bones: %w", err)
		}
	}

	vertCount, err := count16("vertices", len(m.Vertices))
	if err != nil {
		return err
	}
	if err := wr.WriteInt16(vertCount); err != nil {
		return fmt.Errorf("write vertex count: %w", err)
	}

	if m.PositionsEnabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector3(m.Vertices[i].Position); err != nil {
				return fmt.Errorf("write vertex positions: %w", err)
			}
		}
	}
	if m.NormalsEnabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector3(m.Vertices[i].Normal); err != nil {
				return fmt.Errorf("write vertex normals: %w", err)
			}
		}
	}
	if m.ColorsEnabled() {
		for i := range m.Vertices {
			if err := wr.WriteColor4(m.Vertices[i].Color); err != nil {
				return fmt.Errorf("write vertex colors: %w", err)
			}
		}
	}
	if m.BonesEnabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector4(m.Vertices[i].BoneWeights); err != nil {
				return fmt.Errorf("write bone weights: %w", err)
			}
			if err := wr.WriteVector4Int16(m.Vertices[i].BoneIndices); err != nil {
				return fmt.Errorf("write bone indices: %w", err)
			}
		}
	}
	if m.TangentsEnabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector3(m.Vertices[i].Tangent); err != nil {
				return fmt.Errorf("write vertex tangents: %w", err)
			}
		}
	}
	if m.UV1Enabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector2(m.Vertices[i].UV1); err != nil {
				return fmt.Errorf("write uv1: %w", err)
			}
		}
	}
	if m.UV2Enabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector2(m.Vertices[i].UV2); err != nil {
				return fmt.Errorf("write uv2: %w", err)
			}
		}
	}
	if m.UV3Enabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector2(m.Vertices[i].UV3); err != nil {
				return fmt.Errorf("write uv3: %w", err)
			}
		}
	}
	if m.UV4Enabled() {
		for i := range m.Vertices {
			if err := wr.WriteVector2(m.Vertices[i].UV4); err != nil {
				return fmt.Errorf("write uv4: %w", err)
			}
		}
	}

	indexCount, err := count16("indices", len(m.Indices))
	if err != nil {
		return err
	}
	if err := wr.WriteInt16(indexCount); err != nil {
		return fmt.Errorf("write index count: %w", err)
	}
	for _, idx := range m.Indices {
		if err := wr.WriteVector3Int16(idx); err != nil {
			return fmt.Errorf("write indices: %w", err)
		}
	}

	materialCount, err := count16("materials", len(m.Materials))
	if err != nil {
		return err
	}
	if err := wr.WriteInt16(materialCount); err != nil {
		return fmt.Errorf("write material count: %w", err)
	}
	for _, mat := range m.Materials {
		if err := wr.WriteInt16(mat); err != nil {
			return fmt.Errorf("write materials: %w", err)
		}
	}

	stripCount, err := count16("strips", len(m.Strips))
	if err != nil {
		return err
	}
	if err := wr.WriteInt16(stripCount); err != nil {
		return fmt.Errorf("write strip count: %w", err)
	}
	for _, strip := range m.Strips {
		if err := wr.WriteInt16(strip); err != nil {
			return fmt.Errorf("write strips: %w", err)
		}
	}

	if err := wr.WriteInt16(m.Pool); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	return nil
}

// ReadFile reads and parses a model from a file.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	m, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes a model to a file.
func WriteFile(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := m.Write(w); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return w.Flush()
}
