package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/urfave/cli/v3"

	"github.com/L3nn0x/rose-tools/pkg/zms"
)

func gltfCmd() *cli.Command {
	return &cli.Command{
		Name:      "gltf",
		Usage:     "Convert a ZMS model to binary glTF",
		ArgsUsage: "<input.zms>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: input with .glb extension)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := requireInput(cmd)
			if err != nil {
				return err
			}

			model, err := zms.ReadFile(input)
			if err != nil {
				return err
			}

			doc, err := buildGltf(model)
			if err != nil {
				return fmt.Errorf("build gltf: %w", err)
			}

			out := outputPath(cmd, input, ".glb")
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()

			enc := gltf.NewEncoder(f)
			enc.AsBinary = true
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode gltf: %w", err)
			}
			return nil
		},
	}
}

// buildGltf packs the model's enabled attributes into a single-buffer glTF
// document with one mesh and one triangle primitive.
func buildGltf(m *zms.Model) (*gltf.Document, error) {
	doc := &gltf.Document{}
	doc.Asset.Version = "2.0"
	scene := uint32(0)
	doc.Scene = &scene
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	buffer := doc.Buffers[0]

	buf := bytes.NewBuffer(nil)
	attrs := make(gltf.Attribute)

	addView := func(byteOffset, byteLength uint32) uint32 {
		id := uint32(len(doc.BufferViews))
		doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
			Buffer:     0,
			ByteOffset: byteOffset,
			ByteLength: byteLength,
		})
		return id
	}
	addAccessor := func(view uint32, comp gltf.ComponentType, typ gltf.AccessorType, count uint32) uint32 {
		id := uint32(len(doc.Accessors))
		doc.Accessors = append(doc.Accessors, &gltf.Accessor{
			BufferView:    &view,
			ComponentType: comp,
			Type:          typ,
			Count:         count,
		})
		return id
	}

	nv := uint32(len(m.Vertices))

	// Float attributes first so every accessor stays 4-byte aligned; the
	// 2-byte indices go last.
	if m.PositionsEnabled() {
		start := uint32(buf.Len())
		min := []float32{0, 0, 0}
		max := []float32{0, 0, 0}
		for i, v := range m.Vertices {
			if err := binary.Write(buf, binary.LittleEndian, v.Position); err != nil {
				return nil, err
			}
			if i == 0 {
				min = []float32{v.Position.X, v.Position.Y, v.Position.Z}
				max = []float32{v.Position.X, v.Position.Y, v.Position.Z}
				continue
			}
			for c, val := range []float32{v.Position.X, v.Position.Y, v.Position.Z} {
				if val < min[c] {
					min[c] = val
				}
				if val > max[c] {
					max[c] = val
				}
			}
		}
		view := addView(start, uint32(buf.Len())-start)
		acc := addAccessor(view, gltf.ComponentFloat, gltf.AccessorVec3, nv)
		doc.Accessors[acc].Min = min
		doc.Accessors[acc].Max = max
		attrs["POSITION"] = acc
	}
	if m.NormalsEnabled() {
		start := uint32(buf.Len())
		for _, v := range m.Vertices {
			if err := binary.Write(buf, binary.LittleEndian, v.Normal); err != nil {
				return nil, err
			}
		}
		view := addView(start, uint32(buf.Len())-start)
		attrs["NORMAL"] = addAccessor(view, gltf.ComponentFloat, gltf.AccessorVec3, nv)
	}
	if m.UV1Enabled() {
		start := uint32(buf.Len())
		for _, v := range m.Vertices {
			if err := binary.Write(buf, binary.LittleEndian, v.UV1); err != nil {
				return nil, err
			}
		}
		view := addView(start, uint32(buf.Len())-start)
		attrs["TEXCOORD_0"] = addAccessor(view, gltf.ComponentFloat, gltf.AccessorVec2, nv)
	}

	start := uint32(buf.Len())
	for _, tri := range m.Indices {
		for _, idx := range []int16{tri.X, tri.Y, tri.Z} {
			if err := binary.Write(buf, binary.LittleEndian, uint16(idx)); err != nil {
				return nil, err
			}
		}
	}
	view := addView(start, uint32(buf.Len())-start)
	indices := addAccessor(view, gltf.ComponentUshort, gltf.AccessorScalar, uint32(len(m.Indices))*3)

	buffer.ByteLength = uint32(buf.Len())
	buffer.Data = buf.Bytes()

	primitive := &gltf.Primitive{
		Attributes: attrs,
		Indices:    &indices,
		Mode:       gltf.PrimitiveTriangles,
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Primitives: []*gltf.Primitive{primitive}})

	mesh := uint32(0)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: &mesh})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	return doc, nil
}
