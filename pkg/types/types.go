// Package types defines the shared value types used by the ROSE file formats.
//
// These are plain records with no behaviour; the byte-level component order
// is owned by package rw, which reads and writes them.
package types

// Vector2 is a two component float vector, used for texture coordinates.
type Vector2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Vector3 is a three component float vector.
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Vector3Int16 is a three component 16-bit vector, used for triangle indices.
type Vector3Int16 struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// Vector4 is a four component float vector, used for bone weights.
type Vector4 struct {
	W float32 `json:"w"`
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Vector4Int16 is a four component 16-bit vector, used for bone indices.
type Vector4Int16 struct {
	W int16 `json:"w"`
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// Color4 is a four channel float color.
type Color4 struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// BoundingBox is an axis-aligned bounding box.
type BoundingBox struct {
	Min Vector3 `json:"min"`
	Max Vector3 `json:"max"`
}
