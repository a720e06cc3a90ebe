// Package mesh describes polygon meshes as seen by the WebGL exporter.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Source is the read-only view of a mesh that the export pipeline consumes.
// Loaders and hosts provide implementations; the pipeline never depends on
// a concrete mesh type.
type Source interface {
	// Faces returns the polygons in traversal order.
	Faces() []Face
	// Position returns the coordinate of vertex v.
	Position(v int) mgl64.Vec3
	// Normal returns the normal of vertex v.
	Normal(v int) mgl64.Vec3
	// HasUVs reports whether an active per-corner UV channel exists.
	HasUVs() bool
	// UV returns the texture coordinate of corner slot on face.
	UV(face, slot int) mgl64.Vec2
	// Materials returns the material list in declaration order.
	Materials() []Material
}

// Face is an ordered list of vertex references describing one polygon.
type Face []int

// Vertex holds the per-vertex attributes of a mesh.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// TextureType identifies what a texture slot samples from.
type TextureType int

const (
	TextureNone  TextureType = 0 // Empty slot
	TextureImage TextureType = 1 // Bitmap file
	TextureOther TextureType = 2 // Procedural or unsupported
)

// String returns a human-readable texture type name.
func (t TextureType) String() string {
	switch t {
	case TextureNone:
		return "None"
	case TextureImage:
		return "Image"
	case TextureOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// TextureSlot is one texture binding of a material.
type TextureSlot struct {
	Type TextureType
	Path string // Image file path, empty when unresolved
}

// Material is a named set of texture slots.
type Material struct {
	Name     string
	Textures []TextureSlot
}
