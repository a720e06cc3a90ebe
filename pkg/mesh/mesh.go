package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh validation errors.
var (
	ErrVertexOutOfRange = errors.New("vertex reference out of range")
	ErrUVSlotMissing    = errors.New("face has fewer UV slots than corners")
	ErrUVFaceMismatch   = errors.New("UV channel does not cover every face")
)

// Mesh is an in-memory Source.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Polygons []Face

	// CornerUVs holds one UV per corner slot for each polygon.
	// A nil slice means the mesh has no UV channel.
	CornerUVs [][]mgl64.Vec2

	MaterialList []Material
}

var _ Source = (*Mesh)(nil)

// Faces implements Source.
func (m *Mesh) Faces() []Face { return m.Polygons }

// Position implements Source.
func (m *Mesh) Position(v int) mgl64.Vec3 { return m.Vertices[v].Position }

// Normal implements Source.
func (m *Mesh) Normal(v int) mgl64.Vec3 { return m.Vertices[v].Normal }

// HasUVs implements Source.
func (m *Mesh) HasUVs() bool { return m.CornerUVs != nil }

// UV implements Source.
func (m *Mesh) UV(face, slot int) mgl64.Vec2 { return m.CornerUVs[face][slot] }

// Materials implements Source.
func (m *Mesh) Materials() []Material { return m.MaterialList }

// CornerCount returns the total number of face corners.
func (m *Mesh) CornerCount() int {
	n := 0
	for _, f := range m.Polygons {
		n += len(f)
	}
	return n
}

// Validate checks that every face references existing vertices and, when a
// UV channel is present, that every corner has a UV.
func (m *Mesh) Validate() error {
	if m.CornerUVs != nil && len(m.CornerUVs) != len(m.Polygons) {
		return fmt.Errorf("%w: %d UV faces for %d faces", ErrUVFaceMismatch, len(m.CornerUVs), len(m.Polygons))
	}
	for fi, f := range m.Polygons {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d (have %d)", ErrVertexOutOfRange, fi, v, len(m.Vertices))
			}
		}
		if m.CornerUVs != nil && len(m.CornerUVs[fi]) < len(f) {
			return fmt.Errorf("%w: face %d has %d corners, %d UVs", ErrUVSlotMissing, fi, len(f), len(m.CornerUVs[fi]))
		}
	}
	return nil
}

// SetPositions replaces the vertex list with the given positions and zero normals.
func (m *Mesh) SetPositions(positions []mgl64.Vec3) {
	m.Vertices = make([]Vertex, len(positions))
	for i, p := range positions {
		m.Vertices[i].Position = p
	}
}

// RecomputeNormals overwrites every vertex normal with the smoothed face normal.
func (m *Mesh) RecomputeNormals() {
	positions := make([]mgl64.Vec3, len(m.Vertices))
	for i := range m.Vertices {
		positions[i] = m.Vertices[i].Position
	}
	normals := SmoothNormals(positions, m.Polygons)
	for i := range m.Vertices {
		m.Vertices[i].Normal = normals[i]
	}
}
