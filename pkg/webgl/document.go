package webgl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Document is the JSON geometry file. Index and Vertex each hold exactly one
// flat array.
type Document struct {
	Index   [][]uint32  `json:"index"`
	Vertex  [][]float64 `json:"vertex"`
	Texture string      `json:"texture"`
}

// NewDocument wraps an index buffer, a flattened vertex buffer and a texture
// reference.
func NewDocument(indices []uint32, vertices []float64, texture string) *Document {
	if indices == nil {
		indices = []uint32{}
	}
	if vertices == nil {
		vertices = []float64{}
	}
	return &Document{
		Index:   [][]uint32{indices},
		Vertex:  [][]float64{vertices},
		Texture: texture,
	}
}

// Indices returns the flat index buffer, or nil if the document is empty.
func (d *Document) Indices() []uint32 {
	if len(d.Index) == 0 {
		return nil
	}
	return d.Index[0]
}

// Vertices returns the flat vertex buffer, or nil if the document is empty.
func (d *Document) Vertices() []float64 {
	if len(d.Vertex) == 0 {
		return nil
	}
	return d.Vertex[0]
}

// VertexCount returns the number of table entries in the vertex buffer.
func (d *Document) VertexCount() int {
	return len(d.Vertices()) / FloatsPerVertex
}

// TriangleCount returns the number of triangles in the index buffer.
func (d *Document) TriangleCount() int {
	return len(d.Indices()) / 3
}

// Validate checks the structural guarantees the client relies on.
func (d *Document) Validate() error {
	if len(d.Index) != 1 {
		return fmt.Errorf("%w: index holds %d arrays, want 1", ErrMalformedDocument, len(d.Index))
	}
	if len(d.Vertex) != 1 {
		return fmt.Errorf("%w: vertex holds %d arrays, want 1", ErrMalformedDocument, len(d.Vertex))
	}

	vertices, indices := d.Vertices(), d.Indices()
	if len(vertices)%FloatsPerVertex != 0 {
		return fmt.Errorf("%w: vertex length %d is not a multiple of %d", ErrMalformedDocument, len(vertices), FloatsPerVertex)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: index length %d is not a multiple of 3", ErrMalformedDocument, len(indices))
	}

	count := uint32(d.VertexCount())
	for i, idx := range indices {
		if idx >= count {
			return fmt.Errorf("%w: index[%d] = %d, only %d vertices", ErrMalformedDocument, i, idx, count)
		}
	}
	return nil
}

// Encode writes doc as UTF-8 JSON. indent is the per-level indentation;
// an empty indent produces compact output.
func Encode(w io.Writer, doc *Document, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding geometry: %w", err)
	}
	return nil
}

// Indent returns an indentation string of n spaces; n <= 0 means compact.
func Indent(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Decode reads a geometry document, rejecting unknown keys.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}
