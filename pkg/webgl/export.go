package webgl

import (
	"fmt"

	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// Result holds the output of one export pass.
type Result struct {
	Table     *VertexTable
	Indices   []uint32 // One table slot per triangle corner
	Texture   string   // Texture path without prefix, may be empty
	Triangles int

	prefix string
}

// Document builds the serializable geometry document.
func (r *Result) Document() *Document {
	return NewDocument(r.Indices, r.Table.Flatten(), r.prefix+r.Texture)
}

// validator is implemented by sources that can check their own references,
// such as *mesh.Mesh.
type validator interface {
	Validate() error
}

// Export runs the full pipeline over src. A nil source or a mesh without
// faces fails with ErrMissingMeshData. Sources implementing Validate are
// checked before any attribute is read. Nothing is returned on failure.
func Export(src mesh.Source, opts Options) (*Result, error) {
	if src == nil {
		return nil, ErrMissingMeshData
	}
	faces := src.Faces()
	if len(faces) == 0 {
		return nil, ErrMissingMeshData
	}

	tris, err := Triangulate(faces)
	if err != nil {
		return nil, err
	}
	if v, ok := src.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMesh, err)
		}
	}

	sampler, err := NewSampler(src, opts)
	if err != nil {
		return nil, err
	}

	table := NewVertexTable()
	indices := make([]uint32, 0, len(tris)*3)
	for _, tri := range tris {
		for _, c := range tri {
			rec, err := sampler.Sample(c)
			if err != nil {
				return nil, err
			}
			indices = append(indices, table.Insert(rec))
		}
	}

	return &Result{
		Table:     table,
		Indices:   indices,
		Texture:   TexturePath(src.Materials()),
		Triangles: len(tris),
		prefix:    opts.TexturePrefix,
	}, nil
}
