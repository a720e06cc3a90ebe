package webgl

import (
	"fmt"

	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// Corner is one vertex reference within a face. Face and Slot point back at
// the source polygon so per-corner attributes can still be looked up after
// quads have been split.
type Corner struct {
	Face   int // Index of the source face
	Slot   int // Corner slot within the source face
	Vertex int // Referenced vertex
}

// Triangle is three corners in winding order.
type Triangle [3]Corner

// Triangulate splits every face into triangles. Triangles pass through
// unchanged; a quad (v0, v1, v2, v3) becomes (v0, v1, v2) and (v0, v2, v3),
// sharing the v0-v2 diagonal. Any other corner count fails with
// ErrUnsupportedTopology.
func Triangulate(faces []mesh.Face) ([]Triangle, error) {
	tris := make([]Triangle, 0, len(faces)*2)

	for fi, f := range faces {
		corner := func(slot int) Corner {
			return Corner{Face: fi, Slot: slot, Vertex: f[slot]}
		}

		switch len(f) {
		case 3:
			tris = append(tris, Triangle{corner(0), corner(1), corner(2)})
		case 4:
			tris = append(tris,
				Triangle{corner(0), corner(1), corner(2)},
				Triangle{corner(0), corner(2), corner(3)},
			)
		default:
			return nil, fmt.Errorf("%w: face %d has %d corners", ErrUnsupportedTopology, fi, len(f))
		}
	}

	return tris, nil
}
