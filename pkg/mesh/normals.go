package mesh

import "github.com/go-gl/mathgl/mgl64"

// degenerateArea is the smallest cross-product length treated as a real face.
const degenerateArea = 1e-12

// SmoothNormals computes per-vertex normals by summing the area-weighted
// normals of every face that uses the vertex. Polygons are fanned from their
// first corner. Vertices touched only by degenerate faces, or by none, get a
// zero normal.
func SmoothNormals(positions []mgl64.Vec3, faces []Face) []mgl64.Vec3 {
	sums := make([]mgl64.Vec3, len(positions))

	for _, f := range faces {
		if len(f) < 3 {
			continue
		}
		var faceNormal mgl64.Vec3
		p0 := positions[f[0]]
		for i := 1; i+1 < len(f); i++ {
			e1 := positions[f[i]].Sub(p0)
			e2 := positions[f[i+1]].Sub(p0)
			faceNormal = faceNormal.Add(e1.Cross(e2))
		}
		if faceNormal.Len() < degenerateArea {
			continue
		}
		for _, v := range f {
			sums[v] = sums[v].Add(faceNormal)
		}
	}

	for i, n := range sums {
		if n.Len() < degenerateArea {
			sums[i] = mgl64.Vec3{}
			continue
		}
		sums[i] = n.Normalize()
	}
	return sums
}
