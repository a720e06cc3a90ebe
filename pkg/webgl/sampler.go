package webgl

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// AttributeRecord is the rounded attribute set of one corner. Two records
// describe the same vertex iff they compare equal with ==.
type AttributeRecord struct {
	Position mgl64.Vec3
	TexCoord mgl64.Vec2
	Normal   mgl64.Vec3
}

// AppendFloats appends the record in buffer order: position, texcoord, normal.
func (r AttributeRecord) AppendFloats(dst []float64) []float64 {
	dst = append(dst, r.Position[:]...)
	dst = append(dst, r.TexCoord[:]...)
	return append(dst, r.Normal[:]...)
}

// Sampler reads corner attributes from a mesh and quantizes them.
type Sampler struct {
	src       mesh.Source
	precision int
	rounding  RoundingMode
}

// NewSampler creates a sampler over src. It fails with ErrMissingUVChannel
// when the mesh has no per-corner UVs.
func NewSampler(src mesh.Source, opts Options) (*Sampler, error) {
	if opts.Precision < 0 || opts.Precision > MaxPrecision {
		return nil, fmt.Errorf("%w: precision %d outside [0, %d]", ErrInvalidOptions, opts.Precision, MaxPrecision)
	}
	if !src.HasUVs() {
		return nil, ErrMissingUVChannel
	}
	return &Sampler{
		src:       src,
		precision: opts.Precision,
		rounding:  opts.Rounding,
	}, nil
}

// Sample returns the rounded attributes of corner c. JSON has no encoding
// for NaN or infinity, so such components fail with ErrNonFiniteAttribute.
func (s *Sampler) Sample(c Corner) (AttributeRecord, error) {
	pos := s.src.Position(c.Vertex)
	uv := s.src.UV(c.Face, c.Slot)
	n := s.src.Normal(c.Vertex)

	rec := AttributeRecord{
		Position: mgl64.Vec3{s.round(pos[0]), s.round(pos[1]), s.round(pos[2])},
		TexCoord: mgl64.Vec2{s.round(uv[0]), s.round(uv[1])},
		Normal:   mgl64.Vec3{s.round(n[0]), s.round(n[1]), s.round(n[2])},
	}
	for _, v := range rec.AppendFloats(make([]float64, 0, FloatsPerVertex)) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return AttributeRecord{}, fmt.Errorf("%w: face %d corner %d (vertex %d)", ErrNonFiniteAttribute, c.Face, c.Slot, c.Vertex)
		}
	}
	return rec, nil
}

func (s *Sampler) round(v float64) float64 {
	return Round(v, s.precision, s.rounding)
}
