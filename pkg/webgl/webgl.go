// Package webgl converts polygon meshes into the indexed vertex buffer JSON
// document read by the WebGL client.
//
// The pipeline is a single pass: Triangulate the faces, Sample every
// triangle corner into a rounded AttributeRecord, Insert each record into a
// VertexTable (which deduplicates and hands back an index), then Encode the
// table, the index buffer and the texture path as a Document.
package webgl

import "errors"

// Export errors. Every error aborts the whole export.
var (
	ErrUnsupportedTopology = errors.New("unsupported face topology")
	ErrMissingUVChannel    = errors.New("mesh has no active UV channel")
	ErrMissingMeshData     = errors.New("no mesh data to export")
	ErrInvalidMesh         = errors.New("invalid mesh data")
	ErrNonFiniteAttribute  = errors.New("attribute is NaN or infinite")
	ErrInvalidOptions      = errors.New("invalid export options")
	ErrMalformedDocument   = errors.New("malformed geometry document")
)

// FloatsPerVertex is the number of floats each table entry occupies in the
// flattened vertex array: position xyz, texcoord uv, normal xyz.
const FloatsPerVertex = 8

// DefaultPrecision is the number of decimal digits attributes are rounded to.
const DefaultPrecision = 2

// DefaultTexturePrefix is prepended to the texture path in the document.
const DefaultTexturePrefix = "img/"

// Options controls attribute quantization and document output.
type Options struct {
	Precision     int          // Decimal digits kept per component
	Rounding      RoundingMode // Tie-breaking rule for rounding
	TexturePrefix string       // Prepended to the texture file name
}

// DefaultOptions returns the options matching the WebGL client's expectations.
func DefaultOptions() Options {
	return Options{
		Precision:     DefaultPrecision,
		Rounding:      RoundHalfEven,
		TexturePrefix: DefaultTexturePrefix,
	}
}
