// RSM (Resource Model) reader for Ragnarok Online 3D models.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/webgl-export/pkg/encoding"
	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// RSM format errors.
var (
	ErrInvalidRSMMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedRSMVersion = errors.New("unsupported RSM version")
	ErrTruncatedRSMData      = errors.New("truncated RSM data")
	ErrInvalidNodeCount      = errors.New("invalid RSM node count")
	ErrInvalidRSMFace        = errors.New("RSM face references missing data")
)

const (
	rsmNameLen  = 40
	maxRSMNodes = 10000
	maxRSMItems = 1 << 20

	// Bytes between the texture list of a node and its vertex count:
	// 3x3 matrix, offset, position, rotation angle and axis, scale.
	rsmTransformSize = (9 + 3 + 3 + 1 + 3 + 3) * 4
)

// RSMVersion represents the RSM file version.
type RSMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v RSMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v RSMVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// RSMTexCoord is a texture coordinate with its vertex color.
type RSMTexCoord struct {
	Color [4]uint8 // RGBA, white before v1.2
	U, V  float32
}

// RSMFace is a triangle referencing node vertices and texcoords per corner.
type RSMFace struct {
	VertexIDs   [3]uint16
	TexCoordIDs [3]uint16
	TextureID   uint16 // Index into the node's TextureIDs
	TwoSide     int32
	SmoothGroup int32
}

// RSMNode is one mesh node of the model. Node transforms and animation
// keys are skipped; geometry is kept in node space.
type RSMNode struct {
	Name       string
	Parent     string
	TextureIDs []int32
	Vertices   [][3]float32
	TexCoords  []RSMTexCoord
	Faces      []RSMFace
}

// RSM is a parsed model.
type RSM struct {
	Version  RSMVersion
	Textures []string // Texture file names, UTF-8
	RootNode string
	Nodes    []RSMNode
}

// rsmReader reads little-endian fields and remembers the first failure.
type rsmReader struct {
	r   *bytes.Reader
	err error
}

func (rr *rsmReader) read(v any) {
	if rr.err != nil {
		return
	}
	if err := binary.Read(rr.r, binary.LittleEndian, v); err != nil {
		rr.err = ErrTruncatedRSMData
	}
}

func (rr *rsmReader) skip(n int) {
	if rr.err != nil {
		return
	}
	if rr.r.Len() < n {
		rr.err = ErrTruncatedRSMData
		return
	}
	rr.r.Seek(int64(n), io.SeekCurrent)
}

func (rr *rsmReader) name() string {
	buf := make([]byte, rsmNameLen)
	rr.read(buf)
	return encoding.FixedStringToUTF8(buf)
}

// count reads an item count and rejects negative or absurd values.
func (rr *rsmReader) count(what string) int {
	var n int32
	rr.read(&n)
	if rr.err == nil && (n < 0 || n > maxRSMItems) {
		rr.err = fmt.Errorf("%w: %s count %d", ErrTruncatedRSMData, what, n)
	}
	return int(n)
}

// ParseRSM parses RSM version 1.x data.
func ParseRSM(data []byte) (*RSM, error) {
	if len(data) < 6 {
		return nil, ErrTruncatedRSMData
	}
	if string(data[:4]) != "GRSM" {
		return nil, ErrInvalidRSMMagic
	}

	rsm := &RSM{Version: RSMVersion{Major: data[4], Minor: data[5]}}
	if rsm.Version.Major != 1 || rsm.Version.Minor < 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRSMVersion, rsm.Version)
	}

	rr := &rsmReader{r: bytes.NewReader(data[6:])}

	// Animation length and shading type.
	rr.skip(8)
	if rsm.Version.AtLeast(1, 4) {
		rr.skip(1) // alpha
	}
	rr.skip(16) // reserved

	rsm.Textures = make([]string, rr.count("texture"))
	for i := range rsm.Textures {
		rsm.Textures[i] = rr.name()
	}
	rsm.RootNode = rr.name()

	var nodeCount int32
	rr.read(&nodeCount)
	if rr.err != nil {
		return nil, rr.err
	}
	if nodeCount < 0 || nodeCount > maxRSMNodes {
		return nil, ErrInvalidNodeCount
	}

	rsm.Nodes = make([]RSMNode, nodeCount)
	for i := range rsm.Nodes {
		readRSMNode(rr, rsm.Version, &rsm.Nodes[i])
		if rr.err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, rr.err)
		}
	}

	return rsm, nil
}

func readRSMNode(rr *rsmReader, version RSMVersion, node *RSMNode) {
	node.Name = rr.name()
	node.Parent = rr.name()

	node.TextureIDs = make([]int32, rr.count("node texture"))
	rr.read(node.TextureIDs)

	rr.skip(rsmTransformSize)

	node.Vertices = make([][3]float32, rr.count("vertex"))
	rr.read(node.Vertices)

	node.TexCoords = make([]RSMTexCoord, rr.count("texcoord"))
	for i := range node.TexCoords {
		tc := &node.TexCoords[i]
		if version.AtLeast(1, 2) {
			rr.read(&tc.Color)
		} else {
			tc.Color = [4]uint8{255, 255, 255, 255}
		}
		rr.read(&tc.U)
		rr.read(&tc.V)
	}

	node.Faces = make([]RSMFace, rr.count("face"))
	for i := range node.Faces {
		f := &node.Faces[i]
		rr.read(&f.VertexIDs)
		rr.read(&f.TexCoordIDs)
		rr.read(&f.TextureID)
		rr.skip(2) // padding
		rr.read(&f.TwoSide)
		if version.AtLeast(1, 2) {
			rr.read(&f.SmoothGroup)
		}
	}

	// Animation keys: frame + vec3 position (before 1.5), frame + quaternion,
	// frame + vec3 scale (1.5+).
	if !version.AtLeast(1, 5) {
		rr.skip(rr.count("position key") * 16)
	}
	rr.skip(rr.count("rotation key") * 20)
	if version.AtLeast(1, 5) {
		rr.skip(rr.count("scale key") * 16)
	}
}

// FaceCount returns the number of faces across all nodes.
func (rsm *RSM) FaceCount() int {
	n := 0
	for _, node := range rsm.Nodes {
		n += len(node.Faces)
	}
	return n
}

// Mesh flattens every node into one mesh. Each face corner takes the UV of
// its own texcoord, so the mesh always has a UV channel. Every model texture
// becomes a single-slot image material. Normals are smoothed from the
// geometry because RSM stores none.
func (rsm *RSM) Mesh() (*mesh.Mesh, error) {
	m := &mesh.Mesh{Name: rsm.RootNode, CornerUVs: [][]mgl64.Vec2{}}

	var positions []mgl64.Vec3
	for ni := range rsm.Nodes {
		node := &rsm.Nodes[ni]
		base := len(positions)
		for _, v := range node.Vertices {
			positions = append(positions, mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})
		}

		for fi, f := range node.Faces {
			face := make(mesh.Face, 3)
			uvs := make([]mgl64.Vec2, 3)
			for j := 0; j < 3; j++ {
				vid, tid := int(f.VertexIDs[j]), int(f.TexCoordIDs[j])
				if vid >= len(node.Vertices) || tid >= len(node.TexCoords) {
					return nil, fmt.Errorf("%w: node %q face %d corner %d", ErrInvalidRSMFace, node.Name, fi, j)
				}
				face[j] = base + vid
				tc := node.TexCoords[tid]
				uvs[j] = mgl64.Vec2{float64(tc.U), float64(tc.V)}
			}
			m.Polygons = append(m.Polygons, face)
			m.CornerUVs = append(m.CornerUVs, uvs)
		}
	}

	m.SetPositions(positions)
	m.RecomputeNormals()

	for _, tex := range rsm.Textures {
		m.MaterialList = append(m.MaterialList, mesh.Material{
			Name:     tex,
			Textures: []mesh.TextureSlot{{Type: mesh.TextureImage, Path: tex}},
		})
	}
	return m, nil
}
