// glTF 2.0 reader.
package formats

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// glTF errors.
var (
	ErrUnsupportedPrimitive = errors.New("unsupported glTF primitive mode")
	ErrMissingPositions     = errors.New("glTF primitive has no POSITION attribute")
)

// LoadGLTF reads a .gltf or .glb file.
func LoadGLTF(path string) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening glTF: %w", err)
	}
	return GLTFMesh(doc)
}

// GLTFMesh merges every triangle primitive of every mesh in doc into one
// mesh. glTF stores UVs per vertex, so each corner takes the UV of its
// vertex. The UV channel exists only if every primitive has TEXCOORD_0.
func GLTFMesh(doc *gltf.Document) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}

	var positions, normals []mgl64.Vec3
	var texcoords []mgl64.Vec2
	hasNormals, hasUVs := true, true

	for mi, gm := range doc.Meshes {
		if m.Name == "" {
			m.Name = gm.Name
		}
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				return nil, fmt.Errorf("%w: mesh %d primitive %d mode %v", ErrUnsupportedPrimitive, mi, pi, prim.Mode)
			}

			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return nil, fmt.Errorf("%w: mesh %d primitive %d", ErrMissingPositions, mi, pi)
			}
			pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("reading positions of mesh %d primitive %d: %w", mi, pi, err)
			}

			base := len(positions)
			for _, p := range pos {
				positions = append(positions, vec3(p))
			}

			if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok && hasNormals {
				ns, err := modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
				if err != nil {
					return nil, fmt.Errorf("reading normals of mesh %d primitive %d: %w", mi, pi, err)
				}
				for _, n := range ns {
					normals = append(normals, vec3(n))
				}
			} else {
				hasNormals = false
			}

			if tIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok && hasUVs {
				uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[tIdx], nil)
				if err != nil {
					return nil, fmt.Errorf("reading UVs of mesh %d primitive %d: %w", mi, pi, err)
				}
				for _, uv := range uvs {
					texcoords = append(texcoords, mgl64.Vec2{float64(uv[0]), float64(uv[1])})
				}
			} else {
				hasUVs = false
			}

			var indices []uint32
			if prim.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("reading indices of mesh %d primitive %d: %w", mi, pi, err)
				}
			} else {
				indices = make([]uint32, len(pos))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}
			if len(indices)%3 != 0 {
				return nil, fmt.Errorf("%w: mesh %d primitive %d has %d indices", ErrUnsupportedPrimitive, mi, pi, len(indices))
			}

			for i := 0; i < len(indices); i += 3 {
				m.Polygons = append(m.Polygons, mesh.Face{
					base + int(indices[i]),
					base + int(indices[i+1]),
					base + int(indices[i+2]),
				})
			}
		}
	}

	m.SetPositions(positions)
	if hasNormals && len(normals) == len(positions) {
		for i := range m.Vertices {
			m.Vertices[i].Normal = normals[i]
		}
	} else {
		m.RecomputeNormals()
	}

	if hasUVs && len(texcoords) == len(positions) {
		m.CornerUVs = make([][]mgl64.Vec2, len(m.Polygons))
		for fi, f := range m.Polygons {
			m.CornerUVs[fi] = []mgl64.Vec2{texcoords[f[0]], texcoords[f[1]], texcoords[f[2]]}
		}
	}

	m.MaterialList = gltfMaterials(doc)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// gltfMaterials maps each material's base color texture to an image slot.
func gltfMaterials(doc *gltf.Document) []mesh.Material {
	mats := make([]mesh.Material, 0, len(doc.Materials))
	for _, gm := range doc.Materials {
		mat := mesh.Material{Name: gm.Name}
		if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			mat.Textures = append(mat.Textures, mesh.TextureSlot{
				Type: mesh.TextureImage,
				Path: gltfTextureURI(doc, pbr.BaseColorTexture.Index),
			})
		}
		mats = append(mats, mat)
	}
	return mats
}

// gltfTextureURI resolves a texture index to its image file URI. Embedded
// images have no path and yield "".
func gltfTextureURI[T ~int | ~uint32](doc *gltf.Document, index T) string {
	if int(index) >= len(doc.Textures) {
		return ""
	}
	src := doc.Textures[index].Source
	if src == nil || int(*src) >= len(doc.Images) {
		return ""
	}
	uri := doc.Images[*src].URI
	if uri == "" || strings.HasPrefix(uri, "data:") {
		return ""
	}
	if unescaped, err := url.PathUnescape(uri); err == nil {
		return unescaped
	}
	return uri
}

func vec3(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
