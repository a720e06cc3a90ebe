// Wavefront OBJ and MTL reader.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// OBJ format errors.
var (
	ErrOBJSyntax = errors.New("OBJ syntax error")
	ErrOBJIndex  = errors.New("OBJ index out of range")
)

// OpenFunc opens a file referenced by another file, such as an MTL library.
type OpenFunc func(name string) (io.ReadCloser, error)

// LoadOBJ reads an OBJ file and the MTL libraries next to it.
func LoadOBJ(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	open := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, filepath.FromSlash(name)))
	}

	m, err := ParseOBJ(f, open)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// objCorner is one v/vt/vn triple of a face, resolved to 0-based indices.
// Missing references are -1.
type objCorner struct {
	v, vt, vn int
}

type objParser struct {
	positions []mgl64.Vec3
	texcoords []mgl64.Vec2
	normals   []mgl64.Vec3
	faces     [][]objCorner
	name      string
	libraries []string
	used      []string
}

// ParseOBJ parses OBJ data. Each face corner keeps its own texture
// coordinate. Vertex normals are the average of the vn entries referenced by
// a vertex's corners, or are smoothed from the geometry when a vertex has
// none. mtllib statements are opened through open; a nil open skips
// materials.
func ParseOBJ(r io.Reader, open OpenFunc) (*mesh.Mesh, error) {
	p := &objParser{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	m := p.build()

	if open != nil {
		mats, err := p.loadMaterials(open)
		if err != nil {
			return nil, err
		}
		m.MaterialList = mats
	}
	return m, nil
}

func (p *objParser) parseLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, mgl64.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, mgl64.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, mgl64.Vec3{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(fields[1:])
	case "o":
		if p.name == "" && len(fields) > 1 {
			p.name = strings.Join(fields[1:], " ")
		}
	case "mtllib":
		p.libraries = append(p.libraries, fields[1:]...)
	case "usemtl":
		if len(fields) > 1 && !slices.Contains(p.used, fields[1]) {
			p.used = append(p.used, fields[1])
		}
	}
	return nil
}

func (p *objParser) parseFace(refs []string) error {
	if len(refs) == 0 {
		return fmt.Errorf("%w: face without vertices", ErrOBJSyntax)
	}

	face := make([]objCorner, len(refs))
	for i, ref := range refs {
		parts := strings.Split(ref, "/")
		if len(parts) > 3 {
			return fmt.Errorf("%w: bad face vertex %q", ErrOBJSyntax, ref)
		}

		c := objCorner{v: -1, vt: -1, vn: -1}
		var err error
		if c.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
			return err
		}
		if c.v < 0 {
			return fmt.Errorf("%w: face vertex %q has no position", ErrOBJSyntax, ref)
		}
		if len(parts) > 1 {
			if c.vt, err = resolveIndex(parts[1], len(p.texcoords)); err != nil {
				return err
			}
		}
		if len(parts) > 2 {
			if c.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
				return err
			}
		}
		face[i] = c
	}

	p.faces = append(p.faces, face)
	return nil
}

// resolveIndex converts a 1-based or negative relative OBJ index into a
// 0-based index. An empty reference yields -1.
func resolveIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrOBJSyntax, s)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("%w: %d (have %d)", ErrOBJIndex, i, n)
	}
}

func (p *objParser) build() *mesh.Mesh {
	m := &mesh.Mesh{Name: p.name}
	m.SetPositions(p.positions)

	hasUVs := false
	for _, face := range p.faces {
		poly := make(mesh.Face, len(face))
		for i, c := range face {
			poly[i] = c.v
			if c.vt >= 0 {
				hasUVs = true
			}
		}
		m.Polygons = append(m.Polygons, poly)
	}

	// Corners without a vt get (0, 0) when the file has a UV channel at all.
	if hasUVs {
		m.CornerUVs = make([][]mgl64.Vec2, len(p.faces))
		for fi, face := range p.faces {
			uvs := make([]mgl64.Vec2, len(face))
			for i, c := range face {
				if c.vt >= 0 {
					uvs[i] = p.texcoords[c.vt]
				}
			}
			m.CornerUVs[fi] = uvs
		}
	}

	m.RecomputeNormals()

	sums := make([]mgl64.Vec3, len(p.positions))
	for _, face := range p.faces {
		for _, c := range face {
			if c.vn >= 0 {
				sums[c.v] = sums[c.v].Add(p.normals[c.vn])
			}
		}
	}
	for i, n := range sums {
		if n.Len() > 1e-12 {
			m.Vertices[i].Normal = n.Normalize()
		}
	}

	return m
}

// loadMaterials returns the materials named by usemtl in first-use order,
// or every library material when the file never selects one.
func (p *objParser) loadMaterials(open OpenFunc) ([]mesh.Material, error) {
	var all []mesh.Material
	for _, lib := range p.libraries {
		rc, err := open(lib)
		if err != nil {
			// Exporters often reference libraries they never wrote.
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("opening material library %s: %w", lib, err)
		}
		mats, err := ParseMTL(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lib, err)
		}
		all = append(all, mats...)
	}

	if len(p.used) == 0 {
		return all, nil
	}

	var out []mesh.Material
	for _, name := range p.used {
		for _, m := range all {
			if m.Name == name {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

// ParseMTL parses a material library. map_Kd becomes an image texture slot;
// other maps are recorded as non-image slots.
func ParseMTL(r io.Reader) ([]mesh.Material, error) {
	var mats []mesh.Material

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		key := fields[0]
		switch {
		case key == "newmtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: %w: newmtl without name", line, ErrOBJSyntax)
			}
			mats = append(mats, mesh.Material{Name: fields[1]})
		case strings.HasPrefix(key, "map_") || key == "bump" || key == "disp":
			if len(mats) == 0 {
				return nil, fmt.Errorf("line %d: %w: %s before newmtl", line, ErrOBJSyntax, key)
			}
			if len(fields) < 2 {
				continue
			}
			slot := mesh.TextureSlot{Type: mesh.TextureOther, Path: fields[len(fields)-1]}
			if key == "map_Kd" {
				slot.Type = mesh.TextureImage
			}
			cur := &mats[len(mats)-1]
			cur.Textures = append(cur.Textures, slot)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	return mats, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: expected %d numbers, got %d", ErrOBJSyntax, n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrOBJSyntax, fields[i])
		}
		out[i] = v
	}
	return out, nil
}
