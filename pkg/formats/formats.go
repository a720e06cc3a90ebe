// Package formats loads meshes from model files for export.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/webgl-export/pkg/grf"
	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// ErrUnknownFormat is returned for file extensions no loader handles.
var ErrUnknownFormat = errors.New("unknown model format")

// Extensions lists the file extensions Load understands.
var Extensions = []string{".obj", ".gltf", ".glb", ".rsm"}

// Load reads a model file, choosing the loader by extension.
func Load(path string) (*mesh.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".rsm":
		return LoadRSM(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// LoadRSM reads an RSM model from disk.
func LoadRSM(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	return rsmMesh(data)
}

// LoadArchiveEntry reads a model stored inside a GRF archive. Only RSM
// models are supported, since the other formats reference companion files.
func LoadArchiveEntry(a *grf.Archive, name string) (*mesh.Mesh, error) {
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".rsm" {
		return nil, fmt.Errorf("%w in archive: %q", ErrUnknownFormat, ext)
	}
	data, err := a.Read(name)
	if err != nil {
		return nil, err
	}
	m, err := rsmMesh(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

func rsmMesh(data []byte) (*mesh.Mesh, error) {
	rsm, err := ParseRSM(data)
	if err != nil {
		return nil, err
	}
	return rsm.Mesh()
}
