package webgl

import (
	"strings"

	"github.com/Faultbox/webgl-export/pkg/mesh"
)

// pathSeparators are removed from texture paths; the client resolves the
// bare name against its image directory.
var pathSeparators = strings.NewReplacer("/", "", "\\", "")

// TexturePath returns the path of the last image texture with a non-empty
// file path across all materials, with path separators removed. It returns
// "" when no such texture exists.
func TexturePath(materials []mesh.Material) string {
	texture := ""
	for _, m := range materials {
		for _, slot := range m.Textures {
			if slot.Type == mesh.TextureImage && slot.Path != "" {
				texture = slot.Path
			}
		}
	}
	return pathSeparators.Replace(texture)
}
