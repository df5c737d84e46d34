package graphics

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// LoadTextureArray loads equally sized PNG layers into a texture array, one
// layer per file in order. Nearest filtering, no mipmaps.
func LoadTextureArray(dir string, names []string, size int) (uint32, error) {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, texture)

	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, gl.RGBA, int32(size), int32(size),
		int32(len(names)), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	for layer, name := range names {
		rgba, err := loadRGBA(filepath.Join(dir, name))
		if err != nil {
			gl.DeleteTextures(1, &texture)
			return 0, err
		}
		if rgba.Rect.Dx() != size || rgba.Rect.Dy() != size {
			gl.DeleteTextures(1, &texture)
			return 0, fmt.Errorf("graphics: texture %s is %dx%d, want %dx%d",
				name, rgba.Rect.Dx(), rgba.Rect.Dy(), size, size)
		}
		gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0, 0, 0, int32(layer),
			int32(size), int32(size), 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}

	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return texture, nil
}

func loadRGBA(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphics: open texture: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("graphics: decode %s: %w", path, err)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)
	return rgba, nil
}
