package graphics

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/math/fixed"
)

const debugTextVertexShader = `#version 430
layout(location = 0) in vec2 position;
layout(location = 1) in vec2 texCoord;
out vec2 uv;
void main() {
	uv = texCoord;
	gl_Position = vec4(position, 0.0, 1.0);
}
`

const debugTextFragmentShader = `#version 430
uniform sampler2D textSampler;
in vec2 uv;
out vec4 fragColor;
void main() {
	fragColor = texture(textSampler, uv);
}
`

// DebugText rasterizes one line of HUD text with freetype and draws it as a
// textured quad in the top-left corner. Rebuilt only when the text changes.
type DebugText struct {
	font      *truetype.Font
	ctx       *freetype.Context
	img       *image.RGBA
	shader    *Shader
	texture   uint32
	vao, vbo  uint32
	lastText  string
	textWidth fixed.Int26_6
	width     int
	height    int
}

// NewDebugText loads a TTF file and prepares the GL objects.
func NewDebugText(fontPath string, screenW, screenH int) (*DebugText, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("graphics: read font: %w", err)
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("graphics: parse font: %w", err)
	}

	d := &DebugText{font: f, width: screenW, height: screenH}
	d.img = image.NewRGBA(image.Rect(0, 0, 1024, 32))
	d.ctx = freetype.NewContext()
	d.ctx.SetFont(f)
	d.ctx.SetFontSize(16)
	d.ctx.SetDPI(72)
	d.ctx.SetDst(d.img)
	d.ctx.SetClip(d.img.Bounds())
	d.ctx.SetSrc(image.NewUniform(color.White))

	d.shader, err = NewShaderFromSource(debugTextVertexShader, debugTextFragmentShader)
	if err != nil {
		return nil, err
	}

	gl.GenTextures(1, &d.texture)
	gl.BindTexture(gl.TEXTURE_2D, d.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.GenVertexArrays(1, &d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 16, nil)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 16, gl.PtrOffset(8))
	gl.BindVertexArray(0)
	return d, nil
}

// Draw renders the line, re-rasterizing when it changed since last frame.
func (d *DebugText) Draw(text string) {
	if text != d.lastText {
		for i := range d.img.Pix {
			d.img.Pix[i] = 0
		}
		pt := freetype.Pt(4, 20)
		if end, err := d.ctx.DrawString(text, pt); err == nil {
			d.textWidth = end.X
			gl.BindTexture(gl.TEXTURE_2D, d.texture)
			gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
				int32(d.img.Rect.Dx()), int32(d.img.Rect.Dy()),
				0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(d.img.Pix))
		}
		d.lastText = text
	}

	drawn := d.textWidth.Ceil() + 8
	if drawn <= 0 || drawn > d.img.Rect.Dx() {
		drawn = d.img.Rect.Dx()
	}
	w := 2 * float32(drawn) / float32(d.width)
	h := 2 * float32(d.img.Rect.Dy()) / float32(d.height)
	u1 := float32(drawn) / float32(d.img.Rect.Dx())
	x0, y0 := float32(-1), float32(1)-h
	quad := []float32{
		x0, y0, 0, 1,
		x0 + w, y0, u1, 1,
		x0 + w, y0 + h, u1, 0,
		x0 + w, y0 + h, u1, 0,
		x0, y0 + h, 0, 0,
		x0, y0, 0, 1,
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	d.shader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.texture)
	d.shader.SetInt("textSampler", 0)
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(quad)*4, gl.Ptr(quad))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Dispose releases the GL objects.
func (d *DebugText) Dispose() {
	if d == nil {
		return
	}
	d.shader.Delete()
	gl.DeleteTextures(1, &d.texture)
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteVertexArrays(1, &d.vao)
}
