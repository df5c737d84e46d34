package chunks

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"lodcraft/internal/graphics"
)

// bloomPass downscales the color target, blurs it with two separable
// Gaussian passes and composites the result additively over the frame.

const bloomDownscale = 4

const bloomExtractFragment = `#version 430
uniform sampler2D colorSampler;
in vec2 uv;
out vec4 fragColor;
void main() {
	vec3 c = texture(colorSampler, uv).rgb;
	float lum = dot(c, vec3(0.2126, 0.7152, 0.0722));
	fragColor = vec4(c * smoothstep(0.7, 1.0, lum), 1.0);
}
`

const bloomBlurHorizontalFragment = `#version 430
uniform sampler2D colorSampler;
uniform vec2 texelSize;
in vec2 uv;
out vec4 fragColor;
const float weights[5] = float[](0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216);
void main() {
	vec3 sum = texture(colorSampler, uv).rgb * weights[0];
	for (int i = 1; i < 5; i++) {
		vec2 off = vec2(texelSize.x * float(i), 0.0);
		sum += texture(colorSampler, uv + off).rgb * weights[i];
		sum += texture(colorSampler, uv - off).rgb * weights[i];
	}
	fragColor = vec4(sum, 1.0);
}
`

const bloomBlurVerticalFragment = `#version 430
uniform sampler2D colorSampler;
uniform vec2 texelSize;
in vec2 uv;
out vec4 fragColor;
const float weights[5] = float[](0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216);
void main() {
	vec3 sum = texture(colorSampler, uv).rgb * weights[0];
	for (int i = 1; i < 5; i++) {
		vec2 off = vec2(0.0, texelSize.y * float(i));
		sum += texture(colorSampler, uv + off).rgb * weights[i];
		sum += texture(colorSampler, uv - off).rgb * weights[i];
	}
	fragColor = vec4(sum, 1.0);
}
`

const bloomCompositeFragment = `#version 430
uniform sampler2D colorSampler;
in vec2 uv;
out vec4 fragColor;
void main() {
	fragColor = vec4(texture(colorSampler, uv).rgb, 1.0);
}
`

type bloomPass struct {
	extract   *graphics.Shader
	blurH     *graphics.Shader
	blurV     *graphics.Shader
	composite *graphics.Shader
	fbos      [2]uint32
	textures  [2]uint32
	vao       uint32
	w, h      int
}

func newBloomPass() *bloomPass {
	return &bloomPass{}
}

func (b *bloomPass) init(width, height int) error {
	var err error
	if b.extract, err = graphics.NewShaderFromSource(composeVertexShader, bloomExtractFragment); err != nil {
		return fmt.Errorf("bloom: extract shader: %w", err)
	}
	if b.blurH, err = graphics.NewShaderFromSource(composeVertexShader, bloomBlurHorizontalFragment); err != nil {
		return fmt.Errorf("bloom: horizontal blur shader: %w", err)
	}
	if b.blurV, err = graphics.NewShaderFromSource(composeVertexShader, bloomBlurVerticalFragment); err != nil {
		return fmt.Errorf("bloom: vertical blur shader: %w", err)
	}
	if b.composite, err = graphics.NewShaderFromSource(composeVertexShader, bloomCompositeFragment); err != nil {
		return fmt.Errorf("bloom: composite shader: %w", err)
	}
	gl.GenVertexArrays(1, &b.vao)
	b.resize(width, height)
	return nil
}

func (b *bloomPass) resize(width, height int) {
	b.w = width / bloomDownscale
	b.h = height / bloomDownscale
	if b.fbos[0] != 0 {
		gl.DeleteFramebuffers(2, &b.fbos[0])
		gl.DeleteTextures(2, &b.textures[0])
	}
	gl.GenFramebuffers(2, &b.fbos[0])
	gl.GenTextures(2, &b.textures[0])
	for i := 0; i < 2; i++ {
		gl.BindTexture(gl.TEXTURE_2D, b.textures[i])
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(b.w), int32(b.h), 0, gl.RGBA, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbos[i])
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, b.textures[i], 0)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (b *bloomPass) dispose() {
	if b == nil {
		return
	}
	for _, s := range []*graphics.Shader{b.extract, b.blurH, b.blurV, b.composite} {
		if s != nil {
			s.Delete()
		}
	}
	if b.fbos[0] != 0 {
		gl.DeleteFramebuffers(2, &b.fbos[0])
		gl.DeleteTextures(2, &b.textures[0])
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
}

func (b *bloomPass) fullscreen(shader *graphics.Shader, src uint32) {
	shader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, src)
	shader.SetInt("colorSampler", 0)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

// run blurs the bright parts of colorTex and adds them onto the default
// framebuffer.
func (b *bloomPass) run(colorTex uint32) {
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(b.vao)
	gl.Viewport(0, 0, int32(b.w), int32(b.h))

	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbos[0])
	b.fullscreen(b.extract, colorTex)

	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbos[1])
	b.blurH.Use()
	b.blurH.SetVector2("texelSize", 1/float32(b.w), 1/float32(b.h))
	b.fullscreen(b.blurH, b.textures[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbos[0])
	b.blurV.Use()
	b.blurV.SetVector2("texelSize", 1/float32(b.w), 1/float32(b.h))
	b.fullscreen(b.blurV, b.textures[1])

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(b.w*bloomDownscale), int32(b.h*bloomDownscale))
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	b.fullscreen(b.composite, b.textures[0])
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.BindVertexArray(0)
}
