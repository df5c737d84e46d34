package chunks

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"lodcraft/internal/config"
	"lodcraft/internal/graphics"
	"lodcraft/internal/lod"
	"lodcraft/internal/meshing"
	"lodcraft/internal/profiling"
)

// maxFacesPerDraw bounds the shared quad index buffer; one draw call never
// references more faces than one chunk allocation can hold.
const maxFacesPerDraw = 1 << 17

// RenderContext carries the per-frame inputs of the chunk renderer.
type RenderContext struct {
	Camera       *graphics.Camera
	AmbientLight mgl32.Vec3
	FogColor     mgl32.Vec3
	FogDensity   float32
}

// Renderer draws the LOD window: opaque, voxel-model and transparent passes
// over the face buffer, plus the deferred composition, the block-selection
// overlay and optional bloom.
type Renderer struct {
	manager *lod.Manager

	opaqueShader      *graphics.Shader
	voxelShader       *graphics.Shader
	transparentShader *graphics.Shader
	composeShader     *graphics.Shader

	selection *selectionOverlay
	bloom     *bloomPass

	emptyVAO    uint32
	indexBuffer uint32

	fbo      uint32
	colorTex uint32
	dataTex  uint32
	depthRbo uint32
	width    int
	height   int

	texArray      uint32
	emissionArray uint32

	visible []*meshing.ChunkMesh
}

// NewRenderer wires the renderer to a LOD window.
func NewRenderer(manager *lod.Manager) *Renderer {
	return &Renderer{
		manager: manager,
		visible: make([]*meshing.ChunkMesh, 0, 1024),
	}
}

// Init compiles the shaders and creates the deferred targets and the shared
// quad index buffer. Runs on the render thread after graphics.InitBuffers.
func (r *Renderer) Init(width, height int) error {
	var err error
	if r.opaqueShader, err = graphics.NewShaderFromSource(chunkVertexShader, chunkFragmentShader); err != nil {
		return fmt.Errorf("chunks: opaque shader: %w", err)
	}
	if r.voxelShader, err = graphics.NewShaderFromSource(voxelVertexShader, voxelFragmentShader); err != nil {
		return fmt.Errorf("chunks: voxel shader: %w", err)
	}
	if r.transparentShader, err = graphics.NewShaderFromSource(chunkVertexShader, transparentFragmentShader); err != nil {
		return fmt.Errorf("chunks: transparent shader: %w", err)
	}
	if r.composeShader, err = graphics.NewShaderFromSource(composeVertexShader, composeFragmentShader); err != nil {
		return fmt.Errorf("chunks: compose shader: %w", err)
	}

	gl.GenVertexArrays(1, &r.emptyVAO)

	// Four generated vertices per face, six indices per quad.
	indices := make([]uint32, 0, maxFacesPerDraw*6)
	for f := uint32(0); f < maxFacesPerDraw; f++ {
		base := f * 4
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	gl.GenBuffers(1, &r.indexBuffer)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.indexBuffer)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	r.selection = newSelectionOverlay()
	if err := r.selection.init(); err != nil {
		return err
	}
	r.bloom = newBloomPass()
	if err := r.bloom.init(width, height); err != nil {
		return err
	}

	r.Resize(width, height)
	return nil
}

// SetTextures installs the block texture and emission arrays.
func (r *Renderer) SetTextures(texArray, emissionArray uint32) {
	r.texArray = texArray
	r.emissionArray = emissionArray
}

// Resize recreates the deferred render targets.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
		gl.DeleteTextures(1, &r.colorTex)
		gl.DeleteTextures(1, &r.dataTex)
		gl.DeleteRenderbuffers(1, &r.depthRbo)
	}

	gl.GenFramebuffers(1, &r.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)

	gl.GenTextures(1, &r.colorTex)
	gl.BindTexture(gl.TEXTURE_2D, r.colorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB10_A2, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.colorTex, 0)

	gl.GenTextures(1, &r.dataTex)
	gl.BindTexture(gl.TEXTURE_2D, r.dataTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32I, int32(width), int32(height), 0, gl.RGBA_INTEGER, gl.INT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT1, gl.TEXTURE_2D, r.dataTex, 0)

	gl.GenRenderbuffers(1, &r.depthRbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, r.depthRbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, r.depthRbo)

	attachments := []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1}
	gl.DrawBuffers(2, &attachments[0])
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		log.Printf("chunks: framebuffer incomplete: %#x", status)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	r.bloom.resize(width, height)
}

// Dispose releases GL objects.
func (r *Renderer) Dispose() {
	for _, s := range []*graphics.Shader{r.opaqueShader, r.voxelShader, r.transparentShader, r.composeShader} {
		if s != nil {
			s.Delete()
		}
	}
	if r.indexBuffer != 0 {
		gl.DeleteBuffers(1, &r.indexBuffer)
	}
	if r.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &r.emptyVAO)
	}
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
		gl.DeleteTextures(1, &r.colorTex)
		gl.DeleteTextures(1, &r.dataTex)
		gl.DeleteRenderbuffers(1, &r.depthRbo)
	}
	r.selection.dispose()
	r.bloom.dispose()
}

// RenderFrame draws one frame: window update and cull, near-to-far chunk
// ordering, the three geometry passes, composition, selection overlay and
// bloom.
func (r *Renderer) RenderFrame(ctx RenderContext) {
	defer profiling.Track("chunks.RenderFrame")()

	cam := ctx.Camera
	proj := cam.GetProjectionMatrix()
	view := cam.GetViewMatrix()
	frustum := NewFrustum(cam.Direction(), mgl32.DegToRad(cam.FOV), cam.AspectRatio, cam.FarPlane)

	graphics.BeginRender()
	defer graphics.EndRender()

	r.visible = r.visible[:0]
	r.manager.UpdateAndGetRenderChunks(cam.X, cam.Y, cam.Z,
		int32(config.GetRenderDistance()), config.GetLODFactor(), &frustumAt{frustum, cam}, &r.visible)

	sortByDistance(r.visible, cam.X, cam.Y, cam.Z)

	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(ctx.FogColor.X(), ctx.FogColor.Y(), ctx.FogColor.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)

	gl.BindVertexArray(r.emptyVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.indexBuffer)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, r.texArray)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, r.emissionArray)

	r.geometryPass(r.opaqueShader, ctx, proj, view, meshOpaque)
	r.geometryPass(r.voxelShader, ctx, proj, view, meshVoxel)

	// Composition resolves the integer target into the default framebuffer,
	// then the depth buffer is carried over for the transparent pass.
	r.composePass()
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(r.width), int32(r.height), 0, 0, int32(r.width), int32(r.height), gl.DEPTH_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.BindVertexArray(r.emptyVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.indexBuffer)
	r.transparentPass(ctx, proj, view)

	r.selection.render(r.manager, cam, proj, view)

	if config.GetBloom() {
		r.bloom.run(r.colorTex)
	}

	gl.BindVertexArray(0)
}

type meshSelector int

const (
	meshOpaque meshSelector = iota
	meshVoxel
)

// geometryPass draws one primitive class of every visible mesh into the
// deferred targets.
func (r *Renderer) geometryPass(shader *graphics.Shader, ctx RenderContext, proj, view mgl32.Mat4, sel meshSelector) {
	defer profiling.Track("chunks.geometryPass")()

	shader.Use()
	shader.SetMatrix4("projectionMatrix", &proj[0])
	shader.SetMatrix4("viewMatrix", &view[0])
	shader.SetVector3("ambientLight", ctx.AmbientLight.X(), ctx.AmbientLight.Y(), ctx.AmbientLight.Z())
	shader.SetVector3("fog.color", ctx.FogColor.X(), ctx.FogColor.Y(), ctx.FogColor.Z())
	shader.SetFloat("fog.density", ctx.FogDensity)
	shader.SetInt("texture_sampler", 0)
	shader.SetInt("emissionSampler", 1)
	shader.SetFloat("zNear", ctx.Camera.NearPlane)
	shader.SetFloat("zFar", ctx.Camera.FarPlane)

	for _, mesh := range r.visible {
		var p *meshing.PrimitiveMesh
		if sel == meshOpaque {
			p = mesh.Opaque()
		} else {
			p = mesh.Voxel()
		}
		r.drawPrimitive(shader, mesh, p, p.FaceCount(), ctx)
	}
}

func (r *Renderer) drawPrimitive(shader *graphics.Shader, mesh *meshing.ChunkMesh, p *meshing.PrimitiveMesh, faces int32, ctx RenderContext) {
	if faces <= 0 {
		return
	}
	pos := mesh.Pos()
	cam := ctx.Camera
	// Subtract in float64 before the cast; the precision of distant chunks
	// depends on it.
	shader.SetVector3("modelPosition",
		float32(float64(pos.WX)-cam.X),
		float32(float64(pos.WY)-cam.Y),
		float32(float64(pos.WZ)-cam.Z))
	shader.SetInt("visibilityMask", int32(mesh.VisibilityMask()))
	shader.SetInt("voxelSize", pos.VoxelSize)
	shader.SetInt("chunkDataIndex", mesh.DescriptorSlot().Start)

	gl.DrawElementsBaseVertex(gl.TRIANGLES, faces*6, gl.UNSIGNED_INT, nil, p.Alloc().Start*4)
}

// transparentPass re-sorts stale transparent lists and draws them with
// blending. Faces within a chunk are ordered back-to-front; chunks are drawn
// in the near-to-far order of the visible list.
func (r *Renderer) transparentPass(ctx RenderContext, proj, view mgl32.Mat4) {
	defer profiling.Track("chunks.transparentPass")()

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	defer func() {
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}()

	shader := r.transparentShader
	shader.Use()
	shader.SetMatrix4("projectionMatrix", &proj[0])
	shader.SetMatrix4("viewMatrix", &view[0])
	shader.SetVector3("ambientLight", ctx.AmbientLight.X(), ctx.AmbientLight.Y(), ctx.AmbientLight.Z())
	shader.SetVector3("fog.color", ctx.FogColor.X(), ctx.FogColor.Y(), ctx.FogColor.Z())
	shader.SetFloat("fog.density", ctx.FogDensity)
	shader.SetInt("texture_sampler", 0)

	cam := ctx.Camera
	mesher := r.manager.Mesher()
	for _, mesh := range r.visible {
		p := mesh.Transparent()
		if len(p.Complete()) == 0 {
			continue
		}
		pos := mesh.Pos()
		vs := float64(pos.VoxelSize)
		px := int32(math.Floor((cam.X - float64(pos.WX)) / vs))
		py := int32(math.Floor((cam.Y - float64(pos.WY)) / vs))
		pz := int32(math.Floor((cam.Z - float64(pos.WZ)) / vs))
		if _, err := mesher.SortTransparent(mesh, px, py, pz); err != nil && !errors.Is(err, meshing.ErrMeshBusy) {
			log.Printf("chunks: transparent sort: %v", err)
		}
		r.drawPrimitive(shader, mesh, p, p.FaceCount(), ctx)
	}
}

func (r *Renderer) composePass() {
	defer profiling.Track("chunks.composePass")()

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Disable(gl.DEPTH_TEST)
	r.composeShader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.colorTex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, r.dataTex)
	r.composeShader.SetInt("colorSampler", 0)
	r.composeShader.SetInt("dataSampler", 1)
	gl.BindVertexArray(r.emptyVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.Enable(gl.DEPTH_TEST)
}

// frustumAt adapts the camera-relative frustum to the absolute chunk
// positions the LOD manager hands over.
type frustumAt struct {
	f   *Frustum
	cam *graphics.Camera
}

func (fa *frustumAt) TestAAB(pos, dims [3]float32) bool {
	rel := [3]float32{
		float32(float64(pos[0]) - fa.cam.X),
		float32(float64(pos[1]) - fa.cam.Y),
		float32(float64(pos[2]) - fa.cam.Z),
	}
	return fa.f.TestAAB(rel, dims)
}

// sortByDistance orders meshes ascending by squared distance to the player
// chunk center. Insertion sort: frame-to-frame ordering is nearly stable,
// so the pass is close to linear.
func sortByDistance(meshes []*meshing.ChunkMesh, px, py, pz float64) {
	for i := 1; i < len(meshes); i++ {
		m := meshes[i]
		d := m.Pos().CenterDistSq(px, py, pz)
		j := i - 1
		for j >= 0 && meshes[j].Pos().CenterDistSq(px, py, pz) > d {
			meshes[j+1] = meshes[j]
			j--
		}
		meshes[j+1] = m
	}
}
