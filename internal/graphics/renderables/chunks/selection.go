package chunks

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"lodcraft/internal/graphics"
	"lodcraft/internal/lod"
	"lodcraft/internal/physics"
	"lodcraft/internal/registry"
	"lodcraft/internal/world"
)

// selectionOverlay ray-walks the grid from the camera and draws a 12-line
// wireframe around the first block the ray intersects.
type selectionOverlay struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32
}

// Unit cube edges as line-list vertices, scaled by the model bounds at draw
// time.
var wireframeEdges = []mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 0, 0}, {1, 0, 1}, {1, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 0},
	{0, 1, 0}, {1, 1, 0}, {1, 1, 0}, {1, 1, 1}, {1, 1, 1}, {0, 1, 1}, {0, 1, 1}, {0, 1, 0},
	{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}, {1, 0, 1}, {1, 1, 1}, {0, 0, 1}, {0, 1, 1},
}

func newSelectionOverlay() *selectionOverlay {
	return &selectionOverlay{}
}

func (s *selectionOverlay) init() error {
	var err error
	s.shader, err = graphics.NewShaderFromSource(selectionVertexShader, selectionFragmentShader)
	if err != nil {
		return err
	}
	gl.GenVertexArrays(1, &s.vao)
	gl.GenBuffers(1, &s.vbo)
	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(wireframeEdges)*12, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, nil)
	gl.BindVertexArray(0)
	return nil
}

func (s *selectionOverlay) dispose() {
	if s == nil {
		return
	}
	if s.shader != nil {
		s.shader.Delete()
	}
	if s.vbo != 0 {
		gl.DeleteBuffers(1, &s.vbo)
	}
	if s.vao != 0 {
		gl.DeleteVertexArrays(1, &s.vao)
	}
}

func (s *selectionOverlay) render(manager *lod.Manager, cam *graphics.Camera, proj, view mgl32.Mat4) {
	// The walk runs in cell coordinates relative to the camera's cell, so
	// the floats stay small however far from the origin the player is.
	ox := int32(floor(cam.X))
	oy := int32(floor(cam.Y))
	oz := int32(floor(cam.Z))
	origin := mgl32.Vec3{
		float32(cam.X - float64(ox)),
		float32(cam.Y - float64(oy)),
		float32(cam.Z - float64(oz)),
	}
	hit := physics.Raycast(
		origin,
		cam.Direction(),
		physics.MaxReachDistance,
		&relativeWorld{manager, ox, oy, oz},
	)
	if !hit.Hit {
		return
	}

	modelIdx, perm := registry.Model(hit.Block)
	model := registry.Models.Model(modelIdx)
	bmin, bmax := model.Bounds(perm)

	verts := make([]float32, 0, len(wireframeEdges)*3)
	for _, e := range wireframeEdges {
		verts = append(verts,
			mix(float32(bmin[0])/16, float32(bmax[0])/16, e.X()),
			mix(float32(bmin[1])/16, float32(bmax[1])/16, e.Y()),
			mix(float32(bmin[2])/16, float32(bmax[2])/16, e.Z()))
	}

	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))

	s.shader.Use()
	s.shader.SetMatrix4("projectionMatrix", &proj[0])
	s.shader.SetMatrix4("viewMatrix", &view[0])
	// Hit cells are relative to the camera's cell; subtract the in-cell
	// fraction to reach camera-relative render space.
	s.shader.SetVector3("modelPosition",
		float32(hit.HitPosition[0])-origin.X(),
		float32(hit.HitPosition[1])-origin.Y(),
		float32(hit.HitPosition[2])-origin.Z())

	gl.Disable(gl.DEPTH_TEST)
	gl.DrawArrays(gl.LINES, 0, int32(len(wireframeEdges)))
	gl.Enable(gl.DEPTH_TEST)
	gl.BindVertexArray(0)
}

func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// relativeWorld shifts block lookups by the camera's cell so the ray walk
// runs in small float coordinates.
type relativeWorld struct {
	manager    *lod.Manager
	ox, oy, oz int32
}

func (w *relativeWorld) GetBlock(x, y, z int32) (world.Block, bool) {
	return w.manager.GetBlock(x+w.ox, y+w.oy, z+w.oz)
}

func floor(v float64) float64 {
	f := float64(int64(v))
	if v < f {
		f--
	}
	return f
}
