package main

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"lodcraft/internal/config"
	"lodcraft/internal/graphics"
	"lodcraft/internal/graphics/renderables/chunks"
	"lodcraft/internal/lod"
	"lodcraft/internal/profiling"
)

// meshUploadBudget bounds how long each frame spends finalizing and
// stitching meshes, protecting frame pacing.
const meshUploadBudget = 4 * time.Millisecond

type gameLoop struct {
	window   *glfw.Window
	manager  *lod.Manager
	renderer *chunks.Renderer
	camera   *graphics.Camera
	hud      *graphics.DebugText

	lastMouseX float64
	lastMouseY float64

	frames           int
	fps              int
	lastFPSCheckTime time.Time
	lastTime         time.Time
}

func newGameLoop(window *glfw.Window, manager *lod.Manager, renderer *chunks.Renderer) *gameLoop {
	w, h := window.GetFramebufferSize()
	cam := graphics.NewCamera(w, h, float32(config.GetFOV()))
	cam.Y = 48

	hud, err := graphics.NewDebugText("assets/fonts/mono.ttf", w, h)
	if err != nil {
		hud = nil // HUD is optional; the loop runs without it
	}

	return &gameLoop{
		window:           window,
		manager:          manager,
		renderer:         renderer,
		camera:           cam,
		hud:              hud,
		lastFPSCheckTime: time.Now(),
		lastTime:         time.Now(),
	}
}

func (g *gameLoop) run() {
	g.window.SetCursorPosCallback(g.onMouseMove)

	for !g.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(g.lastTime).Seconds()
		g.lastTime = now

		g.handleMovement(dt)

		g.manager.ProcessResults()
		g.manager.UpdateMeshes(now.Add(meshUploadBudget))

		g.renderer.RenderFrame(chunks.RenderContext{
			Camera:       g.camera,
			AmbientLight: mgl32.Vec3{1, 1, 1},
			FogColor:     mgl32.Vec3{0.55, 0.71, 0.95},
			FogDensity:   0.0004,
		})

		if g.hud != nil {
			g.hud.Draw(fmt.Sprintf("fps %d | pos %.0f %.0f %.0f | %s",
				g.fps, g.camera.X, g.camera.Y, g.camera.Z, profiling.TopN(3)))
		}

		g.window.SwapBuffers()
		glfw.PollEvents()

		g.frames++
		if time.Since(g.lastFPSCheckTime) >= time.Second {
			g.fps = g.frames
			g.frames = 0
			g.lastFPSCheckTime = time.Now()
		}
	}
}

func (g *gameLoop) handleMovement(dt float64) {
	speed := 32.0 * dt
	if g.window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		speed *= 8
	}
	dir := g.camera.Direction()
	forward := [3]float64{float64(dir.X()), 0, float64(dir.Z())}
	norm := math.Hypot(forward[0], forward[2])
	if norm > 0 {
		forward[0] /= norm
		forward[2] /= norm
	}
	right := [3]float64{-forward[2], 0, forward[0]}

	if g.window.GetKey(glfw.KeyW) == glfw.Press {
		g.camera.X += forward[0] * speed
		g.camera.Z += forward[2] * speed
	}
	if g.window.GetKey(glfw.KeyS) == glfw.Press {
		g.camera.X -= forward[0] * speed
		g.camera.Z -= forward[2] * speed
	}
	if g.window.GetKey(glfw.KeyD) == glfw.Press {
		g.camera.X += right[0] * speed
		g.camera.Z += right[2] * speed
	}
	if g.window.GetKey(glfw.KeyA) == glfw.Press {
		g.camera.X -= right[0] * speed
		g.camera.Z -= right[2] * speed
	}
	if g.window.GetKey(glfw.KeySpace) == glfw.Press {
		g.camera.Y += speed
	}
	if g.window.GetKey(glfw.KeyLeftShift) == glfw.Press {
		g.camera.Y -= speed
	}
	if g.window.GetKey(glfw.KeyEscape) == glfw.Press {
		g.window.SetShouldClose(true)
	}
}

func (g *gameLoop) onMouseMove(_ *glfw.Window, x, y float64) {
	if g.lastMouseX != 0 || g.lastMouseY != 0 {
		const sensitivity = 0.002
		g.camera.Yaw += float32((x - g.lastMouseX) * sensitivity)
		g.camera.Pitch -= float32((y - g.lastMouseY) * sensitivity)
		limit := float32(math.Pi/2 - 0.01)
		if g.camera.Pitch > limit {
			g.camera.Pitch = limit
		}
		if g.camera.Pitch < -limit {
			g.camera.Pitch = -limit
		}
	}
	g.lastMouseX, g.lastMouseY = x, y
}
