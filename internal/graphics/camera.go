package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the view and projection matrices. The position is kept in
// float64 world coordinates; the view matrix is built camera-relative so
// precision survives far from the origin.
type Camera struct {
	X, Y, Z     float64
	Yaw, Pitch  float32
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, fov float32) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         fov,
		NearPlane:   0.1,
		FarPlane:    10000.0,
	}
}

// Direction returns the unit view direction from yaw and pitch.
func (c *Camera) Direction() mgl32.Vec3 {
	cy := float32(math.Cos(float64(c.Yaw)))
	sy := float32(math.Sin(float64(c.Yaw)))
	cp := float32(math.Cos(float64(c.Pitch)))
	sp := float32(math.Sin(float64(c.Pitch)))
	return mgl32.Vec3{cy * cp, sp, sy * cp}
}

// GetProjectionMatrix returns the perspective projection.
func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// GetViewMatrix returns the camera-relative view matrix (the eye sits at
// the origin; chunks are drawn at positions already offset by the player).
func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	dir := c.Direction()
	return mgl32.LookAtV(mgl32.Vec3{}, dir, mgl32.Vec3{0, 1, 0})
}
