package chunks

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// frustumMargin inflates every plane test; chunks near an edge stay in a
// frame longer instead of popping.
const frustumMargin = 128

// Frustum holds five planes in point-and-normal form: far, right, left,
// top, bottom. The near plane is intentionally omitted; anything behind the
// camera fails the side planes soon enough and the margin covers the rest.
type Frustum struct {
	planes [5]plane
}

type plane struct {
	pos    mgl32.Vec3
	normal mgl32.Vec3
}

// NewFrustum builds the planes from the camera's view direction and
// projection parameters. The planes are camera-relative: the camera sits at
// the origin of render space.
func NewFrustum(dir mgl32.Vec3, fovY, aspect, zFar float32) *Frustum {
	up := mgl32.Vec3{0, 1, 0}
	right := dir.Cross(up).Normalize()
	camUp := right.Cross(dir).Normalize()

	halfV := zFar * float32(math.Tan(float64(fovY)/2))
	halfH := halfV * aspect
	farCenter := dir.Mul(zFar)
	origin := mgl32.Vec3{}

	f := &Frustum{}
	// Far plane looks back at the camera.
	f.planes[0] = plane{farCenter, dir.Mul(-1)}
	// Side planes pass through the camera; normals point inward.
	f.planes[1] = plane{origin, camUp.Cross(farCenter.Add(right.Mul(halfH))).Normalize()}
	f.planes[2] = plane{origin, farCenter.Sub(right.Mul(halfH)).Cross(camUp).Normalize()}
	f.planes[3] = plane{origin, right.Cross(farCenter.Sub(camUp.Mul(halfV))).Normalize()}
	f.planes[4] = plane{origin, farCenter.Add(camUp.Mul(halfV)).Cross(right).Normalize()}
	return f
}

// TestAAB checks the most-positive corner of a camera-relative AABB against
// every plane with the safety margin applied.
func (f *Frustum) TestAAB(pos, dims [3]float32) bool {
	for i := range f.planes {
		p := &f.planes[i]
		// Select the corner farthest along the plane normal.
		var corner mgl32.Vec3
		for a := 0; a < 3; a++ {
			corner[a] = pos[a]
			if p.normal[a] > 0 {
				corner[a] += dims[a]
			}
		}
		if corner.Sub(p.pos).Dot(p.normal) < -frustumMargin {
			return false
		}
	}
	return true
}
