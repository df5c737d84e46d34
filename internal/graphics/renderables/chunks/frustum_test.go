package chunks

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testFrustum() *Frustum {
	// Looking down +X, 90° vertical FOV, square aspect, far plane at 2000.
	return NewFrustum(mgl32.Vec3{1, 0, 0}, mgl32.DegToRad(90), 1, 2000)
}

func TestFrustumAcceptsBoxAhead(t *testing.T) {
	f := testFrustum()
	if !f.TestAAB([3]float32{100, -16, -16}, [3]float32{32, 32, 32}) {
		t.Fatalf("box straight ahead must pass")
	}
}

func TestFrustumRejectsBoxBeyondFarPlane(t *testing.T) {
	f := testFrustum()
	if f.TestAAB([3]float32{5000, 0, 0}, [3]float32{32, 32, 32}) {
		t.Fatalf("box past the far plane must fail")
	}
}

func TestFrustumRejectsBoxFarToTheSide(t *testing.T) {
	f := testFrustum()
	// At x=100 the half-width of a 90° frustum is ~100; a box at z=1000 is
	// far outside even with the margin.
	if f.TestAAB([3]float32{100, 0, 1000}, [3]float32{32, 32, 32}) {
		t.Fatalf("box far off to the side must fail")
	}
}

func TestFrustumMarginKeepsEdgeBoxes(t *testing.T) {
	f := testFrustum()
	// Slightly outside the exact side plane but within the 128-unit margin.
	if !f.TestAAB([3]float32{100, 0, 140}, [3]float32{32, 32, 32}) {
		t.Fatalf("margin must keep near-edge boxes visible")
	}
}

func TestFrustumNearPlaneOmitted(t *testing.T) {
	f := testFrustum()
	// A box surrounding the camera passes: there is no near plane.
	if !f.TestAAB([3]float32{-16, -16, -16}, [3]float32{32, 32, 32}) {
		t.Fatalf("box around the camera must pass without a near plane")
	}
}
