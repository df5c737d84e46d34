package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"lodcraft/internal/registry"
	"lodcraft/internal/world"
)

type mapWorld map[[3]int32]world.Block

func (m mapWorld) GetBlock(x, y, z int32) (world.Block, bool) {
	b, ok := m[[3]int32{x, y, z}]
	if !ok {
		return world.Air, true
	}
	return b, true
}

func TestRaycastHitsFirstBlock(t *testing.T) {
	registry.Init()
	w := mapWorld{
		{5, 0, 0}: {Typ: 1},
		{7, 0, 0}: {Typ: 1},
	}
	r := Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 16, w)
	if !r.Hit {
		t.Fatalf("ray must hit")
	}
	if r.HitPosition != [3]int32{5, 0, 0} {
		t.Fatalf("hit: got %v, want [5 0 0]", r.HitPosition)
	}
	if r.AdjacentPosition != [3]int32{4, 0, 0} {
		t.Fatalf("adjacent: got %v, want [4 0 0]", r.AdjacentPosition)
	}
	if r.Distance < 4.4 || r.Distance > 4.6 {
		t.Fatalf("distance: got %v, want ~4.5", r.Distance)
	}
}

func TestRaycastMissesWithinRange(t *testing.T) {
	registry.Init()
	w := mapWorld{{20, 0, 0}: {Typ: 1}}
	r := Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 6, w)
	if r.Hit {
		t.Fatalf("block beyond reach must not hit")
	}
}

func TestRaycastDiagonal(t *testing.T) {
	registry.Init()
	w := mapWorld{{3, 3, 3}: {Typ: 1}}
	r := Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}, 16, w)
	if !r.Hit || r.HitPosition != [3]int32{3, 3, 3} {
		t.Fatalf("diagonal walk failed: %+v", r)
	}
}

func TestRaycastRespectsModelBox(t *testing.T) {
	registry.Init()
	// A bottom slab occupies the lower half of its cell; a ray passing
	// through the upper half keeps going.
	w := mapWorld{
		{5, 0, 0}: {Typ: 7}, // slab
		{9, 0, 0}: {Typ: 1},
	}
	r := Raycast(mgl32.Vec3{0.5, 0.9, 0.5}, mgl32.Vec3{1, 0, 0}, 16, w)
	if !r.Hit {
		t.Fatalf("ray must hit the cube behind the slab")
	}
	if r.HitPosition != [3]int32{9, 0, 0} {
		t.Fatalf("hit: got %v, want [9 0 0]", r.HitPosition)
	}

	low := Raycast(mgl32.Vec3{0.5, 0.2, 0.5}, mgl32.Vec3{1, 0, 0}, 16, w)
	if !low.Hit || low.HitPosition != [3]int32{5, 0, 0} {
		t.Fatalf("low ray must hit the slab: %+v", low)
	}
}
