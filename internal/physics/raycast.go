package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"lodcraft/internal/registry"
	"lodcraft/internal/world"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 6.0
)

// BlockGetter resolves world blocks; the LOD window implements it.
type BlockGetter interface {
	GetBlock(wx, wy, wz int32) (world.Block, bool)
}

// RaycastResult stores the result of a raycast operation.
type RaycastResult struct {
	HitPosition      [3]int32
	AdjacentPosition [3]int32
	Block            world.Block
	Distance         float32
	Hit              bool
}

// Raycast walks the voxel grid cell by cell (Amanatides & Woo traversal)
// from start along direction. Each non-air cell is tested against the
// block model's oriented bounding box; the walk stops at the first real
// intersection.
func Raycast(start, direction mgl32.Vec3, maxDist float32, w BlockGetter) RaycastResult {
	result := RaycastResult{Hit: false}
	dir := direction.Normalize()

	cx := int32(math.Floor(float64(start.X())))
	cy := int32(math.Floor(float64(start.Y())))
	cz := int32(math.Floor(float64(start.Z())))

	step := [3]int32{}
	tMax := [3]float32{}
	tDelta := [3]float32{}
	for a := 0; a < 3; a++ {
		d := dir[a]
		cell := [3]int32{cx, cy, cz}[a]
		switch {
		case d > 0:
			step[a] = 1
			tMax[a] = (float32(cell+1) - start[a]) / d
			tDelta[a] = 1 / d
		case d < 0:
			step[a] = -1
			tMax[a] = (float32(cell) - start[a]) / d
			tDelta[a] = -1 / d
		default:
			step[a] = 0
			tMax[a] = float32(math.Inf(1))
			tDelta[a] = float32(math.Inf(1))
		}
	}

	prev := [3]int32{cx, cy, cz}
	t := float32(0)
	for t <= maxDist {
		if b, ok := w.GetBlock(cx, cy, cz); ok && !b.IsAir() {
			if hitT, hit := intersectBlockBox(start, dir, b, cx, cy, cz); hit && hitT <= maxDist {
				result.Hit = true
				result.HitPosition = [3]int32{cx, cy, cz}
				result.AdjacentPosition = prev
				result.Block = b
				result.Distance = hitT
				return result
			}
		}
		prev = [3]int32{cx, cy, cz}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		tMax[axis] += tDelta[axis]
		switch axis {
		case 0:
			cx += step[0]
		case 1:
			cy += step[1]
		case 2:
			cz += step[2]
		}
	}
	return result
}

// intersectBlockBox slab-tests the ray against the block model's bounding
// box, rotated by the block's permutation and scaled from 16-unit cells to
// world units.
func intersectBlockBox(start, dir mgl32.Vec3, b world.Block, cx, cy, cz int32) (float32, bool) {
	modelIdx, perm := registry.Model(b)
	model := registry.Models.Model(modelIdx)
	bmin, bmax := model.Bounds(perm)

	lo := mgl32.Vec3{
		float32(cx) + float32(bmin[0])/16,
		float32(cy) + float32(bmin[1])/16,
		float32(cz) + float32(bmin[2])/16,
	}
	hi := mgl32.Vec3{
		float32(cx) + float32(bmax[0])/16,
		float32(cy) + float32(bmax[1])/16,
		float32(cz) + float32(bmax[2])/16,
	}

	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		if dir[a] == 0 {
			if start[a] < lo[a] || start[a] > hi[a] {
				return 0, false
			}
			continue
		}
		t0 := (lo[a] - start[a]) / dir[a]
		t1 := (hi[a] - start[a]) / dir[a]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
	}
	if tNear > tFar || tFar < 0 {
		return 0, false
	}
	if tNear < 0 {
		tNear = 0
	}
	return tNear, true
}
