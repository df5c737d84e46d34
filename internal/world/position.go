package world

import "math/bits"

// ChunkPosition identifies a chunk by the world coordinates of its minimum
// corner and its voxel size. Coordinates are always integer multiples of the
// voxel size; voxelSize is a power of two (1 for full detail, doubling per
// LOD step).
type ChunkPosition struct {
	WX, WY, WZ int32
	VoxelSize  int32
}

// Hash spreads the position bits with shift-and-multiply mixing so that
// neighboring chunks land in different buckets.
func (p ChunkPosition) Hash() uint32 {
	h := uint32(p.VoxelSize) * 0x27d4eb2f
	h = (h ^ uint32(p.WX)) * 0x9e3779b1
	h ^= h >> 15
	h = (h ^ uint32(p.WY)) * 0x85ebca6b
	h ^= h >> 13
	h = (h ^ uint32(p.WZ)) * 0xc2b2ae35
	h ^= h >> 16
	return h
}

// SizeShift returns log2 of the voxel size.
func (p ChunkPosition) SizeShift() uint {
	return uint(bits.TrailingZeros32(uint32(p.VoxelSize)))
}

// WorldSide returns the chunk's edge length in world units.
func (p ChunkPosition) WorldSide() int32 {
	return ChunkSide * p.VoxelSize
}

// Contains reports whether the world coordinate lies inside the chunk AABB.
func (p ChunkPosition) Contains(wx, wy, wz int32) bool {
	side := p.WorldSide()
	return wx >= p.WX && wx < p.WX+side &&
		wy >= p.WY && wy < p.WY+side &&
		wz >= p.WZ && wz < p.WZ+side
}

func axisDistSq(min, side, v float64) float64 {
	if v < min {
		d := min - v
		return d * d
	}
	if v > min+side {
		d := v - (min + side)
		return d * d
	}
	return 0
}

// MinDistSq returns the squared distance from the point to the chunk AABB,
// zero for points inside it.
func (p ChunkPosition) MinDistSq(x, y, z float64) float64 {
	side := float64(p.WorldSide())
	return axisDistSq(float64(p.WX), side, x) +
		axisDistSq(float64(p.WY), side, y) +
		axisDistSq(float64(p.WZ), side, z)
}

// MaxDistSq returns the squared distance from the point to the farthest
// corner of the chunk AABB.
func (p ChunkPosition) MaxDistSq(x, y, z float64) float64 {
	side := float64(p.WorldSide())
	dx := max(x-float64(p.WX), float64(p.WX)+side-x)
	dy := max(y-float64(p.WY), float64(p.WY)+side-y)
	dz := max(z-float64(p.WZ), float64(p.WZ)+side-z)
	return dx*dx + dy*dy + dz*dz
}

// CenterDistSq returns the squared distance from the point to the chunk
// center.
func (p ChunkPosition) CenterDistSq(x, y, z float64) float64 {
	half := float64(p.WorldSide()) / 2
	dx := x - (float64(p.WX) + half)
	dy := y - (float64(p.WY) + half)
	dz := z - (float64(p.WZ) + half)
	return dx*dx + dy*dy + dz*dz
}

// Priority ranks chunks for meshing and upload order: near chunks first.
// The distance is measured in the chunk's own voxel units and every LOD step
// adds a bonus, so at equal distance a coarser chunk ranks ahead of a finer
// one.
func (p ChunkPosition) Priority(x, y, z float64) float64 {
	shift := float64(p.SizeShift())
	vs := float64(p.VoxelSize)
	return -p.MinDistSq(x, y, z)/(vs*vs) + 2*shift*ChunkSide*ChunkSide
}
