package meshing

import (
	"fmt"
	"sync"
	"sync/atomic"

	"lodcraft/internal/graphics"
	"lodcraft/internal/world"
)

// LightGridSide is the edge length of the per-mesh lightmap pointer grid.
// Each cell covers 8 voxel cells; the grid spans the chunk plus an 8-cell
// apron on every side.
const (
	LightGridSide  = 6
	LightGridCells = LightGridSide * LightGridSide * LightGridSide
)

func lightGridIndex(cx, cy, cz int32) int32 {
	return (cx*LightGridSide+cy)*LightGridSide + cz
}

// ChunkMesh owns one chunk and its three primitive meshes, plus the GPU
// state needed to draw them: the lightmap pointer grid, the chunk descriptor
// slot and the visibility mask the LOD window composes.
type ChunkMesh struct {
	mu    sync.Mutex
	chunk *world.Chunk
	pos   world.ChunkPosition

	opaque      PrimitiveMesh
	voxel       PrimitiveMesh
	transparent PrimitiveMesh

	// lastNeighbor snapshots the mesh each seam was last stitched against,
	// together with its version at that time. Stale entries are tolerated
	// and rechecked every frame.
	lastNeighbor        [world.DirCount]*ChunkMesh
	lastNeighborVersion [world.DirCount]uint32

	// version counts full regenerations; neighbors compare it to decide
	// whether a seam must be rebuilt. Block edits patch both sides of a seam
	// directly and leave it unchanged.
	version atomic.Uint32

	// boundingRect per face: the min/max rectangle of boundary cells that
	// are view-through, letting seam passes skip fully walled-off borders.
	boundingRects [world.DirCount]BoundingRect

	lightMap    [LightGridCells]uint32
	lightAllocs [LightGridCells]graphics.Allocation
	descriptor  graphics.Allocation

	visibilityMask atomic.Uint32
	refCount       atomic.Int32

	// faceCount is the draw-time readiness gate: a mesh is never drawn
	// before its first finish stored a non-zero count here.
	faceCount atomic.Int32

	uploaded bool

	// Transparent sort state: the viewer cell of the last sort pass. A
	// rebuilt transparent list resets hasSorted.
	hasSorted                       bool
	lastSortX, lastSortY, lastSortZ int32
}

// BoundingRect is the inclusive min/max rectangle of view-through cells on
// one chunk face, in the two tangent axes of that face.
type BoundingRect struct {
	MinU, MinV int32
	MaxU, MaxV int32
	Empty      bool
}

func emptyRect() BoundingRect {
	return BoundingRect{MinU: world.ChunkSide, MinV: world.ChunkSide, MaxU: -1, MaxV: -1, Empty: true}
}

func (r *BoundingRect) add(u, v int32) {
	r.Empty = false
	if u < r.MinU {
		r.MinU = u
	}
	if v < r.MinV {
		r.MinV = v
	}
	if u > r.MaxU {
		r.MaxU = u
	}
	if v > r.MaxV {
		r.MaxV = v
	}
}

// NewChunkMesh wraps a chunk in an unmeshed ChunkMesh with one reference
// held by the creator.
func NewChunkMesh(c *world.Chunk) *ChunkMesh {
	m := &ChunkMesh{
		chunk: c,
		pos:   c.Pos,
	}
	m.opaque.class = ClassOpaque
	m.voxel.class = ClassVoxel
	m.transparent.class = ClassTransparent
	m.visibilityMask.Store(0xFF)
	m.refCount.Store(1)
	for d := range m.boundingRects {
		m.boundingRects[d] = emptyRect()
	}
	return m
}

// Pos returns the chunk position identity.
func (m *ChunkMesh) Pos() world.ChunkPosition { return m.pos }

// Chunk returns the owned voxel grid.
func (m *ChunkMesh) Chunk() *world.Chunk { return m.chunk }

// Opaque returns the opaque primitive mesh.
func (m *ChunkMesh) Opaque() *PrimitiveMesh { return &m.opaque }

// Voxel returns the voxel-model primitive mesh.
func (m *ChunkMesh) Voxel() *PrimitiveMesh { return &m.voxel }

// Transparent returns the transparent primitive mesh.
func (m *ChunkMesh) Transparent() *PrimitiveMesh { return &m.transparent }

func (m *ChunkMesh) primitive(class MeshClass) *PrimitiveMesh {
	switch class {
	case ClassVoxel:
		return &m.voxel
	case ClassTransparent:
		return &m.transparent
	default:
		return &m.opaque
	}
}

// Lock acquires the per-mesh mutex. Workers hold it across meshing; the
// render thread only ever uses TryLock.
func (m *ChunkMesh) Lock() { m.mu.Lock() }

// Unlock releases the per-mesh mutex.
func (m *ChunkMesh) Unlock() { m.mu.Unlock() }

// TryLock attempts the per-mesh mutex without blocking.
func (m *ChunkMesh) TryLock() bool { return m.mu.TryLock() }

// Retain adds a reference. Lifetime is otherwise protected by the LOD
// window and the clear list, so relaxed ordering is enough.
func (m *ChunkMesh) Retain() {
	m.refCount.Add(1)
}

// Release drops a reference and reports whether the count reached zero.
// Underflow is a programmer error.
func (m *ChunkMesh) Release() bool {
	n := m.refCount.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("meshing: refcount underflow on mesh %+v", m.pos))
	}
	return n == 0
}

// VisibilityMask returns the octant mask; a cleared bit means a
// higher-detail child covers that octant.
func (m *ChunkMesh) VisibilityMask() uint8 {
	return uint8(m.visibilityMask.Load())
}

// ClearOctant hides one octant because a generated child covers it.
func (m *ChunkMesh) ClearOctant(bit uint8) {
	for {
		old := m.visibilityMask.Load()
		if m.visibilityMask.CompareAndSwap(old, old&^uint32(1<<bit)) {
			return
		}
	}
}

// SetOctant re-shows one octant after its child was evicted.
func (m *ChunkMesh) SetOctant(bit uint8) {
	for {
		old := m.visibilityMask.Load()
		if m.visibilityMask.CompareAndSwap(old, old|uint32(1<<bit)) {
			return
		}
	}
}

// FaceCount returns the total drawable face count stored by the last
// finish; zero means the mesh has never been uploaded.
func (m *ChunkMesh) FaceCount() int32 {
	return m.faceCount.Load()
}

// DescriptorSlot returns the chunk-descriptor allocation.
func (m *ChunkMesh) DescriptorSlot() graphics.Allocation {
	return m.descriptor
}

// BoundingRect returns the view-through rectangle of one face.
func (m *ChunkMesh) BoundingRect(dir int) BoundingRect {
	return m.boundingRects[dir]
}

// Generated reports whether the underlying grid holds payload data.
func (m *ChunkMesh) Generated() bool {
	return m.chunk.Generated()
}
