package lod

import (
	"sync"

	"lodcraft/internal/world"
)

// storageLevel is the per-LOD ring of nodes: a dense 3-D array indexed by
// cell position relative to a rolling origin. The mutex lets the render
// thread swap the array atomically while lookups run concurrently.
type storageLevel struct {
	mu sync.Mutex

	nodes            []*Node
	minX, minY, minZ int32 // origin in chunk cells at this LOD
	dimX, dimY, dimZ int32
}

func (l *storageLevel) index(cx, cy, cz int32) int32 {
	x := cx - l.minX
	y := cy - l.minY
	z := cz - l.minZ
	if x < 0 || x >= l.dimX || y < 0 || y >= l.dimY || z < 0 || z >= l.dimZ {
		return -1
	}
	return (x*l.dimY+y)*l.dimZ + z
}

// get returns the node at a cell position, nil when outside the window.
func (l *storageLevel) get(cx, cy, cz int32) *Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.index(cx, cy, cz)
	if idx < 0 || l.nodes == nil {
		return nil
	}
	return l.nodes[idx]
}

// swap installs a freshly built array and returns the previous one for the
// sweep.
func (l *storageLevel) swap(nodes []*Node, minX, minY, minZ, dimX, dimY, dimZ int32) (old []*Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old = l.nodes
	l.nodes = nodes
	l.minX, l.minY, l.minZ = minX, minY, minZ
	l.dimX, l.dimY, l.dimZ = dimX, dimY, dimZ
	return old
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// cellOf converts a world coordinate to the chunk cell at a voxel size.
func cellOf(w int32, voxelSize int32) int32 {
	return floorDiv(w, world.ChunkSide*voxelSize)
}
