package meshing

import (
	"errors"

	"lodcraft/internal/world"
)

var (
	// ErrLODMissing is the transient stitch failure: a neighbor the seam
	// depends on has been evicted since the pass was scheduled. Callers
	// re-queue and retry next frame.
	ErrLODMissing = errors.New("meshing: neighbor LOD not present")

	// ErrMeshBusy means a worker currently holds a required mesh mutex.
	// The render thread never blocks on those; retried next frame.
	ErrMeshBusy = errors.New("meshing: mesh locked by worker")
)

// neighborPos returns the same-LOD neighbor position across dir.
func neighborPos(pos world.ChunkPosition, dir int) world.ChunkPosition {
	side := pos.WorldSide()
	return world.ChunkPosition{
		WX:        pos.WX + world.DirDelta[dir][0]*side,
		WY:        pos.WY + world.DirDelta[dir][1]*side,
		WZ:        pos.WZ + world.DirDelta[dir][2]*side,
		VoxelSize: pos.VoxelSize,
	}
}

// coarserNeighborPos returns the position of the voxelSize*2 chunk that
// contains the neighbor region across dir.
func coarserNeighborPos(pos world.ChunkPosition, dir int) world.ChunkPosition {
	n := neighborPos(pos, dir)
	parentSide := n.WorldSide() * 2
	return world.ChunkPosition{
		WX:        floorAlign(n.WX, parentSide),
		WY:        floorAlign(n.WY, parentSide),
		WZ:        floorAlign(n.WZ, parentSide),
		VoxelSize: pos.VoxelSize * 2,
	}
}

func floorAlign(v, step int32) int32 {
	r := v % step
	if r < 0 {
		r += step
	}
	return v - r
}

// UploadDataAndFinishNeighbors stitches every seam of m that went stale and
// finishes all edited meshes. Runs on the render thread; mesh mutexes are
// only try-locked, a held one aborts with ErrMeshBusy for a retry.
func (me *Mesher) UploadDataAndFinishNeighbors(m *ChunkMesh) error {
	if !m.Generated() {
		// Nothing to stitch against an unpopulated grid.
		return nil
	}
	if !m.TryLock() {
		return ErrMeshBusy
	}
	defer m.Unlock()

	for d := 0; d < world.DirCount; d++ {
		if nb := me.src.MeshAt(neighborPos(m.pos, d)); nb != nil && nb.Generated() {
			if m.lastNeighbor[d] == nb && m.lastNeighborVersion[d] == nb.version.Load() {
				continue
			}
			if !nb.TryLock() {
				return ErrMeshBusy
			}
			stitchPair(m, nb, d)
			m.lastNeighbor[d] = nb
			m.lastNeighborVersion[d] = nb.version.Load()
			nb.lastNeighbor[world.OppositeDir(d)] = m
			nb.lastNeighborVersion[world.OppositeDir(d)] = m.version.Load()
			err := me.finishLocked(nb)
			nb.Unlock()
			if err != nil {
				return err
			}
			continue
		}

		if cm := me.src.MeshAt(coarserNeighborPos(m.pos, d)); cm != nil && cm.Generated() {
			if m.lastNeighbor[d] == cm && m.lastNeighborVersion[d] == cm.version.Load() {
				continue
			}
			if !cm.TryLock() {
				return ErrMeshBusy
			}
			stitchCoarser(m, cm, d)
			cm.Unlock()
			m.lastNeighbor[d] = cm
			m.lastNeighborVersion[d] = cm.version.Load()
			continue
		}

		// Neither present: the rule at the outer LOD border.
		clearSeam(m, d)
		m.lastNeighbor[d] = nil
	}

	return me.finishLocked(m)
}

func clearSeam(m *ChunkMesh, dir int) {
	m.opaque.clearNeighbor(dir)
	m.voxel.clearNeighbor(dir)
	m.transparent.clearNeighbor(dir)
}

// boundaryCoord builds the cell coordinate on the dir face of a chunk from
// the two tangent coordinates.
func boundaryCoord(dir int, u, v int32) (int32, int32, int32) {
	axis := dir >> 1
	var w int32
	if dir&1 == 1 {
		w = world.ChunkSide - 1
	}
	var c [3]int32
	c[axis] = w
	c[faceAxes[dir][0]] = u
	c[faceAxes[dir][1]] = v
	return c[0], c[1], c[2]
}

// stitchPair rebuilds both sides of a same-LOD seam. Both mesh mutexes are
// held. Faces visible from m's side go into m's dir list; faces visible
// from nb's side go into nb's opposite list.
func stitchPair(m, nb *ChunkMesh, dir int) {
	opp := world.OppositeDir(dir)
	clearSeam(m, dir)
	clearSeam(nb, opp)

	// A seam of full opaque cubes on both sides cannot produce faces.
	if m.boundingRects[dir].Empty && nb.boundingRects[opp].Empty {
		return
	}

	for u := int32(0); u < world.ChunkSide; u++ {
		for v := int32(0); v < world.ChunkSide; v++ {
			sx, sy, sz := boundaryCoord(dir, u, v)
			ox, oy, oz := boundaryCoord(opp, u, v)
			sb := m.chunk.GetBlockLocal(sx, sy, sz)
			ob := nb.chunk.GetBlockLocal(ox, oy, oz)
			if canBeSeenThroughOtherBlock(sb, ob, dir) {
				// Exposed cell lies in the neighbor chunk; coordinates wrap.
				emitFace(m, sb, ox, oy, oz, dir, dir)
			}
			if canBeSeenThroughOtherBlock(ob, sb, opp) {
				emitFace(nb, ob, sx, sy, sz, opp, opp)
			}
		}
	}
}

// stitchCoarser rebuilds m's seam against a neighbor that only exists at
// the next coarser LOD. Only m's lists are touched, so LOD transitions
// degrade gracefully: the coarse mesh never learns about its fine
// neighbors.
func stitchCoarser(m, cm *ChunkMesh, dir int) {
	clearSeam(m, dir)

	// Fine-cell offset of this mesh inside the coarse neighbor's frame.
	shift := m.pos.SizeShift()
	off := [3]int32{
		(m.pos.WX - cm.pos.WX) >> shift,
		(m.pos.WY - cm.pos.WY) >> shift,
		(m.pos.WZ - cm.pos.WZ) >> shift,
	}
	rel := world.DirDelta[dir]

	for u := int32(0); u < world.ChunkSide; u++ {
		for v := int32(0); v < world.ChunkSide; v++ {
			sx, sy, sz := boundaryCoord(dir, u, v)
			cx := (sx + rel[0] + off[0]) >> 1 & world.ChunkMask
			cy := (sy + rel[1] + off[1]) >> 1 & world.ChunkMask
			cz := (sz + rel[2] + off[2]) >> 1 & world.ChunkMask
			sb := m.chunk.GetBlockLocal(sx, sy, sz)
			ob := cm.chunk.GetBlockLocal(cx, cy, cz)
			if canBeSeenThroughOtherBlock(sb, ob, dir) {
				ex := (sx + rel[0]) & world.ChunkMask
				ey := (sy + rel[1]) & world.ChunkMask
				ez := (sz + rel[2]) & world.ChunkMask
				emitFace(m, sb, ex, ey, ez, dir, dir)
			}
			if canBeSeenThroughOtherBlock(ob, sb, world.OppositeDir(dir)) {
				emitFace(m, ob, sx, sy, sz, world.OppositeDir(dir), dir)
			}
		}
	}
}
