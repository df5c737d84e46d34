package meshing

import (
	"lodcraft/internal/world"
)

// UpdateBlock rewrites only the face records around one changed cell, on
// both sides of an affected chunk boundary, then writes the block into the
// grid. A full re-mesh is never needed for an edit.
//
// Runs on the render thread at the start of a frame; all required mesh
// mutexes are try-locked up front and ErrMeshBusy defers the whole edit.
func (me *Mesher) UpdateBlock(m *ChunkMesh, wx, wy, wz int32, newBlock world.Block) error {
	if !m.TryLock() {
		return ErrMeshBusy
	}
	defer m.Unlock()

	shift := m.pos.SizeShift()
	x := (wx - m.pos.WX) >> shift
	y := (wy - m.pos.WY) >> shift
	z := (wz - m.pos.WZ) >> shift
	old := m.chunk.GetBlockLocal(x, y, z)
	if old == newBlock {
		return nil
	}

	// Resolve and lock every neighbor mesh the edit can touch before
	// editing anything.
	type side struct {
		nb         world.Block // block standing next to the cell
		nm         *ChunkMesh  // nil when the neighbor cell is in this chunk
		nx, ny, nz int32       // neighbor cell in its owner's frame
		present    bool
	}
	var sides [world.DirCount]side
	locked := make([]*ChunkMesh, 0, world.DirCount)
	unlockAll := func() {
		for _, nm := range locked {
			nm.Unlock()
		}
	}
	for d := 0; d < world.DirCount; d++ {
		nx := x + world.DirDelta[d][0]
		ny := y + world.DirDelta[d][1]
		nz := z + world.DirDelta[d][2]
		if uint32(nx)|uint32(ny)|uint32(nz) < world.ChunkSide {
			sides[d] = side{nb: m.chunk.GetBlockLocal(nx, ny, nz), nx: nx, ny: ny, nz: nz, present: true}
			continue
		}
		nm := me.src.MeshAt(neighborPos(m.pos, d))
		if nm == nil || !nm.Generated() {
			// No same-LOD neighbor: the self face is decided against air,
			// and there is no other side to patch.
			sides[d] = side{nb: world.Air, nx: nx & world.ChunkMask, ny: ny & world.ChunkMask, nz: nz & world.ChunkMask}
			continue
		}
		if !nm.TryLock() {
			unlockAll()
			return ErrMeshBusy
		}
		locked = append(locked, nm)
		lx, ly, lz := nx&world.ChunkMask, ny&world.ChunkMask, nz&world.ChunkMask
		sides[d] = side{nb: nm.chunk.GetBlockLocal(lx, ly, lz), nm: nm, nx: lx, ny: ly, nz: lz, present: true}
	}

	edited := map[*ChunkMesh]bool{m: true}
	for d := 0; d < world.DirCount; d++ {
		s := &sides[d]

		// Self face towards d, addressed at the exposed neighbor cell.
		listDir := -1
		if s.nm != nil || !s.present {
			listDir = d
		}
		if canBeSeenThroughOtherBlock(old, s.nb, d) {
			removeFaceOf(m, old, s.nx, s.ny, s.nz, d, listDir)
		}
		if canBeSeenThroughOtherBlock(newBlock, s.nb, d) {
			emitFace(m, newBlock, s.nx, s.ny, s.nz, d, listDir)
		}

		if !s.present && s.nm == nil {
			continue
		}

		// Neighbor face back at the changed cell.
		opp := world.OppositeDir(d)
		oldVis := canBeSeenThroughOtherBlock(s.nb, old, opp)
		newVis := canBeSeenThroughOtherBlock(s.nb, newBlock, opp)
		if oldVis == newVis {
			continue
		}
		owner := m
		ownerList := -1
		if s.nm != nil {
			owner = s.nm
			ownerList = opp
			edited[s.nm] = true
		}
		if oldVis {
			removeFaceOf(owner, s.nb, x, y, z, opp, ownerList)
		} else {
			emitFace(owner, s.nb, x, y, z, opp, ownerList)
		}
	}

	m.chunk.UpdateBlock(wx, wy, wz, newBlock)

	// Finish the neighbors first, self last.
	var err error
	for nm := range edited {
		if nm == m {
			continue
		}
		if e := me.finishLocked(nm); e != nil && err == nil {
			err = e
		}
	}
	if e := me.finishLocked(m); e != nil && err == nil {
		err = e
	}
	unlockAll()
	return err
}
