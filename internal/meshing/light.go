package meshing

import (
	"lodcraft/internal/world"
)

// packLight compresses the six light channels of one voxel into a 32-bit
// word, five bits per channel: sun RGB at bits 25/20/15, block RGB at bits
// 10/5/0.
func packLight(l world.LightCell) uint32 {
	return uint32(l[0]>>3)<<25 |
		uint32(l[1]>>3)<<20 |
		uint32(l[2]>>3)<<15 |
		uint32(l[3]>>3)<<10 |
		uint32(l[4]>>3)<<5 |
		uint32(l[5]>>3)
}

// getLightAt resolves the light channels at a cell coordinate relative to
// this mesh. Coordinates outside [0,32) cross into the finest neighbor mesh
// containing that position, at any LOD; without one the cell reads as dark.
func (me *Mesher) getLightAt(m *ChunkMesh, x, y, z int32) world.LightCell {
	if uint32(x)|uint32(y)|uint32(z) < world.ChunkSide {
		return m.chunk.GetLight(x, y, z)
	}
	vs := m.pos.VoxelSize
	wx := m.pos.WX + x*vs
	wy := m.pos.WY + y*vs
	wz := m.pos.WZ + z*vs
	nb := me.src.FinestMeshAt(wx, wy, wz, vs)
	if nb == nil {
		return world.LightCell{}
	}
	shift := nb.pos.SizeShift()
	return nb.chunk.GetLight(
		(wx-nb.pos.WX)>>shift,
		(wy-nb.pos.WY)>>shift,
		(wz-nb.pos.WZ)>>shift,
	)
}

// unwrappedCell maps a face back to its exposed cell in this mesh's frame,
// undoing the coordinate wrap of seam faces stored in neighbor list dir.
// dir < 0 means the face is a core face.
func unwrappedCell(f FaceData, dir int) (int32, int32, int32) {
	x, y, z := f.X(), f.Y(), f.Z()
	if dir < 0 {
		return x, y, z
	}
	// In neighbor list d the exposed cell lies in the neighbor chunk for
	// faces pointing along d and for their back faces; faces pointing back
	// into this mesh are addressed at the boundary cell itself.
	inNeighbor := f.Normal() == dir || (f.IsBackFace() && f.Normal() == world.OppositeDir(dir))
	if !inNeighbor {
		return x, y, z
	}
	axis := dir >> 1
	c := [3]int32{x, y, z}
	if dir&1 == 1 {
		c[axis] = world.ChunkSide
	} else {
		c[axis] = -1
	}
	return c[0], c[1], c[2]
}

// flagLightFootprint marks the 3×3×3 region of coarse light cells around a
// face's exposed cell.
func flagLightFootprint(flagged *[LightGridCells]bool, x, y, z int32) {
	cx := (x + 8) >> 3
	cy := (y + 8) >> 3
	cz := (z + 8) >> 3
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				ix, iy, iz := cx+dx, cy+dy, cz+dz
				if uint32(ix) < LightGridSide && uint32(iy) < LightGridSide && uint32(iz) < LightGridSide {
					flagged[lightGridIndex(ix, iy, iz)] = true
				}
			}
		}
	}
}

// buildLightCube samples one coarse cell's 8³ voxels. Cell (0,0,0) starts at
// mesh-relative coordinate -8, so the grid covers the chunk and an 8-cell
// apron.
func (me *Mesher) buildLightCube(m *ChunkMesh, cx, cy, cz int32, out *[512]uint32) {
	bx := cx*8 - 8
	by := cy*8 - 8
	bz := cz*8 - 8
	i := 0
	for lx := int32(0); lx < 8; lx++ {
		for ly := int32(0); ly < 8; ly++ {
			for lz := int32(0); lz < 8; lz++ {
				out[i] = packLight(me.getLightAt(m, bx+lx, by+ly, bz+lz))
				i++
			}
		}
	}
}
