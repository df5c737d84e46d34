package world

// UpdateFromLowerResolution absorbs a higher-detail child chunk into the
// octant of this chunk that it covers. For every 2×2×2 group of child cells
// one representative block is chosen: the sub-cell with the most exposed
// faces wins, with a parity-seeded permutation breaking near-ties so that
// high-frequency patterns survive across the LOD boundary.
//
// transparent classifies block types for the exposure score.
func (c *Chunk) UpdateFromLowerResolution(child *Chunk, transparent func(typ uint16) bool) {
	if child.Pos.VoxelSize*2 != c.Pos.VoxelSize {
		panic("world: child voxel size must be half of the parent's")
	}

	// Octant offset of the child inside this chunk, in parent cells.
	offX := (child.Pos.WX - c.Pos.WX) / c.Pos.VoxelSize
	offY := (child.Pos.WY - c.Pos.WY) / c.Pos.VoxelSize
	offZ := (child.Pos.WZ - c.Pos.WZ) / c.Pos.VoxelSize

	half := int32(ChunkSide / 2)
	for px := offX; px < offX+half; px++ {
		for py := offY; py < offY+half; py++ {
			for pz := offZ; pz < offZ+half; pz++ {
				cx := (px - offX) * 2
				cy := (py - offY) * 2
				cz := (pz - offZ) * 2

				var scores [8]int
				maxScore := -1
				for i := 0; i < 8; i++ {
					dx := int32(i >> 2 & 1)
					dz := int32(i >> 1 & 1)
					dy := int32(i & 1)
					b := child.GetBlockLocal(cx+dx, cy+dy, cz+dz)
					if b.IsAir() {
						scores[i] = -1
						continue
					}
					s := subCellScore(child, cx+dx, cy+dy, cz+dz, transparent)
					scores[i] = s
					if s > maxScore {
						maxScore = s
					}
				}

				target := Air
				if maxScore >= 0 {
					seed := int(px&1)*4 + int(pz&1)*2 + int(py&1)
					for i := 0; i < 8; i++ {
						idx := seed ^ i
						if scores[idx] >= maxScore-1 && scores[idx] >= 0 {
							dx := int32(idx >> 2 & 1)
							dz := int32(idx >> 1 & 1)
							dy := int32(idx & 1)
							target = child.GetBlockLocal(cx+dx, cy+dy, cz+dz)
							break
						}
					}
				}
				c.SetBlockLocal(px, py, pz, target)
			}
		}
	}
	c.SetChanged()
}

// subCellScore counts exposure of one child cell: 5 per transparent interior
// neighbor, 1 per neighbor beyond the chunk border, 0 per opaque interior
// neighbor.
func subCellScore(child *Chunk, x, y, z int32, transparent func(typ uint16) bool) int {
	score := 0
	for d := 0; d < DirCount; d++ {
		nx := x + DirDelta[d][0]
		ny := y + DirDelta[d][1]
		nz := z + DirDelta[d][2]
		if uint32(nx)|uint32(ny)|uint32(nz) >= ChunkSide {
			score++
			continue
		}
		nb := child.GetBlockLocal(nx, ny, nz)
		if nb.IsAir() || transparent(nb.Typ) {
			score += 5
		}
	}
	return score
}
