package blockmodel

// A permutation is a 6-bit rotation code: quarter-turn counts around X in
// bits 0-1, around Y in bits 2-3, around Z in bits 4-5, applied in that
// order to the model.

// Quarter-turn direction maps (model direction -> rotated direction).
var (
	rotXDir = [6]uint8{0, 1, 4, 5, 3, 2}
	rotYDir = [6]uint8{5, 4, 2, 3, 0, 1}
	rotZDir = [6]uint8{2, 3, 1, 0, 4, 5}
)

var (
	permDir    [64][6]uint8 // model dir -> world dir
	permDirInv [64][6]uint8 // world dir -> model dir
)

func init() {
	for p := 0; p < 64; p++ {
		var m [6]uint8
		for d := 0; d < 6; d++ {
			m[d] = uint8(d)
		}
		apply := func(rot [6]uint8, turns int) {
			for t := 0; t < turns; t++ {
				for d := 0; d < 6; d++ {
					m[d] = rot[m[d]]
				}
			}
		}
		apply(rotXDir, p&3)
		apply(rotYDir, p>>2&3)
		apply(rotZDir, p>>4&3)
		permDir[p] = m
		for d := 0; d < 6; d++ {
			permDirInv[p][m[d]] = uint8(d)
		}
	}
}

// PermuteDir maps a model-space face direction to world space under the
// given permutation.
func PermuteDir(perm uint8, dir int) int {
	return int(permDir[perm&63][dir])
}

// WorldToModelDir maps a world-space face direction back onto the model.
// The mesher uses this to ask whether a rotated model fills a world face.
func WorldToModelDir(perm uint8, dir int) int {
	return int(permDirInv[perm&63][dir])
}

func rotatePoint(axis int, p [3]int) [3]int {
	x, y, z := p[0], p[1], p[2]
	switch axis {
	case 0:
		return [3]int{x, 16 - z, y}
	case 1:
		return [3]int{z, y, 16 - x}
	default:
		return [3]int{16 - y, x, z}
	}
}

// Bounds returns the model's bounding box in 16-unit cells after applying
// the permutation.
func (m Model) Bounds(perm uint8) (bmin, bmax [3]uint8) {
	lo := [3]int{int(m.Min[0]), int(m.Min[1]), int(m.Min[2])}
	hi := [3]int{int(m.Max[0]), int(m.Max[1]), int(m.Max[2])}
	perm &= 63
	turns := [3]int{int(perm & 3), int(perm >> 2 & 3), int(perm >> 4 & 3)}
	for axis := 0; axis < 3; axis++ {
		for t := 0; t < turns[axis]; t++ {
			lo = rotatePoint(axis, lo)
			hi = rotatePoint(axis, hi)
		}
	}
	for a := 0; a < 3; a++ {
		if lo[a] > hi[a] {
			lo[a], hi[a] = hi[a], lo[a]
		}
		bmin[a] = uint8(lo[a])
		bmax[a] = uint8(hi[a])
	}
	return
}
