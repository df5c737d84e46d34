package world

// Block is a single voxel cell: a material type id plus 16 bits of state.
type Block struct {
	Typ  uint16
	Data uint16
}

// Air is the zero block. Type id 0 is air everywhere in the engine.
var Air = Block{}

// IsAir reports whether the block is the empty cell.
func (b Block) IsAir() bool {
	return b.Typ == 0
}

// Packed returns the 32-bit wire form (type in the low half).
func (b Block) Packed() uint32 {
	return uint32(b.Typ) | uint32(b.Data)<<16
}

// UnpackBlock decodes the 32-bit wire form produced by Packed.
func UnpackBlock(v uint32) Block {
	return Block{Typ: uint16(v), Data: uint16(v >> 16)}
}

// LightCell holds the six per-voxel light channels delivered with a chunk
// payload: sun RGB followed by block RGB, one byte each.
type LightCell [6]uint8

// Face directions. Opposites differ in the lowest bit so that d^1 flips
// a direction, which the seam code relies on.
const (
	DirNegX = iota
	DirPosX
	DirNegY
	DirPosY
	DirNegZ
	DirPosZ
	DirCount
)

// DirDelta maps a direction to its unit step in voxel cells.
var DirDelta = [DirCount][3]int32{
	{-1, 0, 0},
	{1, 0, 0},
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
}

// OppositeDir returns the direction facing back at d.
func OppositeDir(d int) int {
	return d ^ 1
}
