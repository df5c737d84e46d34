package world

import (
	"fmt"
	"sync"
)

const (
	// Chunk dimensions. Chunks are cubes of 32 voxel cells regardless of
	// voxel size.
	ChunkShift  = 5
	ChunkSide   = 1 << ChunkShift
	ChunkMask   = ChunkSide - 1
	ChunkVolume = ChunkSide * ChunkSide * ChunkSide
)

// BlockIndex converts cell coordinates to the flat array index.
func BlockIndex(x, y, z int32) int32 {
	return x<<ChunkShift | y<<(2*ChunkShift) | z
}

// Chunk is a dense 32³ voxel grid at one voxel size. A chunk with
// voxelSize > 1 stores one block per cell of that size.
type Chunk struct {
	Pos            ChunkPosition
	voxelSizeShift uint

	blocks [ChunkVolume]Block
	light  []LightCell

	wasChanged bool
	wasCleaned bool
	generated  bool

	mu sync.Mutex
}

// NewChunk creates an empty chunk at the given position.
func NewChunk(pos ChunkPosition) *Chunk {
	return &Chunk{
		Pos:            pos,
		voxelSizeShift: pos.SizeShift(),
	}
}

// Mutex exposes the per-chunk lock shared with the owning mesh.
func (c *Chunk) Mutex() *sync.Mutex {
	return &c.mu
}

// LiesInChunk reports whether the world coordinate falls inside this chunk.
// Callers are expected to check before any of the mutators below.
func (c *Chunk) LiesInChunk(wx, wy, wz int32) bool {
	return c.Pos.Contains(wx, wy, wz)
}

func (c *Chunk) cellIndex(wx, wy, wz int32) int32 {
	x := (wx - c.Pos.WX) >> c.voxelSizeShift
	y := (wy - c.Pos.WY) >> c.voxelSizeShift
	z := (wz - c.Pos.WZ) >> c.voxelSizeShift
	if uint32(x)|uint32(y)|uint32(z) >= ChunkSide {
		panic(fmt.Sprintf("world: coordinate (%d,%d,%d) outside chunk %+v", wx, wy, wz, c.Pos))
	}
	return BlockIndex(x, y, z)
}

// GetBlock returns the block at a world coordinate inside this chunk.
func (c *Chunk) GetBlock(wx, wy, wz int32) Block {
	return c.blocks[c.cellIndex(wx, wy, wz)]
}

// GetBlockLocal returns the block at cell coordinates in [0, 31].
func (c *Chunk) GetBlockLocal(x, y, z int32) Block {
	return c.blocks[BlockIndex(x, y, z)]
}

// UpdateBlock writes the block unconditionally and marks the chunk changed.
func (c *Chunk) UpdateBlock(wx, wy, wz int32, b Block) {
	c.blocks[c.cellIndex(wx, wy, wz)] = b
	c.wasChanged = true
}

// UpdateBlockIfDegradable overwrites only air or cells whose current block
// is degradable.
func (c *Chunk) UpdateBlockIfDegradable(wx, wy, wz int32, b Block, degradable func(typ uint16) bool) {
	idx := c.cellIndex(wx, wy, wz)
	cur := c.blocks[idx]
	if cur.IsAir() || degradable(cur.Typ) {
		c.blocks[idx] = b
		c.wasChanged = true
	}
}

// UpdateBlockInGeneration writes the block without marking the chunk
// changed. Used while a worldgen pipeline is still populating the grid.
func (c *Chunk) UpdateBlockInGeneration(wx, wy, wz int32, b Block) {
	c.blocks[c.cellIndex(wx, wy, wz)] = b
}

// SetBlockLocal writes a block at cell coordinates without touching flags.
func (c *Chunk) SetBlockLocal(x, y, z int32, b Block) {
	c.blocks[BlockIndex(x, y, z)] = b
}

// SetLight installs the per-voxel light channels delivered with the payload.
// A nil slice means all-dark; otherwise the slice must hold ChunkVolume cells.
func (c *Chunk) SetLight(light []LightCell) {
	if light != nil && len(light) != ChunkVolume {
		panic(fmt.Sprintf("world: light slice has %d cells, want %d", len(light), ChunkVolume))
	}
	c.light = light
}

// GetLight returns the light channels at cell coordinates.
func (c *Chunk) GetLight(x, y, z int32) LightCell {
	if c.light == nil {
		return LightCell{}
	}
	return c.light[BlockIndex(x, y, z)]
}

// WasChanged reports whether a mutator touched the grid since the last
// SetClean.
func (c *Chunk) WasChanged() bool {
	return c.wasChanged
}

// SetChanged marks the chunk as edited.
func (c *Chunk) SetChanged() {
	c.wasChanged = true
	c.wasCleaned = false
}

// SetClean clears the changed flag after the mesh has absorbed the edit.
func (c *Chunk) SetClean() {
	c.wasChanged = false
	c.wasCleaned = true
}

// Generated reports whether the chunk grid has been populated.
func (c *Chunk) Generated() bool {
	return c.generated
}

// SetGenerated marks the grid as populated by a payload or generator.
func (c *Chunk) SetGenerated() {
	c.generated = true
}

// FillFromPayload copies a packed 32-bit block array (and optional light
// cells) into the grid and marks it generated.
func (c *Chunk) FillFromPayload(blocks []uint32, light []LightCell) error {
	if len(blocks) != ChunkVolume {
		return fmt.Errorf("world: payload has %d blocks, want %d", len(blocks), ChunkVolume)
	}
	for i, v := range blocks {
		c.blocks[i] = UnpackBlock(v)
	}
	c.SetLight(light)
	c.generated = true
	return nil
}
