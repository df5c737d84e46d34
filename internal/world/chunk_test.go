package world

import "testing"

func TestBlockIndexLayout(t *testing.T) {
	if got := BlockIndex(1, 0, 0); got != 1<<5 {
		t.Fatalf("x stride: got %d, want %d", got, 1<<5)
	}
	if got := BlockIndex(0, 1, 0); got != 1<<10 {
		t.Fatalf("y stride: got %d, want %d", got, 1<<10)
	}
	if got := BlockIndex(0, 0, 1); got != 1 {
		t.Fatalf("z stride: got %d, want 1", got)
	}
	if got := BlockIndex(31, 31, 31); got != ChunkVolume-1 {
		t.Fatalf("last cell: got %d, want %d", got, ChunkVolume-1)
	}
}

func TestUpdateBlockMarksChanged(t *testing.T) {
	c := NewChunk(ChunkPosition{VoxelSize: 1})
	if c.WasChanged() {
		t.Fatalf("fresh chunk must not be changed")
	}
	c.UpdateBlock(3, 4, 5, Block{Typ: 7})
	if !c.WasChanged() {
		t.Fatalf("UpdateBlock must mark the chunk changed")
	}
	if got := c.GetBlock(3, 4, 5); got.Typ != 7 {
		t.Fatalf("got typ %d, want 7", got.Typ)
	}
}

func TestUpdateBlockInGenerationDoesNotMarkChanged(t *testing.T) {
	c := NewChunk(ChunkPosition{VoxelSize: 1})
	c.UpdateBlockInGeneration(0, 0, 0, Block{Typ: 2})
	if c.WasChanged() {
		t.Fatalf("generation writes must not mark the chunk changed")
	}
	if got := c.GetBlock(0, 0, 0); got.Typ != 2 {
		t.Fatalf("got typ %d, want 2", got.Typ)
	}
}

func TestUpdateBlockIfDegradable(t *testing.T) {
	degradable := func(typ uint16) bool { return typ == 9 }
	c := NewChunk(ChunkPosition{VoxelSize: 1})

	// Air is always overwritable.
	c.UpdateBlockIfDegradable(0, 0, 0, Block{Typ: 1}, degradable)
	if got := c.GetBlock(0, 0, 0); got.Typ != 1 {
		t.Fatalf("air cell: got typ %d, want 1", got.Typ)
	}

	// Non-degradable content stays.
	c.UpdateBlockIfDegradable(0, 0, 0, Block{Typ: 2}, degradable)
	if got := c.GetBlock(0, 0, 0); got.Typ != 1 {
		t.Fatalf("solid cell overwritten: got typ %d, want 1", got.Typ)
	}

	// Degradable content yields.
	c.UpdateBlock(1, 0, 0, Block{Typ: 9})
	c.UpdateBlockIfDegradable(1, 0, 0, Block{Typ: 3}, degradable)
	if got := c.GetBlock(1, 0, 0); got.Typ != 3 {
		t.Fatalf("degradable cell kept: got typ %d, want 3", got.Typ)
	}
}

func TestVoxelSizeCoordinateShift(t *testing.T) {
	c := NewChunk(ChunkPosition{WX: 64, WY: 0, WZ: 0, VoxelSize: 2})
	c.UpdateBlock(64, 0, 0, Block{Typ: 5})
	// Both world coordinates of the 2-unit cell resolve to the same block.
	if got := c.GetBlock(65, 1, 1); got.Typ != 5 {
		t.Fatalf("coarse cell aliasing: got typ %d, want 5", got.Typ)
	}
	if got := c.GetBlockLocal(0, 0, 0); got.Typ != 5 {
		t.Fatalf("local cell: got typ %d, want 5", got.Typ)
	}
}

func TestOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("out-of-chunk write must panic")
		}
	}()
	c := NewChunk(ChunkPosition{VoxelSize: 1})
	c.UpdateBlock(32, 0, 0, Block{Typ: 1})
}

func TestFillFromPayload(t *testing.T) {
	c := NewChunk(ChunkPosition{VoxelSize: 1})
	blocks := make([]uint32, ChunkVolume)
	blocks[BlockIndex(1, 2, 3)] = Block{Typ: 4, Data: 8}.Packed()
	if err := c.FillFromPayload(blocks, nil); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !c.Generated() {
		t.Fatalf("payload fill must mark the chunk generated")
	}
	got := c.GetBlock(1, 2, 3)
	if got.Typ != 4 || got.Data != 8 {
		t.Fatalf("got %+v, want {4 8}", got)
	}

	if err := c.FillFromPayload(blocks[:10], nil); err == nil {
		t.Fatalf("short payload must be rejected")
	}
}
