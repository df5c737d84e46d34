package meshing

import (
	"testing"

	"lodcraft/internal/world"
)

func TestUpdateBlockAddsAndRemovesFaces(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	src.add(m)
	me.RegenerateMainMesh(m)

	if err := me.UpdateBlock(m, 16, 16, 16, world.Block{Typ: 1}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if got := len(m.Opaque().core); got != 6 {
		t.Fatalf("placed cube: got %d faces, want 6", got)
	}

	if err := me.UpdateBlock(m, 16, 16, 16, world.Air); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := len(faceSet(m)); got != 0 {
		t.Fatalf("removed cube: got %d faces, want 0", got)
	}
}

func TestUpdateBlockIdempotent(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	src.add(m)
	me.RegenerateMainMesh(m)

	if err := me.UpdateBlock(m, 10, 10, 10, world.Block{Typ: 1}); err != nil {
		t.Fatalf("first: %v", err)
	}
	once := faceSet(m)
	if err := me.UpdateBlock(m, 10, 10, 10, world.Block{Typ: 1}); err != nil {
		t.Fatalf("second: %v", err)
	}
	if !sameFaceSet(once, faceSet(m)) {
		t.Fatalf("repeated update must not change the face set")
	}
}

func TestUpdateBlockWithCurrentValueIsNoOp(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	m.Chunk().SetBlockLocal(16, 16, 16, world.Block{Typ: 1})
	src.add(m)
	me.RegenerateMainMesh(m)
	before := faceSet(m)

	if err := me.UpdateBlock(m, 16, 16, 16, world.Block{Typ: 1}); err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if !sameFaceSet(before, faceSet(m)) {
		t.Fatalf("writing the current block must not change faces")
	}
}

func TestUpdateBlockMatchesRegenerate(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	build := func() *ChunkMesh {
		m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
		m.Chunk().SetBlockLocal(5, 5, 5, world.Block{Typ: 1})
		m.Chunk().SetBlockLocal(6, 5, 5, world.Block{Typ: 1})
		m.Chunk().SetBlockLocal(5, 6, 5, world.Block{Typ: 4}) // water
		return m
	}

	a := build()
	me.RegenerateMainMesh(a)
	want := faceSet(a)

	b := build()
	me.RegenerateMainMesh(b)
	src.add(b)
	// Redundant update of an existing cell must be invisible.
	if err := me.UpdateBlock(b, 6, 5, 5, world.Block{Typ: 1}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !sameFaceSet(want, faceSet(b)) {
		t.Fatalf("redundant update must equal plain regeneration")
	}

	// An incremental edit must match a fresh regeneration of the same grid.
	if err := me.UpdateBlock(b, 7, 5, 5, world.Block{Typ: 1}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	c := build()
	c.Chunk().SetBlockLocal(7, 5, 5, world.Block{Typ: 1})
	me.RegenerateMainMesh(c)
	if !sameFaceSet(faceSet(c), faceSet(b)) {
		t.Fatalf("incremental edit must match regeneration")
	}
}

// Scenario: removing an opaque block on the -X boundary touches this mesh
// and adds exactly one seam face into the -X neighbor; no other chunks are
// involved.
func TestUpdateBlockAtChunkBoundary(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	gpu := newFakeGPU()
	me := NewMesher(src, gpu)

	m := newTestMesh(world.ChunkPosition{WX: 32, VoxelSize: 1})
	nb := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	// Both sides of the boundary solid around the edited cell.
	m.Chunk().SetBlockLocal(0, 15, 15, world.Block{Typ: 1})
	nb.Chunk().SetBlockLocal(31, 15, 15, world.Block{Typ: 1})
	src.add(m)
	src.add(nb)
	me.RegenerateMainMesh(m)
	me.RegenerateMainMesh(nb)
	if err := me.UploadDataAndFinishNeighbors(m); err != nil {
		t.Fatalf("stitch: %v", err)
	}
	if got := len(nb.Opaque().neighbor[world.DirPosX]); got != 0 {
		t.Fatalf("culled boundary before edit: got %d seam faces", got)
	}

	if err := me.UpdateBlock(m, 32, 15, 15, world.Air); err != nil {
		t.Fatalf("update: %v", err)
	}

	// The neighbor's wall block now shows its +X face at the edited cell.
	seam := nb.Opaque().neighbor[world.DirPosX]
	if got := len(seam); got != 1 {
		t.Fatalf("neighbor seam faces: got %d, want 1", got)
	}
	f := seam[0]
	if f.X() != 0 || f.Y() != 15 || f.Z() != 15 || f.Normal() != world.DirPosX {
		t.Fatalf("seam face at (%d,%d,%d) n=%d, want (0,15,15) n=%d", f.X(), f.Y(), f.Z(), f.Normal(), world.DirPosX)
	}
	// The edited mesh lost the cube's faces.
	if got := len(faceSet(m)); got != 0 {
		t.Fatalf("edited mesh faces: got %d, want 0", got)
	}
}
