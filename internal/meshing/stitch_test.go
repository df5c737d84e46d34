package meshing

import (
	"testing"

	"lodcraft/internal/world"
)

// Scenario: two chunks with solid walls touching across their shared
// boundary contribute zero seam faces.
func TestSeamCullingBetweenSolidWalls(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	a := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	b := newTestMesh(world.ChunkPosition{WX: 32, VoxelSize: 1})
	for y := int32(0); y < world.ChunkSide; y++ {
		for z := int32(0); z < world.ChunkSide; z++ {
			a.Chunk().SetBlockLocal(31, y, z, world.Block{Typ: 1})
			b.Chunk().SetBlockLocal(0, y, z, world.Block{Typ: 1})
		}
	}
	src.add(a)
	src.add(b)
	me.RegenerateMainMesh(a)
	me.RegenerateMainMesh(b)
	if err := me.UploadDataAndFinishNeighbors(a); err != nil {
		t.Fatalf("stitch: %v", err)
	}

	if got := len(a.Opaque().neighbor[world.DirPosX]); got != 0 {
		t.Fatalf("a's +X seam: got %d faces, want 0", got)
	}
	if got := len(b.Opaque().neighbor[world.DirNegX]); got != 0 {
		t.Fatalf("b's -X seam: got %d faces, want 0", got)
	}
}

func TestSeamFacesAgainstAirNeighbor(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	a := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	b := newTestMesh(world.ChunkPosition{WX: 32, VoxelSize: 1})
	for y := int32(0); y < world.ChunkSide; y++ {
		for z := int32(0); z < world.ChunkSide; z++ {
			a.Chunk().SetBlockLocal(31, y, z, world.Block{Typ: 1})
		}
	}
	src.add(a)
	src.add(b)
	me.RegenerateMainMesh(a)
	me.RegenerateMainMesh(b)
	if err := me.UploadDataAndFinishNeighbors(a); err != nil {
		t.Fatalf("stitch: %v", err)
	}

	// Every wall cell exposes one face into the air neighbor; the exposed
	// cells wrap into b's frame at x=0.
	faces := a.Opaque().neighbor[world.DirPosX]
	if got := len(faces); got != world.ChunkSide*world.ChunkSide {
		t.Fatalf("a's +X seam: got %d faces, want %d", got, world.ChunkSide*world.ChunkSide)
	}
	for _, f := range faces {
		if f.X() != 0 || f.Normal() != world.DirPosX {
			t.Fatalf("seam face must sit at wrapped x=0 with +X normal, got x=%d n=%d", f.X(), f.Normal())
		}
	}
	if got := len(b.Opaque().neighbor[world.DirNegX]); got != 0 {
		t.Fatalf("air neighbor emits nothing back, got %d", got)
	}
}

// Scenario: no same-LOD neighbor, but the coarser chunk covering the
// neighbor region exists. Seam faces derive from sampling the coarse grid
// and nothing is pushed into the coarse mesh.
func TestLODSeam(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	fine := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	for x := int32(0); x < world.ChunkSide; x++ {
		for y := int32(0); y < world.ChunkSide; y++ {
			for z := int32(0); z < world.ChunkSide; z++ {
				fine.Chunk().SetBlockLocal(x, y, z, world.Block{Typ: 1})
			}
		}
	}
	// The coarse chunk spans 0..64 and is all air, so every wall cell of the
	// fine chunk is exposed at the LOD border.
	coarse := newTestMesh(world.ChunkPosition{VoxelSize: 2})
	src.add(fine)
	src.add(coarse)
	me.RegenerateMainMesh(fine)
	me.RegenerateMainMesh(coarse)
	if err := me.UploadDataAndFinishNeighbors(fine); err != nil {
		t.Fatalf("stitch: %v", err)
	}

	faces := fine.Opaque().neighbor[world.DirPosX]
	if got := len(faces); got != world.ChunkSide*world.ChunkSide {
		t.Fatalf("+X LOD seam: got %d faces, want %d (no holes)", got, world.ChunkSide*world.ChunkSide)
	}
	// Reverse direction never touches the coarse mesh.
	for d := 0; d < world.DirCount; d++ {
		if got := len(coarse.Opaque().neighbor[d]); got != 0 {
			t.Fatalf("coarse mesh seam list %d: got %d faces, want 0", d, got)
		}
	}
}

func TestLODSeamSamplesCoarseBlocks(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	fine := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	coarse := newTestMesh(world.ChunkPosition{VoxelSize: 2})
	// Solid coarse cell just across the fine chunk's +X boundary: cell
	// x=16 in the coarse grid covers world x 32..34.
	coarse.Chunk().SetBlockLocal(16, 8, 8, world.Block{Typ: 1})
	src.add(fine)
	src.add(coarse)
	me.RegenerateMainMesh(fine)
	me.RegenerateMainMesh(coarse)
	if err := me.UploadDataAndFinishNeighbors(fine); err != nil {
		t.Fatalf("stitch: %v", err)
	}

	// The coarse block's -X face shows into the fine chunk across the 2×2
	// fine boundary cells it covers.
	faces := fine.Opaque().neighbor[world.DirPosX]
	if got := len(faces); got != 4 {
		t.Fatalf("coarse block faces into fine mesh: got %d, want 4", got)
	}
	for _, f := range faces {
		if f.Normal() != world.DirNegX || f.X() != 31 {
			t.Fatalf("face must point -X at the fine boundary cells, got n=%d x=%d", f.Normal(), f.X())
		}
	}
}

func TestOuterLODBorderClearsSeam(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	for y := int32(0); y < world.ChunkSide; y++ {
		for z := int32(0); z < world.ChunkSide; z++ {
			m.Chunk().SetBlockLocal(31, y, z, world.Block{Typ: 1})
		}
	}
	src.add(m)
	me.RegenerateMainMesh(m)
	if err := me.UploadDataAndFinishNeighbors(m); err != nil {
		t.Fatalf("stitch: %v", err)
	}
	for d := 0; d < world.DirCount; d++ {
		if got := len(m.Opaque().neighbor[d]); got != 0 {
			t.Fatalf("seam list %d at the window edge must be empty, got %d", d, got)
		}
	}
}

// Inserting a chunk, stitching and removing it must leave the neighbors'
// face state exactly as before the insertion.
func TestInsertRemoveRoundTrip(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	nb := newTestMesh(world.ChunkPosition{WX: 32, VoxelSize: 1})
	for y := int32(0); y < world.ChunkSide; y++ {
		for z := int32(0); z < world.ChunkSide; z++ {
			nb.Chunk().SetBlockLocal(0, y, z, world.Block{Typ: 1})
		}
	}
	src.add(nb)
	me.RegenerateMainMesh(nb)
	if err := me.UploadDataAndFinishNeighbors(nb); err != nil {
		t.Fatalf("pre-stitch: %v", err)
	}
	before := faceSet(nb)

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	m.Chunk().SetBlockLocal(31, 8, 8, world.Block{Typ: 1})
	src.add(m)
	me.RegenerateMainMesh(m)
	if err := me.UploadDataAndFinishNeighbors(m); err != nil {
		t.Fatalf("stitch: %v", err)
	}

	// Remove the chunk again and refresh the neighbor's seams.
	delete(src.meshes, m.Pos())
	if err := me.UploadDataAndFinishNeighbors(nb); err != nil {
		t.Fatalf("post-stitch: %v", err)
	}
	after := faceSet(nb)
	if !sameFaceSet(before, after) {
		t.Fatalf("neighbor face state changed: %d faces before, %d after", len(before), len(after))
	}
}
