package meshing

import (
	"testing"

	"lodcraft/internal/world"
)

func transparentFace(x, y, z int32, back bool, normal int) FaceData {
	return PackFace(x, y, z, back, normal, 0, 4, 0)
}

func TestSortFarthestFirst(t *testing.T) {
	faces := []FaceData{
		transparentFace(1, 0, 0, false, world.DirPosY),
		transparentFace(20, 0, 0, false, world.DirPosY),
		transparentFace(10, 0, 0, false, world.DirPosY),
	}
	prefix := sortTransparentFaces(faces, 0, 0, 0)
	if prefix != 3 {
		t.Fatalf("prefix: got %d, want 3", prefix)
	}
	if faces[0].X() != 20 || faces[1].X() != 10 || faces[2].X() != 1 {
		t.Fatalf("order: got %d,%d,%d, want 20,10,1", faces[0].X(), faces[1].X(), faces[2].X())
	}
}

func TestSortBackFacesBeforeFrontFaces(t *testing.T) {
	faces := []FaceData{
		transparentFace(5, 0, 0, false, world.DirPosY),
		transparentFace(5, 0, 0, true, world.DirNegY),
	}
	sortTransparentFaces(faces, 0, 0, 0)
	if !faces[0].IsBackFace() || faces[1].IsBackFace() {
		t.Fatalf("back faces must sort ahead of front faces at equal distance")
	}
}

func TestSortCullsOppositeSideFaces(t *testing.T) {
	faces := []FaceData{
		// +X face behind the viewer: culled.
		transparentFace(20, 0, 0, false, world.DirPosX),
		// +X face in front of the viewer: kept.
		transparentFace(2, 0, 0, false, world.DirPosX),
		// Boundary-plane face (coordinate zero along its axis): never culled.
		transparentFace(0, 9, 9, false, world.DirPosX),
	}
	prefix := sortTransparentFaces(faces, 5, 0, 0)
	if prefix != 2 {
		t.Fatalf("prefix: got %d, want 2", prefix)
	}
	for _, f := range faces[:prefix] {
		if f.X() == 20 {
			t.Fatalf("face behind the viewer must be culled")
		}
	}
	if faces[2].X() != 20 {
		t.Fatalf("culled face must move to the suffix")
	}
}

func TestSortIdempotent(t *testing.T) {
	var faces []FaceData
	for i := int32(0); i < 100; i++ {
		faces = append(faces, transparentFace(i&31, i*7&31, i*13&31, i&1 == 0, int(i%6)))
	}
	first := append([]FaceData(nil), faces...)
	p1 := sortTransparentFaces(first, 3, 5, 7)
	second := append([]FaceData(nil), first...)
	p2 := sortTransparentFaces(second, 3, 5, 7)
	if p1 != p2 {
		t.Fatalf("prefix changed between runs: %d vs %d", p1, p2)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("re-sorting with the same viewer cell changed the buffer at %d", i)
		}
	}
}

// Scenario: the sort pass runs when the player crosses a cell boundary
// along Z and stays idle during sub-cell motion.
func TestSortRunsOncePerCellCrossing(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	gpu := newFakeGPU()
	me := NewMesher(src, gpu)

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	for i := int32(0); i < 100; i++ {
		m.Chunk().SetBlockLocal(i&31, 2+(i>>5), 5, world.Block{Typ: 4})
	}
	src.add(m)
	me.RegenerateMainMesh(m)
	if err := me.UploadDataAndFinishNeighbors(m); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Player at (3.4, 5.6, 7.8) -> cell (3,5,7).
	ran, err := me.SortTransparent(m, 3, 5, 7)
	if err != nil || !ran {
		t.Fatalf("first sort must run: ran=%v err=%v", ran, err)
	}
	// Sub-cell motion: same integer cell, no sort.
	ran, err = me.SortTransparent(m, 3, 5, 7)
	if err != nil || ran {
		t.Fatalf("sub-cell motion must not sort: ran=%v err=%v", ran, err)
	}
	// Crossing one cell along Z re-sorts.
	ran, err = me.SortTransparent(m, 3, 5, 8)
	if err != nil || !ran {
		t.Fatalf("cell crossing must sort: ran=%v err=%v", ran, err)
	}
	// Farther faces sit earlier in the drawable prefix.
	faces := m.Transparent().Complete()
	prefix := m.Transparent().FaceCount()
	lastDist := int32(1 << 30)
	for _, f := range faces[:prefix] {
		d := absCell(f.X()-3) + absCell(f.Y()-5) + absCell(f.Z()-8)
		if d > lastDist {
			t.Fatalf("prefix not ordered farthest-first")
		}
		lastDist = d
	}
}
