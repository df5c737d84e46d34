package meshing

import (
	"testing"

	"lodcraft/internal/world"
)

func TestPackLightChannels(t *testing.T) {
	// Full-intensity channels compress to 5 bits each at fixed offsets.
	full := world.LightCell{255, 255, 255, 255, 255, 255}
	want := uint32(31<<25 | 31<<20 | 31<<15 | 31<<10 | 31<<5 | 31)
	if got := packLight(full); got != want {
		t.Fatalf("packed: got %#x, want %#x", got, want)
	}
	one := world.LightCell{8, 0, 0, 0, 0, 16}
	if got := packLight(one); got != 1<<25|2 {
		t.Fatalf("packed: got %#x, want %#x", got, uint32(1<<25|2))
	}
	if packLight(world.LightCell{}) != 0 {
		t.Fatalf("dark cell must pack to zero")
	}
}

func TestLightFootprint(t *testing.T) {
	var flagged [LightGridCells]bool
	// A face in the chunk center flags the 27 cells around coarse (3,3,3).
	flagLightFootprint(&flagged, 16, 16, 16)
	count := 0
	for _, f := range flagged {
		if f {
			count++
		}
	}
	if count != 27 {
		t.Fatalf("center footprint: got %d cells, want 27", count)
	}

	var edge [LightGridCells]bool
	// A face at the chunk corner reaches the grid edge; the apron keeps the
	// whole footprint inside the grid.
	flagLightFootprint(&edge, 0, 0, 0)
	count = 0
	for _, f := range edge {
		if f {
			count++
		}
	}
	if count != 27 {
		t.Fatalf("corner footprint inside the apron: got %d cells, want 27", count)
	}
}

func TestZeroLightSlotDiscipline(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	gpu := newFakeGPU()
	me := NewMesher(src, gpu)

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	m.Chunk().SetBlockLocal(16, 16, 16, world.Block{Typ: 1})
	src.add(m)
	me.RegenerateMainMesh(m)
	if err := me.UploadDataAndFinishNeighbors(m); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Flagged cells received real slots (never 0); unflagged cells keep the
	// zero lightmap pointer.
	zeros, nonzeros := 0, 0
	for _, slot := range m.lightMap {
		if slot == 0 {
			zeros++
		} else {
			nonzeros++
		}
	}
	// The six exposed cells around (16,16,16) spread their 3×3×3 footprints
	// over the coarse cells (2..4,2..4,2..4) plus one 3×3 plane each at
	// x=1, y=1 and z=1.
	if nonzeros != 54 {
		t.Fatalf("allocated lightmaps: got %d, want 54", nonzeros)
	}
	if zeros != LightGridCells-54 {
		t.Fatalf("zero lightmap pointers: got %d, want %d", zeros, LightGridCells-54)
	}
}

func TestGetLightCrossesMeshes(t *testing.T) {
	initTestRegistry()
	src := newFakeSource()
	me := NewMesher(src, newFakeGPU())

	m := newTestMesh(world.ChunkPosition{VoxelSize: 1})
	nb := newTestMesh(world.ChunkPosition{WX: 32, VoxelSize: 1})
	light := make([]world.LightCell, world.ChunkVolume)
	light[world.BlockIndex(0, 4, 4)] = world.LightCell{200, 0, 0, 0, 0, 0}
	nb.Chunk().SetLight(light)
	src.add(m)
	src.add(nb)

	got := me.getLightAt(m, 32, 4, 4)
	if got[0] != 200 {
		t.Fatalf("cross-chunk light: got %v", got)
	}
	if l := me.getLightAt(m, -1, 4, 4); l != (world.LightCell{}) {
		t.Fatalf("missing neighbor must read dark, got %v", l)
	}
}
