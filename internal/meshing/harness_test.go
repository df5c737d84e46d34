package meshing

import (
	"sort"

	"lodcraft/internal/graphics"
	"lodcraft/internal/registry"
	"lodcraft/internal/world"
)

// fakeGPU hands out sequential slots and counts uploads; no GL context is
// needed to exercise the mesher.
type fakeGPU struct {
	nextFace     int32
	nextLight    int32
	nextDesc     int32
	faceUploads  int
	lightUploads int
	descUploads  int
	lastFaces    []FaceData
}

func newFakeGPU() *fakeGPU {
	// Light slot 0 is the reserved zero lightmap.
	return &fakeGPU{nextLight: 1}
}

func (g *fakeGPU) UploadFaces(faces []FaceData, a *graphics.Allocation) error {
	if int32(len(faces)) > a.Len {
		a.Start = g.nextFace
		a.Len = int32(len(faces))
		g.nextFace += a.Len
	}
	g.faceUploads++
	g.lastFaces = append(g.lastFaces[:0], faces...)
	return nil
}

func (g *fakeGPU) FreeFaces(a *graphics.Allocation) { a.Start, a.Len = 0, 0 }

func (g *fakeGPU) UploadLightCube(words *[512]uint32, a *graphics.Allocation) error {
	if a.Len == 0 {
		a.Start = g.nextLight
		a.Len = 1
		g.nextLight++
	}
	g.lightUploads++
	return nil
}

func (g *fakeGPU) FreeLightCube(a *graphics.Allocation) { a.Start, a.Len = 0, 0 }

func (g *fakeGPU) UploadDescriptor(d *graphics.ChunkDescriptor, a *graphics.Allocation) error {
	if a.Len == 0 {
		a.Start = g.nextDesc
		a.Len = 1
		g.nextDesc++
	}
	g.descUploads++
	return nil
}

func (g *fakeGPU) FreeDescriptor(a *graphics.Allocation) { a.Start, a.Len = 0, 0 }

// fakeSource is a map-backed LOD window.
type fakeSource struct {
	meshes map[world.ChunkPosition]*ChunkMesh
}

func newFakeSource() *fakeSource {
	return &fakeSource{meshes: make(map[world.ChunkPosition]*ChunkMesh)}
}

func (s *fakeSource) add(m *ChunkMesh) { s.meshes[m.Pos()] = m }

func (s *fakeSource) MeshAt(pos world.ChunkPosition) *ChunkMesh {
	return s.meshes[pos]
}

func (s *fakeSource) FinestMeshAt(wx, wy, wz, minVoxelSize int32) *ChunkMesh {
	for vs := minVoxelSize; vs <= 32; vs *= 2 {
		side := world.ChunkSide * vs
		pos := world.ChunkPosition{
			WX:        floorAlign(wx, side),
			WY:        floorAlign(wy, side),
			WZ:        floorAlign(wz, side),
			VoxelSize: vs,
		}
		if m, ok := s.meshes[pos]; ok {
			return m
		}
	}
	return nil
}

// newTestMesh builds a generated mesh around an empty chunk.
func newTestMesh(pos world.ChunkPosition) *ChunkMesh {
	c := world.NewChunk(pos)
	c.SetGenerated()
	return NewChunkMesh(c)
}

// faceSet flattens every face list of a mesh into a sorted slice for
// set comparison.
func faceSet(m *ChunkMesh) []FaceData {
	var out []FaceData
	for _, p := range []*PrimitiveMesh{&m.opaque, &m.voxel, &m.transparent} {
		out = append(out, p.core...)
		for d := 0; d < world.DirCount; d++ {
			out = append(out, p.neighbor[d]...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sameFaceSet(a, b []FaceData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func initTestRegistry() {
	registry.Init()
}
