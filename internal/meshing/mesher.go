package meshing

import (
	"lodcraft/internal/graphics"
	"lodcraft/internal/registry"
	"lodcraft/internal/world"
	"lodcraft/pkg/blockmodel"
)

// NeighborSource resolves mesh lookups across the LOD window. The LOD
// manager implements it; tests substitute a map-backed fake.
type NeighborSource interface {
	// MeshAt returns the live mesh with exactly this position, or nil.
	MeshAt(pos world.ChunkPosition) *ChunkMesh

	// FinestMeshAt returns the finest live mesh containing the world
	// coordinate, searching voxel sizes from minVoxelSize upward. Used by
	// light sampling, which may cross into any LOD.
	FinestMeshAt(wx, wy, wz int32, minVoxelSize int32) *ChunkMesh
}

// GPU receives the mesher's uploads. The production implementation writes
// through the slab allocators on the render thread.
type GPU interface {
	UploadFaces(faces []FaceData, alloc *graphics.Allocation) error
	FreeFaces(alloc *graphics.Allocation)
	UploadLightCube(words *[512]uint32, alloc *graphics.Allocation) error
	FreeLightCube(alloc *graphics.Allocation)
	UploadDescriptor(desc *graphics.ChunkDescriptor, alloc *graphics.Allocation) error
	FreeDescriptor(alloc *graphics.Allocation)
}

// Mesher turns voxel grids into face lists and keeps them consistent under
// stitching and block edits.
type Mesher struct {
	src NeighborSource
	gpu GPU
}

// NewMesher wires a mesher to its neighbor lookup and upload sink.
func NewMesher(src NeighborSource, gpu GPU) *Mesher {
	return &Mesher{src: src, gpu: gpu}
}

// canBeSeenThroughOtherBlock decides whether the face of self towards dir is
// visible given the block standing there. Any non-cube model exposes every
// face it does not fill; an air neighbor always exposes; view-through
// neighbors of a different type expose, while two touching faces of the
// same view-through type hide each other.
func canBeSeenThroughOtherBlock(self, other world.Block, dir int) bool {
	if self.Typ == 0 {
		return false
	}
	selfModel, selfPerm := registry.Model(self)
	freestanding := false
	if selfModel != blockmodel.FullCubeIndex {
		m := registry.Models.Model(selfModel)
		freestanding = !m.FullFaces[blockmodel.WorldToModelDir(selfPerm, dir)]
	}
	if freestanding || other.Typ == 0 {
		return true
	}
	if self != other && registry.ViewThrough(other.Typ) {
		return true
	}
	otherModel, _ := registry.Model(other)
	return otherModel != blockmodel.FullCubeIndex
}

// emitFace appends the face of block b pointing towards dir, addressed at
// the exposed cell (ex,ey,ez). dirList < 0 targets the core lists.
func emitFace(m *ChunkMesh, b world.Block, ex, ey, ez int32, dir, dirList int) {
	modelIdx, perm := registry.Model(b)
	transparent := registry.Transparent(b.Typ)
	p := m.primitive(classify(transparent, modelIdx))
	f := PackFace(ex, ey, ez, false, dir, perm, b.Typ, modelIdx)
	if dirList < 0 {
		p.addCore(f)
	} else {
		p.addNeighbor(dirList, f)
	}
	if transparent && registry.HasBackFace(b.Typ) {
		bf := PackFace(ex, ey, ez, true, world.OppositeDir(dir), perm, b.Typ, modelIdx)
		if dirList < 0 {
			m.transparent.addCore(bf)
		} else {
			m.transparent.addNeighbor(dirList, bf)
		}
	}
}

// removeFaceOf deletes the face emitted by emitFace with the same inputs.
func removeFaceOf(m *ChunkMesh, b world.Block, ex, ey, ez int32, dir, dirList int) {
	modelIdx, perm := registry.Model(b)
	transparent := registry.Transparent(b.Typ)
	p := m.primitive(classify(transparent, modelIdx))
	p.removeFace(dirList, PackFace(ex, ey, ez, false, dir, perm, b.Typ, modelIdx))
	if transparent && registry.HasBackFace(b.Typ) {
		m.transparent.removeFace(dirList, PackFace(ex, ey, ez, true, world.OppositeDir(dir), perm, b.Typ, modelIdx))
	}
}

// boundary face axes: for each direction, the tangent axes (u,v) used by
// the bounding rectangles.
var faceAxes = [world.DirCount][2]int{
	{1, 2}, {1, 2}, // ±X: (y,z)
	{0, 2}, {0, 2}, // ±Y: (x,z)
	{0, 1}, {0, 1}, // ±Z: (x,y)
}

// RegenerateMainMesh rebuilds the core face lists of a mesh from its grid.
// It runs on worker threads with the mesh mutex held.
func (me *Mesher) RegenerateMainMesh(m *ChunkMesh) {
	m.Lock()
	defer m.Unlock()
	me.regenerateLocked(m)
}

func (me *Mesher) regenerateLocked(m *ChunkMesh) {
	m.opaque.clearCore()
	m.voxel.clearCore()
	m.transparent.clearCore()
	for d := range m.boundingRects {
		m.boundingRects[d] = emptyRect()
	}

	c := m.chunk
	var coord [3]int32
	for x := int32(0); x < world.ChunkSide; x++ {
		for y := int32(0); y < world.ChunkSide; y++ {
			for z := int32(0); z < world.ChunkSide; z++ {
				b := c.GetBlockLocal(x, y, z)
				coord[0], coord[1], coord[2] = x, y, z

				// Track boundary cells a seam face could show through:
				// air, view-through blocks and non-cube models.
				seeThrough := b.IsAir() || registry.ViewThrough(b.Typ)
				if !seeThrough && !b.IsAir() {
					if mi, _ := registry.Model(b); mi != 0 {
						seeThrough = true
					}
				}
				if seeThrough {
					for d := 0; d < world.DirCount; d++ {
						if onBoundary(coord, d) {
							u, v := faceAxes[d][0], faceAxes[d][1]
							m.boundingRects[d].add(coord[u], coord[v])
						}
					}
				}

				if b.IsAir() {
					continue
				}
				for d := 0; d < world.DirCount; d++ {
					nx := x + world.DirDelta[d][0]
					ny := y + world.DirDelta[d][1]
					nz := z + world.DirDelta[d][2]
					if uint32(nx)|uint32(ny)|uint32(nz) >= world.ChunkSide {
						// Boundary cells are stitched later.
						continue
					}
					nb := c.GetBlockLocal(nx, ny, nz)
					if canBeSeenThroughOtherBlock(b, nb, d) {
						emitFace(m, b, nx, ny, nz, d, -1)
					}
				}
			}
		}
	}
	m.version.Add(1)
}

func onBoundary(coord [3]int32, dir int) bool {
	axis := dir >> 1
	if dir&1 == 0 {
		return coord[axis] == 0
	}
	return coord[axis] == world.ChunkSide-1
}
