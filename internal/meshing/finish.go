package meshing

import (
	"log"

	"lodcraft/internal/graphics"
	"lodcraft/internal/world"
)

// Finish concatenates the face lists, refreshes the light cubes the faces
// touch and uploads faces, light and the chunk descriptor. Runs on the
// render thread.
func (me *Mesher) Finish(m *ChunkMesh) error {
	if !m.TryLock() {
		return ErrMeshBusy
	}
	defer m.Unlock()
	return me.finishLocked(m)
}

func (me *Mesher) finishLocked(m *ChunkMesh) error {
	anyChanged := !m.uploaded
	for _, p := range []*PrimitiveMesh{&m.opaque, &m.voxel, &m.transparent} {
		anyChanged = anyChanged || p.wasChanged
	}
	if !anyChanged {
		return nil
	}

	var flagged [LightGridCells]bool
	total := int32(0)
	for _, p := range []*PrimitiveMesh{&m.opaque, &m.voxel, &m.transparent} {
		if p.wasChanged || !m.uploaded {
			p.buildComplete()
			if err := me.gpu.UploadFaces(p.complete, &p.alloc); err != nil {
				// The mesh keeps its previous GPU state; skip this upload.
				log.Printf("meshing: face upload for %+v failed: %v", m.pos, err)
				return nil
			}
			if p.class == ClassTransparent {
				m.hasSorted = false
			}
			p.wasChanged = false
		}
		for _, f := range p.core {
			x, y, z := unwrappedCell(f, -1)
			flagLightFootprint(&flagged, x, y, z)
		}
		for d := 0; d < world.DirCount; d++ {
			for _, f := range p.neighbor[d] {
				x, y, z := unwrappedCell(f, d)
				flagLightFootprint(&flagged, x, y, z)
			}
		}
		total += int32(len(p.complete))
	}

	// Synthesize a compressed light cube for every flagged coarse cell.
	var cube [512]uint32
	for cx := int32(0); cx < LightGridSide; cx++ {
		for cy := int32(0); cy < LightGridSide; cy++ {
			for cz := int32(0); cz < LightGridSide; cz++ {
				idx := lightGridIndex(cx, cy, cz)
				if !flagged[idx] {
					continue
				}
				me.buildLightCube(m, cx, cy, cz, &cube)
				if err := me.gpu.UploadLightCube(&cube, &m.lightAllocs[idx]); err != nil {
					log.Printf("meshing: light upload for %+v failed: %v", m.pos, err)
					continue
				}
				m.lightMap[idx] = uint32(m.lightAllocs[idx].Start)
			}
		}
	}

	desc := graphics.ChunkDescriptor{
		Position:  [3]int32{m.pos.WX, m.pos.WY, m.pos.WZ},
		VoxelSize: m.pos.VoxelSize,
	}
	copy(desc.LightMap[:], m.lightMap[:])
	if err := me.gpu.UploadDescriptor(&desc, &m.descriptor); err != nil {
		log.Printf("meshing: descriptor upload for %+v failed: %v", m.pos, err)
		return nil
	}

	m.uploaded = true
	m.faceCount.Store(total)
	return nil
}

// FreeMesh returns every GPU slot the mesh holds. Called on the render
// thread when the LOD window destroys a mesh.
func (me *Mesher) FreeMesh(m *ChunkMesh) {
	for _, p := range []*PrimitiveMesh{&m.opaque, &m.voxel, &m.transparent} {
		me.gpu.FreeFaces(&p.alloc)
	}
	for i := range m.lightAllocs {
		me.gpu.FreeLightCube(&m.lightAllocs[i])
		m.lightMap[i] = 0
	}
	me.gpu.FreeDescriptor(&m.descriptor)
	m.uploaded = false
	m.faceCount.Store(0)
}
