package meshing

import (
	"lodcraft/internal/graphics"
	"lodcraft/internal/world"
)

// MeshClass selects which of the three primitive meshes a face belongs to.
type MeshClass uint8

const (
	ClassOpaque MeshClass = iota
	ClassVoxel
	ClassTransparent
)

// classify picks the primitive mesh for a block: transparent blocks go to
// the transparent mesh, non-cube models to the voxel mesh, everything else
// to the opaque mesh.
func classify(transparent bool, modelIndex uint16) MeshClass {
	if transparent {
		return ClassTransparent
	}
	if modelIndex != 0 {
		return ClassVoxel
	}
	return ClassOpaque
}

// PrimitiveMesh is one face list of a chunk: core faces whose both cells lie
// inside the chunk, plus one list per neighbor direction for seam faces.
type PrimitiveMesh struct {
	class    MeshClass
	core     []FaceData
	neighbor [world.DirCount][]FaceData

	// complete is the concatenated upload buffer built by finish.
	complete []FaceData
	alloc    graphics.Allocation

	wasChanged bool

	// sortedCount is the drawable prefix after transparent sorting; for
	// opaque and voxel meshes it always equals len(complete).
	sortedCount int32
}

func (p *PrimitiveMesh) addCore(f FaceData) {
	p.core = append(p.core, f)
	p.wasChanged = true
}

func (p *PrimitiveMesh) addNeighbor(dir int, f FaceData) {
	p.neighbor[dir] = append(p.neighbor[dir], f)
	p.wasChanged = true
}

func (p *PrimitiveMesh) clearCore() {
	if len(p.core) > 0 {
		p.wasChanged = true
	}
	p.core = p.core[:0]
}

func (p *PrimitiveMesh) clearNeighbor(dir int) {
	if len(p.neighbor[dir]) > 0 {
		p.wasChanged = true
	}
	p.neighbor[dir] = p.neighbor[dir][:0]
}

// removeFace deletes one exact face record, searching the core list and the
// given neighbor list. Returns whether a record was removed.
func (p *PrimitiveMesh) removeFace(dir int, f FaceData) bool {
	if removeFrom(&p.core, f) {
		p.wasChanged = true
		return true
	}
	if dir >= 0 && removeFrom(&p.neighbor[dir], f) {
		p.wasChanged = true
		return true
	}
	return false
}

func removeFrom(list *[]FaceData, f FaceData) bool {
	l := *list
	for i := range l {
		if l[i] == f {
			l[i] = l[len(l)-1]
			*list = l[:len(l)-1]
			return true
		}
	}
	return false
}

// buildComplete concatenates core and neighbor lists into the upload buffer,
// reallocating only when the capacity shrank below the need or grew far past
// it.
func (p *PrimitiveMesh) buildComplete() {
	total := len(p.core)
	for d := 0; d < world.DirCount; d++ {
		total += len(p.neighbor[d])
	}
	if cap(p.complete) < total || cap(p.complete) > 4*total+64 {
		p.complete = make([]FaceData, 0, total)
	} else {
		p.complete = p.complete[:0]
	}
	p.complete = append(p.complete, p.core...)
	for d := 0; d < world.DirCount; d++ {
		p.complete = append(p.complete, p.neighbor[d]...)
	}
	p.sortedCount = int32(len(p.complete))
}

// FaceCount returns the number of drawable faces after the last finish.
func (p *PrimitiveMesh) FaceCount() int32 {
	return p.sortedCount
}

// Alloc exposes the face-buffer slot for draw calls.
func (p *PrimitiveMesh) Alloc() graphics.Allocation {
	return p.alloc
}

// Complete exposes the concatenated face list (read-only; the renderer's
// transparent sorter reorders it in place before re-upload).
func (p *PrimitiveMesh) Complete() []FaceData {
	return p.complete
}

// WasChanged reports pending edits since the last finish.
func (p *PrimitiveMesh) WasChanged() bool {
	return p.wasChanged
}
