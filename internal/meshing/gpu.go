package meshing

import (
	"unsafe"

	"lodcraft/internal/graphics"
)

// slabGPU routes mesher uploads through the process-wide slab allocators.
// All calls happen on the render thread.
type slabGPU struct{}

// NewSlabGPU returns the production upload sink backed by
// graphics.{FaceBuffer,LightBuffer,ChunkDataBuffer}.
func NewSlabGPU() GPU {
	return slabGPU{}
}

func (slabGPU) UploadFaces(faces []FaceData, alloc *graphics.Allocation) error {
	if len(faces) == 0 {
		if alloc.Len > 0 {
			graphics.FaceBuffer.Free(alloc)
		}
		return nil
	}
	return graphics.FaceBuffer.Upload(unsafe.Pointer(&faces[0]), int32(len(faces)), alloc)
}

func (slabGPU) FreeFaces(alloc *graphics.Allocation) {
	graphics.FaceBuffer.Free(alloc)
}

func (slabGPU) UploadLightCube(words *[512]uint32, alloc *graphics.Allocation) error {
	return graphics.LightBuffer.Upload(unsafe.Pointer(&words[0]), 1, alloc)
}

func (slabGPU) FreeLightCube(alloc *graphics.Allocation) {
	graphics.LightBuffer.Free(alloc)
}

func (slabGPU) UploadDescriptor(desc *graphics.ChunkDescriptor, alloc *graphics.Allocation) error {
	return graphics.ChunkDataBuffer.Upload(unsafe.Pointer(desc), 1, alloc)
}

func (slabGPU) FreeDescriptor(alloc *graphics.Allocation) {
	graphics.ChunkDataBuffer.Free(alloc)
}
