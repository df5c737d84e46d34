package graphics

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Stable SSBO binding indices shared with the chunk shaders.
const (
	BindingAnimationTime  = 0
	BindingAnimationFrame = 1
	BindingFaces          = 3
	BindingMaterials      = 5
	BindingPalette        = 6
	BindingChunkData      = 7
	BindingLight          = 8
)

// LightCubeSize is the element size of one compressed light cube:
// 8³ packed 32-bit words.
const LightCubeSize = 8 * 8 * 8 * 4

// ChunkDescriptor is the per-chunk record the fragment shader indexes with
// chunkDataIndex: the chunk origin, its voxel size, and the 6×6×6 lightmap
// pointer grid.
type ChunkDescriptor struct {
	Position  [3]int32
	VoxelSize int32
	LightMap  [216]uint32
}

// Process-wide slab allocators. Initialized once on the render thread after
// the attribute tables, torn down in reverse order.
var (
	FaceBuffer      *SlabBuffer
	ChunkDataBuffer *SlabBuffer
	LightBuffer     *SlabBuffer

	zeroLightSlot Allocation

	materialBuffer uint32
	paletteBuffer  uint32
)

// InitBuffers creates the three slab allocators and reserves the all-zero
// lightmap at light slot 0 so that a lightmap pointer of 0 always reads as
// darkness.
func InitBuffers() error {
	FaceBuffer = NewSlabBuffer(BindingFaces, 8, 1<<20, 1<<24)
	ChunkDataBuffer = NewSlabBuffer(BindingChunkData, int32(unsafe.Sizeof(ChunkDescriptor{})), 1<<10, 1<<16)
	LightBuffer = NewSlabBuffer(BindingLight, LightCubeSize, 1<<10, 1<<16)

	var zeros [8 * 8 * 8]uint32
	if err := LightBuffer.Upload(unsafe.Pointer(&zeros[0]), 1, &zeroLightSlot); err != nil {
		return err
	}
	if zeroLightSlot.Start != 0 {
		panic("graphics: zero lightmap must occupy slot 0")
	}

	initStaticBuffer(&materialBuffer, BindingMaterials, 1<<16)
	initStaticBuffer(&paletteBuffer, BindingPalette, 256)
	return nil
}

// initStaticBuffer creates a zero-filled SSBO at a fixed binding. The
// material and palette tables are written once by whoever owns the block
// material data; the composition shader only reads them.
func initStaticBuffer(id *uint32, binding uint32, words int32) {
	data := make([]uint32, words)
	gl.GenBuffers(1, id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, *id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, int(words*4), gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, *id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

// UploadMaterials replaces a prefix of the material table.
func UploadMaterials(words []uint32) {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, materialBuffer)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(words)*4, gl.Ptr(words))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

// UploadPalette replaces a prefix of the palette table.
func UploadPalette(words []uint32) {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, paletteBuffer)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(words)*4, gl.Ptr(words))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

// ShutdownBuffers releases the slab allocators.
func ShutdownBuffers() {
	for _, b := range []*SlabBuffer{LightBuffer, ChunkDataBuffer, FaceBuffer} {
		if b != nil {
			b.Delete()
		}
	}
	FaceBuffer, ChunkDataBuffer, LightBuffer = nil, nil, nil
	zeroLightSlot = Allocation{}
	if materialBuffer != 0 {
		gl.DeleteBuffers(1, &materialBuffer)
		gl.DeleteBuffers(1, &paletteBuffer)
		materialBuffer, paletteBuffer = 0, 0
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

// BeginRender refreshes all slab bindings at the frame boundary.
func BeginRender() {
	FaceBuffer.BeginRender()
	ChunkDataBuffer.BeginRender()
	LightBuffer.BeginRender()
}

// EndRender closes the per-frame bracket.
func EndRender() {
	FaceBuffer.EndRender()
	ChunkDataBuffer.EndRender()
	LightBuffer.EndRender()
}
