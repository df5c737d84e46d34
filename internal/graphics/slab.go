package graphics

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// SlabBuffer is a typed shader-storage buffer with slot-based sub-allocation.
// Three instances back the chunk renderer: face records, chunk descriptors
// and light cubes. Uploads happen on the render thread only; the free-list
// bookkeeping itself is thread-agnostic.
type SlabBuffer struct {
	binding  uint32
	elemSize int32
	buffer   uint32
	capacity int32
	maxCap   int32
	free     freeList
	rebind   bool
}

// NewSlabBuffer creates the GL buffer with the given capacity in elements
// and binds it at the fixed SSBO binding index.
func NewSlabBuffer(binding uint32, elemSize, capacity, maxCapacity int32) *SlabBuffer {
	b := &SlabBuffer{
		binding:  binding,
		elemSize: elemSize,
		capacity: capacity,
		maxCap:   maxCapacity,
		free:     newFreeList(capacity),
	}
	gl.GenBuffers(1, &b.buffer)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.buffer)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, int(elemSize*capacity), nil, gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, b.buffer)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return b
}

// Upload writes count elements from ptr into the slot described by alloc,
// reallocating when the run is too small. The allocation handle is rewritten
// in place. Fails only when the buffer cannot grow any further.
func (b *SlabBuffer) Upload(ptr unsafe.Pointer, count int32, alloc *Allocation) error {
	if count > alloc.Len {
		if alloc.Len > 0 {
			b.free.free(alloc.Start, alloc.Len)
			alloc.Len = 0
		}
		start, ok := b.free.alloc(count)
		for !ok {
			if err := b.growBuffer(); err != nil {
				return err
			}
			start, ok = b.free.alloc(count)
		}
		alloc.Start = start
		alloc.Len = count
	}
	if count == 0 {
		return nil
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.buffer)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, int(alloc.Start*b.elemSize), int(count*b.elemSize), ptr)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return nil
}

// Free returns an allocation to the free list and zeroes the handle.
func (b *SlabBuffer) Free(alloc *Allocation) {
	if alloc.Len == 0 {
		return
	}
	b.free.free(alloc.Start, alloc.Len)
	alloc.Start = 0
	alloc.Len = 0
}

// growBuffer doubles the capacity and copies the live contents into a fresh
// GL buffer. Bindings are refreshed at the next BeginRender.
func (b *SlabBuffer) growBuffer() error {
	if b.capacity >= b.maxCap {
		return fmt.Errorf("graphics: slab at binding %d is full (%d elements)", b.binding, b.capacity)
	}
	newCap := min(b.capacity*2, b.maxCap)

	var newBuf uint32
	gl.GenBuffers(1, &newBuf)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, newBuf)
	gl.BufferData(gl.COPY_WRITE_BUFFER, int(b.elemSize*newCap), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.COPY_READ_BUFFER, b.buffer)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, int(b.elemSize*b.capacity))
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	gl.DeleteBuffers(1, &b.buffer)

	b.buffer = newBuf
	b.free.grow(newCap)
	log.Printf("graphics: slab at binding %d grew to %d elements", b.binding, newCap)
	b.capacity = newCap
	b.rebind = true
	return nil
}

// BeginRender refreshes the SSBO binding if the underlying buffer was
// replaced since the last frame.
func (b *SlabBuffer) BeginRender() {
	if b.rebind {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, b.binding, b.buffer)
		b.rebind = false
	}
}

// EndRender brackets per-frame use. Kept for symmetry with BeginRender;
// reallocation during a frame is forbidden, so there is nothing to undo.
func (b *SlabBuffer) EndRender() {}

// Delete releases the GL buffer.
func (b *SlabBuffer) Delete() {
	if b.buffer != 0 {
		gl.DeleteBuffers(1, &b.buffer)
		b.buffer = 0
	}
}
