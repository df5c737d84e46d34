package graphics

import "fmt"

// Allocation is a slot handle into a slab buffer: a contiguous run of
// elements. Len 0 means never allocated; Start is undefined then.
type Allocation struct {
	Start int32
	Len   int32
}

type span struct {
	start, length int32
}

// freeList tracks the free ranges of a slab buffer. Spans are kept sorted by
// start and coalesced on free. All methods are plain bookkeeping so the
// allocator can be exercised without a GL context.
type freeList struct {
	capacity int32
	spans    []span
}

func newFreeList(capacity int32) freeList {
	return freeList{capacity: capacity, spans: []span{{0, capacity}}}
}

// alloc carves a run of n elements out of the first span that fits.
func (f *freeList) alloc(n int32) (int32, bool) {
	for i := range f.spans {
		if f.spans[i].length >= n {
			start := f.spans[i].start
			f.spans[i].start += n
			f.spans[i].length -= n
			if f.spans[i].length == 0 {
				f.spans = append(f.spans[:i], f.spans[i+1:]...)
			}
			return start, true
		}
	}
	return 0, false
}

// free returns a run to the list, merging with adjacent spans. Freeing a run
// that overlaps a free span is a double free and panics.
func (f *freeList) free(start, length int32) {
	if length <= 0 {
		return
	}
	if start < 0 || start+length > f.capacity {
		panic(fmt.Sprintf("graphics: free of [%d,%d) outside capacity %d", start, start+length, f.capacity))
	}
	i := 0
	for i < len(f.spans) && f.spans[i].start < start {
		i++
	}
	if i > 0 && f.spans[i-1].start+f.spans[i-1].length > start {
		panic(fmt.Sprintf("graphics: double free of run [%d,%d)", start, start+length))
	}
	if i < len(f.spans) && start+length > f.spans[i].start {
		panic(fmt.Sprintf("graphics: double free of run [%d,%d)", start, start+length))
	}

	f.spans = append(f.spans, span{})
	copy(f.spans[i+1:], f.spans[i:])
	f.spans[i] = span{start, length}

	// Merge with successor, then predecessor.
	if i+1 < len(f.spans) && f.spans[i].start+f.spans[i].length == f.spans[i+1].start {
		f.spans[i].length += f.spans[i+1].length
		f.spans = append(f.spans[:i+1], f.spans[i+2:]...)
	}
	if i > 0 && f.spans[i-1].start+f.spans[i-1].length == f.spans[i].start {
		f.spans[i-1].length += f.spans[i].length
		f.spans = append(f.spans[:i], f.spans[i+1:]...)
	}
}

// grow extends the capacity, appending the new tail as free space.
func (f *freeList) grow(newCapacity int32) {
	if newCapacity <= f.capacity {
		return
	}
	old := f.capacity
	f.capacity = newCapacity
	f.free(old, newCapacity-old)
}

// largestFree returns the biggest contiguous free run.
func (f *freeList) largestFree() int32 {
	var best int32
	for _, s := range f.spans {
		if s.length > best {
			best = s.length
		}
	}
	return best
}
