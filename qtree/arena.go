package qtree

// Arena is a stable-index pool for per-leaf payload bytes, modeled on the
// preallocated, index-addressed storage discipline of urkle.Builder's
// leafTable/nodeStore regions: callers hold an int32 slot index, never a
// pointer, so the balancing hash→out-list linkage and repartition's
// wire-record bookkeeping stay valid across slice growth.
type Arena struct {
	slots    [][]byte
	free     []int32
	allocs   int64
	frees    int64
	dataSize int
}

// NewArena returns an arena that allocates fixed-size (dataSize bytes)
// slots. With dataSize == 0 every slot Alloc hands out is backed by a
// zero-length slice.
func NewArena(dataSize int) *Arena {
	return &Arena{dataSize: dataSize}
}

// DataSize returns the fixed per-leaf payload size this arena was built
// with.
func (a *Arena) DataSize() int { return a.dataSize }

// Alloc reserves a new payload slot and returns its stable index.
func (a *Arena) Alloc() int32 {
	a.allocs++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx] = make([]byte, a.dataSize)
		return idx
	}
	idx := int32(len(a.slots))
	a.slots = append(a.slots, make([]byte, a.dataSize))
	return idx
}

// Get returns the bytes backing slot idx.
func (a *Arena) Get(idx int32) []byte {
	if idx < 0 || int(idx) >= len(a.slots) {
		return nil
	}
	return a.slots[idx]
}

// Free releases slot idx back to the arena for reuse.
func (a *Arena) Free(idx int32) {
	if idx < 0 || int(idx) >= len(a.slots) || a.slots[idx] == nil {
		return
	}
	a.frees++
	a.slots[idx] = nil
	a.free = append(a.free, idx)
}

// Balance returns allocs - frees; it must be zero when a forest is closed.
func (a *Arena) Balance() int64 { return a.allocs - a.frees }
