//go:build wasip1

package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// MaxTotalAllocations is the maximum total memory the host may have the
// module allocate on its behalf.
const MaxTotalAllocations = 16 * 1024 * 1024 // 16 MB

// memoryManager keeps a reference to allocated slices to prevent the Go GC
// from collecting them, effectively "pinning" the memory until explicitly freed.
var memoryManager = struct {
	sync.Mutex
	ptrs           map[uint32][]byte // ptr -> slice reference
	totalAllocated int
}{
	ptrs: make(map[uint32][]byte),
}

// allocate reserves memory in the WASM linear memory and returns a pointer.
// The host uses it to place records the module reads, such as the extended
// error info. Panics if allocation would exceed MaxTotalAllocations.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > MaxTotalAllocations {
		panic(fmt.Sprintf("abi: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.totalAllocated, MaxTotalAllocations))
	}

	buf := make([]byte, size)
	ptr := Ptr(unsafe.Pointer(&buf[0]))

	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)

	return ptr
}

// deallocate frees memory by removing the reference from the memory manager.
// It accounts by the stored slice length, not the caller's size, and ignores
// untracked pointers.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, size uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	storedSlice, exists := memoryManager.ptrs[ptr]
	if !exists {
		return
	}

	delete(memoryManager.ptrs, ptr)
	memoryManager.totalAllocated -= len(storedSlice)
	if memoryManager.totalAllocated < 0 {
		memoryManager.totalAllocated = 0
	}
}

// Ptr converts a Go pointer into a wasm32 linear memory offset.
func Ptr(p unsafe.Pointer) uint32 {
	//nolint:gosec // G103: wasm32 addresses fit in 32 bits
	return uint32(uintptr(p))
}

// At converts a wasm32 linear memory offset back into a pointer.
func At(ptr uint32) unsafe.Pointer {
	if ptr == 0 {
		return nil
	}
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	return unsafe.Pointer(uintptr(ptr))
}

// PtrFromBytes allocates WASM memory, copies the given data into it,
// and returns the packed pointer and length. Free it with DeallocatePacked.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	copy(unsafe.Slice((*byte)(At(ptr)), size), data)
	return PackPtrLen(ptr, size)
}

// DeallocatePacked unpacks a uint64 pointer/length and deallocates the memory.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}
