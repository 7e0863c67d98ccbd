package vram

import (
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tilemem/memutils/metadata"
	"github.com/zeebo/xxh3"
)

//go:generate mockgen -source hardware.go -destination ./mocks/hardware.go -package mocks

// Hardware is the video memory backing an arena. Arenas never write to video memory themselves,
// they hand runs of blocks to the Hardware.
type Hardware[T any] interface {
	metadata.BlockWriter[T]
	// BlocksCount returns the number of blocks of video memory this Hardware exposes
	BlocksCount() int
}

// MemoryHardware is a Hardware implementation that keeps video memory in a plain slice. It tracks
// which blocks have ever been written, which is useful for simulations and tests.
//
// T must not contain pointers: Digest hashes the raw bytes of the backing slice.
type MemoryHardware[T any] struct {
	blocks  []T
	written *roaring.Bitmap
	writes  int
}

var _ Hardware[Tile] = &MemoryHardware[Tile]{}

func NewMemoryHardware[T any](blocksCount int) *MemoryHardware[T] {
	return &MemoryHardware[T]{
		blocks:  make([]T, blocksCount),
		written: roaring.New(),
	}
}

func (h *MemoryHardware[T]) checkRange(startBlock, count int) {
	if startBlock < 0 || count < 1 || startBlock+count > len(h.blocks) {
		panic(errors.AssertionFailedf("block range %d+%d is outside of video memory of %d blocks", startBlock, count, len(h.blocks)))
	}
}

func (h *MemoryHardware[T]) Commit(source []T, startBlock, count int) {
	if count != len(source) {
		panic(errors.AssertionFailedf("attempted to commit %d blocks from a source of %d blocks", count, len(source)))
	}
	h.checkRange(startBlock, count)

	copy(h.blocks[startBlock:startBlock+count], source)
	h.written.AddRange(uint64(startBlock), uint64(startBlock+count))
	h.writes++
}

// VRAM returns a writable view over a block range. The range is considered written from this point on.
func (h *MemoryHardware[T]) VRAM(startBlock, count int) []T {
	h.checkRange(startBlock, count)

	h.written.AddRange(uint64(startBlock), uint64(startBlock+count))
	return h.blocks[startBlock : startBlock+count : startBlock+count]
}

func (h *MemoryHardware[T]) BlocksCount() int { return len(h.blocks) }

// Blocks returns the full contents of video memory. It must not be modified.
func (h *MemoryHardware[T]) Blocks() []T { return h.blocks }

// Writes returns the number of Commit calls this Hardware has received
func (h *MemoryHardware[T]) Writes() int { return h.writes }

// Written returns true if the block has been committed to or exposed via VRAM at least once
func (h *MemoryHardware[T]) Written(block int) bool {
	if block < 0 || block >= len(h.blocks) {
		return false
	}
	return h.written.Contains(uint32(block))
}

// WrittenBlocks returns the number of blocks that have been written at least once
func (h *MemoryHardware[T]) WrittenBlocks() int {
	return int(h.written.GetCardinality())
}

// UntouchedBlocks returns the number of blocks that have never been written
func (h *MemoryHardware[T]) UntouchedBlocks() int {
	return len(h.blocks) - h.WrittenBlocks()
}

// Digest hashes the full contents of video memory
func (h *MemoryHardware[T]) Digest() uint64 {
	return h.DigestRange(0, len(h.blocks))
}

// DigestRange hashes the contents of a block range
func (h *MemoryHardware[T]) DigestRange(startBlock, count int) uint64 {
	h.checkRange(startBlock, count)

	var zero T
	blockSize := int(unsafe.Sizeof(zero))
	if blockSize == 0 {
		return xxh3.Hash(nil)
	}

	raw := unsafe.Slice((*byte)(unsafe.Pointer(&h.blocks[startBlock])), count*blockSize)
	return xxh3.Hash(raw)
}
