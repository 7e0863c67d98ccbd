package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tilemem/memutils"
)

// BlockWriter is the hardware side of an arena. The metadata never touches video memory directly:
// it asks the writer to copy source data into a block range, or to expose a block range for
// direct writes.
type BlockWriter[T any] interface {
	// Commit copies len(source) blocks from source into video memory, starting at startBlock.
	// count is always equal to len(source).
	Commit(source []T, startBlock, count int)
	// VRAM returns a writable view over count blocks of video memory, starting at startBlock
	VRAM(startBlock, count int) []T
}

// BlockMetadata represents a fixed region of video memory split into equally sized blocks. It manages
// runs of blocks within the region, deduplicating runs that are created from the same source data and
// deferring both the reuse of released runs and the writes to video memory until the consumer says it
// is safe to do so.
type BlockMetadata[T any] interface {
	// Init must be called before the BlockMetadata is used. It gives the implementation an opportunity
	// to ensure that metadata structures are prepared for allocations, and informs the implementation
	// of the number of blocks it will be managing via the size parameter.
	Init(size int)
	// Size retrieves the number of blocks that the metadata was initialized with
	Size() int

	// Validate performs internal consistency checks on the metadata. These checks may be expensive, depending
	// on the implementation. When the implementation is functioning correctly, it should not be possible
	// for this method to return an error, but this may assist in diagnosing issues with the implementation.
	Validate() error
	// ItemCount returns the number of runs of blocks that currently have at least one usage
	ItemCount() int
	// FreeRegionsCount returns the number of unique regions of free blocks. Adjacent free regions
	// are always merged, so this is also a measure of fragmentation.
	FreeRegionsCount() int
	// SumFreeSize returns the number of free blocks, not counting blocks waiting to be reclaimed
	SumFreeSize() int
	// SumToRemoveSize returns the number of blocks released this frame that the next Update will reclaim
	SumToRemoveSize() int
	// IsEmpty will return true if no run of blocks has a usage
	IsEmpty() bool

	// Find looks up a run of blocks previously created from data. If one exists, its usage count is
	// increased and its id is returned. A run released this frame is resurrected.
	Find(data []T) (int, bool)
	// Create returns the id of a run of len(data) blocks holding data. If data was already created,
	// the existing run is shared. Otherwise, new blocks are allocated and data is written to them,
	// immediately or on the next Commit. padding may be nil.
	//
	// The implementation must return an error wrapping memutils.ErrOutOfMemory if no suitable run
	// of blocks could be found.
	Create(data []T, padding PaddingFunc) (int, error)
	// Allocate returns the id of a run of count blocks that is not tied to any source data. The
	// consumer writes to it directly via VRAM.
	//
	// The implementation must return an error wrapping memutils.ErrOutOfMemory if no suitable run
	// of blocks could be found.
	Allocate(count int, padding PaddingFunc) (int, error)
	// CreateAllocationRequest locates an item that can hold count blocks without modifying the
	// metadata. The request can be applied with Alloc. toRemove selects whether items released
	// this frame are considered instead of free ones.
	CreateAllocationRequest(count int, padding PaddingFunc, toRemove bool) (AllocationRequest, bool)
	// Alloc applies an AllocationRequest, binding data (which may be nil) to the allocated blocks
	Alloc(request AllocationRequest, data []T, delayCommit bool) int

	// IncreaseUsages adds a usage to a live run of blocks
	IncreaseUsages(id int)
	// DecreaseUsages removes a usage from a live run of blocks. When the last usage is removed, the
	// blocks are queued for reclamation by the next Update.
	DecreaseUsages(id int)

	// StartBlock returns the first block of the run identified by id
	StartBlock(id int) int
	// BlocksCount returns the number of blocks of the run identified by id
	BlocksCount(id int) int
	// BlocksRef returns the source data bound to the run identified by id, if any
	BlocksRef(id int) ([]T, bool)
	// SetBlocksRef binds new source data of the same length to the run identified by id, and schedules
	// it to be written on the next Commit
	SetBlocksRef(id int, data []T)
	// ReloadBlocksRef schedules the source data already bound to the run identified by id to be written
	// again on the next Commit
	ReloadBlocksRef(id int)
	// VRAM returns a writable view over the blocks of a run that is not tied to source data
	VRAM(id int) ([]T, bool)

	// Update reclaims every run of blocks released since the last Update, merging it with free
	// neighbours. It returns true if anything was reclaimed.
	Update() bool
	// Commit writes all pending source data to video memory. It returns true if anything was written.
	Commit() bool

	// AddStatistics sums this metadata's basic statistics into the provided memutils.Statistics object
	AddStatistics(stats *memutils.Statistics)
	// AddDetailedStatistics sums this metadata's statistics into the provided memutils.DetailedStatistics
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// VisitAllRegions will call the provided callback once for each run of blocks, in block order
	VisitAllRegions(handleRegion func(id int, startBlock int, blocksCount int, status ItemStatus) error) error
	// PrintDetailedMap writes a description of every run of blocks into the provided json object
	PrintDetailedMap(json *jwriter.ObjectState)
}

// BlockMetadataBase is a simple struct that provides a few shared utilities for BlockMetadata
// implementations in the memutils module.
type BlockMetadataBase struct {
	size int
}

// Init prepares this structure for allocations and sizes the region in blocks based on the parameter size.
func (m *BlockMetadataBase) Init(size int) {
	m.size = size
}

// Size returns the size of the region in blocks
func (m *BlockMetadataBase) Size() int { return m.size }

// BlockJsonData populates a json object with summary information about the region
func (m *BlockMetadataBase) BlockJsonData(json *jwriter.ObjectState, freeBlocks, toRemoveBlocks, itemCount, freeRangeCount int) {
	json.Name("TotalBlocks").Int(m.Size())
	json.Name("FreeBlocks").Int(freeBlocks)
	json.Name("ToRemoveBlocks").Int(toRemoveBlocks)
	json.Name("Items").Int(itemCount)
	json.Name("FreeRanges").Int(freeRangeCount)
}
