package metadata

// AllocationRequestType is an enum that indicates which pool of blocks an allocation is carved
// from. It is returned in AllocationRequest from CreateAllocationRequest
type AllocationRequestType uint32

const (
	// AllocationRequestFree indicates that the allocation reuses a free item
	AllocationRequestFree AllocationRequestType = iota
	// AllocationRequestToRemove indicates that the allocation takes over an item whose last usage
	// was released this frame and that has not been reclaimed yet. The new contents can only be
	// written on the next commit.
	AllocationRequestToRemove
)

var allocationRequestMapping = map[AllocationRequestType]string{
	AllocationRequestFree:     "Free",
	AllocationRequestToRemove: "ToRemove",
}

func (t AllocationRequestType) String() string {
	return allocationRequestMapping[t]
}

// AllocationRequest is a type returned from SlabBlockMetadata.CreateAllocationRequest which indicates
// which item the metadata intends to split for a new allocation. It can be committed to the metadata
// with SlabBlockMetadata.Alloc as long as the metadata has not changed in between.
type AllocationRequest struct {
	// ItemID is the id of the candidate item
	ItemID int
	// StartBlock is the first block the new allocation will occupy, after padding
	StartBlock int
	// BlocksCount is the number of blocks requested
	BlocksCount int
	// Padding is the number of blocks skipped at the front of the candidate
	Padding int
	// Type identifies the pool the candidate was found in
	Type AllocationRequestType
}
