package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tilemem/memutils"
	"golang.org/x/exp/slices"
)

// SlabBlockMetadata is a BlockMetadata implementation that keeps every run of blocks in a fixed-capacity
// intrusive list ordered by start block, so that the runs always tile the whole region. Free runs and
// runs waiting to be reclaimed are indexed by size, so allocation takes the smallest sufficient run.
// Runs created from source data are indexed by the address of that data and shared between callers.
type SlabBlockMetadata[T any] struct {
	BlockMetadataBase

	writer           BlockWriter[T]
	maxItems         int
	validBlocksCount func(count int) bool

	items         itemList[item[T]]
	content       contentIndex[T]
	freeItems     sizeIndex
	toRemoveItems sizeIndex
	toCommitItems []int

	freeBlocks     int
	toRemoveBlocks int
	usedItems      int
	delayCommit    bool
}

var _ BlockMetadata[uint16] = &SlabBlockMetadata[uint16]{}

// NewSlabBlockMetadata creates a new metadata that writes through writer and can track at most maxItems
// runs of blocks at once. validBlocksCount may be nil; if provided, Create and Allocate panic when asked
// for a count it rejects.
func NewSlabBlockMetadata[T any](writer BlockWriter[T], maxItems int, validBlocksCount func(count int) bool) *SlabBlockMetadata[T] {
	return &SlabBlockMetadata[T]{
		writer:           writer,
		maxItems:         maxItems,
		validBlocksCount: validBlocksCount,
	}
}

func (m *SlabBlockMetadata[T]) Init(size int) {
	if size < 1 {
		panic(errors.AssertionFailedf("invalid size: %d", size))
	}
	if m.maxItems < 1 {
		panic(errors.AssertionFailedf("invalid max items: %d", m.maxItems))
	}

	m.BlockMetadataBase.Init(size)

	blocksCount := func(id int) int {
		return m.items.item(id).blocksCount
	}

	m.items.init(m.maxItems)
	m.content = newContentIndex[T](m.maxItems)
	m.freeItems = newSizeIndex(m.maxItems, blocksCount)
	m.toRemoveItems = newSizeIndex(m.maxItems, blocksCount)
	m.toCommitItems = make([]int, 0, m.maxItems)

	id := m.items.pushFront(item[T]{
		startBlock:  0,
		blocksCount: size,
		status:      StatusFree,
	})
	m.freeItems.insert(id)

	m.freeBlocks = size
	m.toRemoveBlocks = 0
	m.usedItems = 0
	m.delayCommit = false
}

func (m *SlabBlockMetadata[T]) ItemCount() int        { return m.usedItems }
func (m *SlabBlockMetadata[T]) FreeRegionsCount() int { return m.freeItems.len() }
func (m *SlabBlockMetadata[T]) SumFreeSize() int      { return m.freeBlocks }
func (m *SlabBlockMetadata[T]) SumToRemoveSize() int  { return m.toRemoveBlocks }
func (m *SlabBlockMetadata[T]) IsEmpty() bool         { return m.usedItems == 0 }

// AvailableItemsCount returns the number of unused slots left in the item list
func (m *SlabBlockMetadata[T]) AvailableItemsCount() int { return m.items.available() }

// CommitDelayed reports whether writes to video memory are held back until the next Commit,
// which happens after a reclaim was forced during allocation
func (m *SlabBlockMetadata[T]) CommitDelayed() bool { return m.delayCommit }

// liveItem returns the item for id, which must not be free
func (m *SlabBlockMetadata[T]) liveItem(id int) *item[T] {
	if !m.items.live(id) {
		panic(errors.AssertionFailedf("invalid item id: %d", id))
	}

	it := m.items.item(id)
	if it.status == StatusFree {
		panic(errors.AssertionFailedf("item %d is free", id))
	}

	return it
}

// usedItem returns the item for id, which must have at least one usage
func (m *SlabBlockMetadata[T]) usedItem(id int) *item[T] {
	it := m.liveItem(id)
	if it.status != StatusUsed {
		panic(errors.AssertionFailedf("item %d is not used: %s", id, it.status))
	}

	return it
}

func (m *SlabBlockMetadata[T]) statusIndex(status ItemStatus) *sizeIndex {
	switch status {
	case StatusFree:
		return &m.freeItems
	case StatusToRemove:
		return &m.toRemoveItems
	default:
		panic(errors.AssertionFailedf("no size index for status: %s", status))
	}
}

func (m *SlabBlockMetadata[T]) checkBlocksCount(count int) {
	if count < 1 || (m.validBlocksCount != nil && !m.validBlocksCount(count)) {
		panic(errors.AssertionFailedf("invalid blocks count: %d", count))
	}
}

func (m *SlabBlockMetadata[T]) insertToCommitItem(id int, it *item[T]) {
	if !it.commit {
		it.commit = true
		m.toCommitItems = append(m.toCommitItems, id)
	}
}

func (m *SlabBlockMetadata[T]) eraseToCommitItem(id int, it *item[T]) {
	if it.commit {
		it.commit = false
		index := slices.Index(m.toCommitItems, id)
		m.toCommitItems = slices.Delete(m.toCommitItems, index, index+1)
	}
}

func (m *SlabBlockMetadata[T]) Find(data []T) (int, bool) {
	if len(data) == 0 {
		return -1, false
	}

	id, found := m.content.find(&data[0])
	if !found {
		return -1, false
	}

	it := m.items.item(id)
	if it.blocksCount != len(data) {
		panic(errors.AssertionFailedf("blocks count does not match item blocks count: %d - %d", len(data), it.blocksCount))
	}

	switch it.status {
	case StatusUsed:
		it.usages++
	case StatusToRemove:
		it.usages = 1
		m.toRemoveItems.erase(id)
		it.status = StatusUsed
		m.toRemoveBlocks -= it.blocksCount
		m.usedItems++

		if it.commitIfRecovered {
			it.commitIfRecovered = false
			m.insertToCommitItem(id, it)
		}
	default:
		panic(errors.AssertionFailedf("invalid item status: %s", it.status))
	}

	return id, true
}

func (m *SlabBlockMetadata[T]) Create(data []T, padding PaddingFunc) (int, error) {
	if id, found := m.Find(data); found {
		return id, nil
	}

	count := len(data)
	m.checkBlocksCount(count)

	id, err := m.allocate(data, count, padding)
	if err != nil {
		return -1, err
	}

	m.content.insert(&data[0], id)
	memutils.DebugValidate(m)
	return id, nil
}

func (m *SlabBlockMetadata[T]) Allocate(count int, padding PaddingFunc) (int, error) {
	m.checkBlocksCount(count)

	if m.delayCommit {
		return -1, errors.Wrapf(memutils.ErrOutOfMemory, "cannot allocate %d blocks until the next commit", count)
	}

	if count <= m.freeBlocks {
		request, found := m.CreateAllocationRequest(count, padding, false)
		if found {
			id := m.Alloc(request, nil, false)
			memutils.DebugValidate(m)
			return id, nil
		}
	}

	return -1, errors.Wrapf(memutils.ErrOutOfMemory, "no free range of %d blocks", count)
}

// allocate tries released items first, then free ones. If neither can hold count blocks but a reclaim
// could produce enough, it reclaims and tries once more with commits delayed.
func (m *SlabBlockMetadata[T]) allocate(data []T, count int, padding PaddingFunc) (int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if count <= m.toRemoveBlocks {
			request, found := m.CreateAllocationRequest(count, padding, true)
			if found {
				return m.Alloc(request, data, true), nil
			}
		}

		if count <= m.freeBlocks {
			request, found := m.CreateAllocationRequest(count, padding, false)
			if found {
				return m.Alloc(request, data, m.delayCommit), nil
			}
		}

		if attempt > 0 || m.toRemoveBlocks == 0 || count > m.freeBlocks+m.toRemoveBlocks {
			break
		}

		m.reclaim()
		m.delayCommit = true
	}

	return -1, errors.Wrapf(memutils.ErrOutOfMemory, "no range of %d blocks", count)
}

func (m *SlabBlockMetadata[T]) CreateAllocationRequest(count int, padding PaddingFunc, toRemove bool) (AllocationRequest, bool) {
	index := &m.freeItems
	requestType := AllocationRequestFree
	if toRemove {
		index = &m.toRemoveItems
		requestType = AllocationRequestToRemove
	}

	for pos := index.lowerBound(count); pos < index.len(); pos++ {
		id := index.at(pos)
		it := m.items.item(id)

		paddingBlocks := 0
		if padding != nil {
			paddingBlocks = padding(it.startBlock, count)
		}

		if count+paddingBlocks > it.blocksCount {
			continue
		}

		// Padding and remainder each take a slot
		neededSlots := 0
		if paddingBlocks > 0 {
			neededSlots++
		}
		if it.blocksCount > count+paddingBlocks {
			neededSlots++
		}
		if neededSlots > m.items.available() {
			continue
		}

		return AllocationRequest{
			ItemID:      id,
			StartBlock:  it.startBlock + paddingBlocks,
			BlocksCount: count,
			Padding:     paddingBlocks,
			Type:        requestType,
		}, true
	}

	return AllocationRequest{}, false
}

func (m *SlabBlockMetadata[T]) Alloc(request AllocationRequest, data []T, delayCommit bool) int {
	id := request.ItemID
	if !m.items.live(id) {
		panic(errors.AssertionFailedf("allocation request has an invalid item id: %d", id))
	}

	it := m.items.item(id)
	if it.startBlock+request.Padding != request.StartBlock || it.blocksCount < request.BlocksCount+request.Padding {
		panic(errors.AssertionFailedf("allocation request no longer matches item %d", id))
	}
	if data != nil && len(data) != request.BlocksCount {
		panic(errors.AssertionFailedf("blocks count does not match data blocks count: %d - %d", request.BlocksCount, len(data)))
	}

	status := it.status
	switch {
	case status == StatusFree && request.Type == AllocationRequestFree:
		m.freeItems.erase(id)
		m.freeBlocks -= request.BlocksCount
	case status == StatusToRemove && request.Type == AllocationRequestToRemove:
		m.toRemoveItems.erase(id)
		if it.data != nil {
			m.content.erase(it.key())
		}
		it.commitIfRecovered = false
		m.toRemoveBlocks -= request.BlocksCount
	default:
		panic(errors.AssertionFailedf("invalid item status for a %s request: %s", request.Type, status))
	}

	// Leftover blocks keep the status of the item they were cut from
	if request.Padding > 0 {
		paddingID := m.items.insert(id, item[T]{
			startBlock:  it.startBlock,
			blocksCount: request.Padding,
			status:      status,
		})
		it.startBlock += request.Padding
		it.blocksCount -= request.Padding
		m.statusIndex(status).insert(paddingID)
	}

	if remainder := it.blocksCount - request.BlocksCount; remainder > 0 {
		remainderID := m.items.insert(m.items.next(id), item[T]{
			startBlock:  it.startBlock + request.BlocksCount,
			blocksCount: remainder,
			status:      status,
		})
		it.blocksCount = request.BlocksCount
		m.statusIndex(status).insert(remainderID)
	}

	it.data = data
	it.usages = 1
	it.status = StatusUsed
	it.commit = false
	m.usedItems++

	if data != nil {
		if delayCommit {
			m.insertToCommitItem(id, it)
		} else {
			m.writer.Commit(data, it.startBlock, it.blocksCount)
		}
	}

	return id
}

func (m *SlabBlockMetadata[T]) IncreaseUsages(id int) {
	m.usedItem(id).usages++
}

func (m *SlabBlockMetadata[T]) DecreaseUsages(id int) {
	it := m.usedItem(id)
	if it.usages < 1 {
		panic(errors.AssertionFailedf("item %d has no usages", id))
	}

	it.usages--
	if it.usages == 0 {
		it.status = StatusToRemove
		it.commitIfRecovered = it.commit
		m.eraseToCommitItem(id, it)
		m.toRemoveItems.insert(id)
		m.toRemoveBlocks += it.blocksCount
		m.usedItems--
	}

	memutils.DebugValidate(m)
}

// Usages returns the number of outstanding usages of the run identified by id
func (m *SlabBlockMetadata[T]) Usages(id int) int {
	return m.liveItem(id).usages
}

// Status returns the lifecycle state of the item identified by id
func (m *SlabBlockMetadata[T]) Status(id int) ItemStatus {
	if !m.items.live(id) {
		panic(errors.AssertionFailedf("invalid item id: %d", id))
	}
	return m.items.item(id).status
}

func (m *SlabBlockMetadata[T]) StartBlock(id int) int {
	return m.liveItem(id).startBlock
}

func (m *SlabBlockMetadata[T]) BlocksCount(id int) int {
	return m.liveItem(id).blocksCount
}

func (m *SlabBlockMetadata[T]) BlocksRef(id int) ([]T, bool) {
	it := m.liveItem(id)
	if it.data == nil {
		return nil, false
	}
	return it.data, true
}

func (m *SlabBlockMetadata[T]) SetBlocksRef(id int, data []T) {
	it := m.usedItem(id)
	if len(data) != it.blocksCount {
		panic(errors.AssertionFailedf("blocks count does not match item blocks count: %d - %d", len(data), it.blocksCount))
	}
	if it.data == nil {
		panic(errors.AssertionFailedf("item %d has no data", id))
	}

	oldKey := it.key()
	newKey := &data[0]
	if oldKey == newKey {
		return
	}
	if _, found := m.content.find(newKey); found {
		panic(errors.AssertionFailedf("multiple copies of the same data are not supported"))
	}

	m.content.erase(oldKey)
	m.content.insert(newKey, id)
	it.data = data
	m.insertToCommitItem(id, it)
}

func (m *SlabBlockMetadata[T]) ReloadBlocksRef(id int) {
	it := m.usedItem(id)
	if it.data == nil {
		panic(errors.AssertionFailedf("item %d has no data", id))
	}

	m.insertToCommitItem(id, it)
}

func (m *SlabBlockMetadata[T]) VRAM(id int) ([]T, bool) {
	it := m.liveItem(id)
	if it.data != nil {
		return nil, false
	}

	return m.writer.VRAM(it.startBlock, it.blocksCount), true
}
