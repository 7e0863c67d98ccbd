package metadata_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tilemem/memutils"
	"github.com/vkngwrapper/tilemem/memutils/metadata"
)

type region struct {
	StartBlock  int
	BlocksCount int
	Status      metadata.ItemStatus
}

func regions(t *testing.T, md *metadata.SlabBlockMetadata[uint16]) []region {
	var result []region
	err := md.VisitAllRegions(func(id int, startBlock int, blocksCount int, status metadata.ItemStatus) error {
		result = append(result, region{StartBlock: startBlock, BlocksCount: blocksCount, Status: status})
		return nil
	})
	require.NoError(t, err)
	return result
}

func newSlab(size, maxItems int) (*metadata.SlabBlockMetadata[uint16], *recordingWriter[uint16]) {
	writer := newRecordingWriter[uint16](size)
	md := metadata.NewSlabBlockMetadata[uint16](writer, maxItems, nil)
	md.Init(size)
	return md, writer
}

func TestSlabInit(t *testing.T) {
	md, _ := newSlab(8, 16)

	require.NoError(t, md.Validate())
	require.Equal(t, 8, md.Size())
	require.Equal(t, 8, md.SumFreeSize())
	require.Equal(t, 1, md.FreeRegionsCount())
	require.True(t, md.IsEmpty())
	require.Equal(t, []region{{0, 8, metadata.StatusFree}}, regions(t, md))
}

func TestSlabAllocateSplits(t *testing.T) {
	md, _ := newSlab(8, 16)

	a, err := md.Allocate(3, nil)
	require.NoError(t, err)
	require.Equal(t, 0, md.StartBlock(a))
	require.Equal(t, 3, md.BlocksCount(a))
	require.Equal(t, []region{
		{0, 3, metadata.StatusUsed},
		{3, 5, metadata.StatusFree},
	}, regions(t, md))
	require.NoError(t, md.Validate())
}

func TestSlabAllocateExactFitThenFull(t *testing.T) {
	md, _ := newSlab(8, 16)

	_, err := md.Allocate(3, nil)
	require.NoError(t, err)

	b, err := md.Allocate(5, nil)
	require.NoError(t, err)
	require.Equal(t, 3, md.StartBlock(b))
	require.Equal(t, 0, md.SumFreeSize())
	require.Equal(t, 0, md.FreeRegionsCount())

	_, err = md.Allocate(1, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.NoError(t, md.Validate())
}

func TestSlabCreateDeduplicates(t *testing.T) {
	md, writer := newSlab(8, 16)
	data := []uint16{1, 2}

	first, err := md.Create(data, nil)
	require.NoError(t, err)

	second, err := md.Create(data, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 2, md.Usages(first))
	require.Equal(t, 1, md.ItemCount())
	require.Len(t, writer.commits, 1)
	require.Equal(t, []uint16{1, 2}, writer.vram[0:2])

	ref, ok := md.BlocksRef(first)
	require.True(t, ok)
	require.Equal(t, &data[0], &ref[0])

	id, found := md.Find(data)
	require.True(t, found)
	require.Equal(t, first, id)
	require.Equal(t, 3, md.Usages(first))

	_, found = md.Find([]uint16{1, 2})
	require.False(t, found)
	require.NoError(t, md.Validate())
}

func TestSlabFindCountMismatchPanics(t *testing.T) {
	md, _ := newSlab(8, 16)
	data := []uint16{1, 2, 3, 4}

	_, err := md.Create(data[:2], nil)
	require.NoError(t, err)

	require.Panics(t, func() {
		md.Find(data)
	})
}

func TestSlabReuseReleasedItem(t *testing.T) {
	md, writer := newSlab(8, 16)

	a, err := md.Create([]uint16{1, 1}, nil)
	require.NoError(t, err)
	_, err = md.Allocate(6, nil)
	require.NoError(t, err)

	startA := md.StartBlock(a)
	md.DecreaseUsages(a)
	require.Equal(t, metadata.StatusToRemove, md.Status(a))
	require.Equal(t, 2, md.SumToRemoveSize())

	replacement := []uint16{7, 7}
	b, err := md.Create(replacement, nil)
	require.NoError(t, err)
	require.Equal(t, startA, md.StartBlock(b))
	require.Equal(t, 0, md.SumToRemoveSize())

	// The old contents may still be on screen, so the write waits for the commit
	require.Len(t, writer.commits, 1)
	require.True(t, md.Commit())
	require.Len(t, writer.commits, 2)
	require.Equal(t, []uint16{7, 7}, writer.vram[startA:startA+2])
	require.NoError(t, md.Validate())
}

func TestSlabUpdateMergesAdjacentReleases(t *testing.T) {
	md, _ := newSlab(8, 16)

	a, err := md.Allocate(2, nil)
	require.NoError(t, err)
	b, err := md.Allocate(3, nil)
	require.NoError(t, err)
	_, err = md.Allocate(3, nil)
	require.NoError(t, err)

	md.DecreaseUsages(a)
	md.DecreaseUsages(b)
	require.Equal(t, []region{
		{0, 2, metadata.StatusToRemove},
		{2, 3, metadata.StatusToRemove},
		{5, 3, metadata.StatusUsed},
	}, regions(t, md))

	require.True(t, md.Update())
	require.Equal(t, []region{
		{0, 5, metadata.StatusFree},
		{5, 3, metadata.StatusUsed},
	}, regions(t, md))
	require.Equal(t, 5, md.SumFreeSize())
	require.Equal(t, 1, md.FreeRegionsCount())
	require.False(t, md.Update())
	require.NoError(t, md.Validate())
}

func TestSlabAllocateWaitsForUpdate(t *testing.T) {
	md, _ := newSlab(8, 16)

	ids := make([]int, 4)
	for i := range ids {
		id, err := md.Allocate(2, nil)
		require.NoError(t, err)
		ids[i] = id
	}

	md.DecreaseUsages(ids[0])
	md.DecreaseUsages(ids[1])

	_, err := md.Allocate(4, nil)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	require.True(t, md.Update())

	id, err := md.Allocate(4, nil)
	require.NoError(t, err)
	require.Equal(t, 0, md.StartBlock(id))
	require.Equal(t, 4, md.BlocksCount(id))
	require.NoError(t, md.Validate())
}

func TestSlabCreateForcesReclaim(t *testing.T) {
	md, writer := newSlab(8, 16)

	a, err := md.Allocate(2, nil)
	require.NoError(t, err)
	b, err := md.Allocate(2, nil)
	require.NoError(t, err)
	_, err = md.Allocate(2, nil)
	require.NoError(t, err)

	md.DecreaseUsages(a)
	md.DecreaseUsages(b)

	data := []uint16{1, 2, 3, 4}
	id, err := md.Create(data, nil)
	require.NoError(t, err)
	require.Equal(t, 0, md.StartBlock(id))
	require.True(t, md.CommitDelayed())
	require.Empty(t, writer.commits)

	// Scratch allocations are refused until the pending writes land
	_, err = md.Allocate(1, nil)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	require.True(t, md.Commit())
	require.False(t, md.CommitDelayed())
	require.Equal(t, []commitCall{{StartBlock: 0, Count: 4}}, writer.commits)

	require.False(t, md.Commit())
	require.Len(t, writer.commits, 1)

	scratch, err := md.Allocate(1, nil)
	require.NoError(t, err)
	require.Equal(t, 6, md.StartBlock(scratch))
	require.NoError(t, md.Validate())
}

func TestSlabCreateOutOfMemory(t *testing.T) {
	md, _ := newSlab(8, 16)

	_, err := md.Allocate(6, nil)
	require.NoError(t, err)

	_, err = md.Create([]uint16{1, 2, 3}, nil)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))
	require.False(t, md.CommitDelayed())
	require.NoError(t, md.Validate())
}

func TestSlabResurrectKeepsPendingCommit(t *testing.T) {
	md, writer := newSlab(8, 16)
	data := []uint16{5, 6}

	id, err := md.Create(data, nil)
	require.NoError(t, err)
	require.Len(t, writer.commits, 1)

	data[0] = 9
	md.ReloadBlocksRef(id)
	md.DecreaseUsages(id)

	require.False(t, md.Commit())

	found, ok := md.Find(data)
	require.True(t, ok)
	require.Equal(t, id, found)
	require.Equal(t, metadata.StatusUsed, md.Status(id))
	require.Equal(t, 1, md.Usages(id))

	require.True(t, md.Commit())
	require.Len(t, writer.commits, 2)
	require.Equal(t, []uint16{9, 6}, writer.vram[0:2])
	require.NoError(t, md.Validate())
}

func TestSlabReleasedDataIsForgottenOnUpdate(t *testing.T) {
	md, _ := newSlab(8, 16)
	data := []uint16{5, 6}

	id, err := md.Create(data, nil)
	require.NoError(t, err)
	md.DecreaseUsages(id)
	require.True(t, md.Update())

	_, found := md.Find(data)
	require.False(t, found)

	require.Panics(t, func() {
		md.StartBlock(id)
	})
}

func TestSlabDecreaseUsagesPastZeroPanics(t *testing.T) {
	md, _ := newSlab(8, 16)

	id, err := md.Allocate(1, nil)
	require.NoError(t, err)
	md.IncreaseUsages(id)
	md.DecreaseUsages(id)
	md.DecreaseUsages(id)

	require.Panics(t, func() {
		md.DecreaseUsages(id)
	})
}

func TestSlabInvalidBlocksCountPanics(t *testing.T) {
	writer := newRecordingWriter[uint16](16)
	md := metadata.NewSlabBlockMetadata[uint16](writer, 16, memutils.IsPow2[int])
	md.Init(16)

	require.Panics(t, func() {
		_, _ = md.Create([]uint16{1, 2, 3}, nil)
	})
	require.Panics(t, func() {
		_, _ = md.Allocate(0, nil)
	})

	_, err := md.Create([]uint16{1, 2, 3, 4}, nil)
	require.NoError(t, err)
}

func TestSlabSetBlocksRef(t *testing.T) {
	md, writer := newSlab(8, 16)
	oldData := []uint16{1, 2}
	newData := []uint16{3, 4}
	otherData := []uint16{5, 6}

	id, err := md.Create(oldData, nil)
	require.NoError(t, err)
	_, err = md.Create(otherData, nil)
	require.NoError(t, err)

	md.SetBlocksRef(id, oldData)
	require.False(t, md.Commit())

	md.SetBlocksRef(id, newData)
	_, found := md.Find(oldData)
	require.False(t, found)

	found2, ok := md.Find(newData)
	require.True(t, ok)
	require.Equal(t, id, found2)

	require.True(t, md.Commit())
	require.Equal(t, []uint16{3, 4}, writer.vram[0:2])

	require.Panics(t, func() {
		md.SetBlocksRef(id, otherData)
	})
	require.Panics(t, func() {
		md.SetBlocksRef(id, []uint16{1})
	})
}

func TestSlabScratchVRAM(t *testing.T) {
	md, writer := newSlab(8, 16)

	data, err := md.Create([]uint16{1}, nil)
	require.NoError(t, err)
	scratch, err := md.Allocate(2, nil)
	require.NoError(t, err)

	_, ok := md.VRAM(data)
	require.False(t, ok)

	view, ok := md.VRAM(scratch)
	require.True(t, ok)
	require.Len(t, view, 2)
	view[1] = 42
	require.Equal(t, uint16(42), writer.vram[2])

	_, ok = md.BlocksRef(scratch)
	require.False(t, ok)

	require.Panics(t, func() {
		md.ReloadBlocksRef(scratch)
	})
}

func TestSlabAlignedPadding(t *testing.T) {
	md, _ := newSlab(32, 16)

	_, err := md.Allocate(3, nil)
	require.NoError(t, err)

	id, err := md.Create([]uint16{1, 2, 3, 4}, metadata.AlignedPadding(8))
	require.NoError(t, err)
	require.Equal(t, 8, md.StartBlock(id))
	require.Equal(t, []region{
		{0, 3, metadata.StatusUsed},
		{3, 5, metadata.StatusFree},
		{8, 4, metadata.StatusUsed},
		{12, 20, metadata.StatusFree},
	}, regions(t, md))
	require.NoError(t, md.Validate())

	// The padding stays available to allocations without alignment requirements
	small, err := md.Allocate(5, nil)
	require.NoError(t, err)
	require.Equal(t, 3, md.StartBlock(small))
	require.NoError(t, md.Validate())
}

func TestSlabSplitLeftoversKeepCandidateStatus(t *testing.T) {
	md, _ := newSlab(16, 16)

	_, err := md.Allocate(1, nil)
	require.NoError(t, err)
	released, err := md.Allocate(8, nil)
	require.NoError(t, err)
	_, err = md.Allocate(7, nil)
	require.NoError(t, err)
	md.DecreaseUsages(released)

	id, err := md.Create([]uint16{1, 2}, metadata.AlignedPadding(4))
	require.NoError(t, err)
	require.Equal(t, 4, md.StartBlock(id))
	require.Equal(t, []region{
		{0, 1, metadata.StatusUsed},
		{1, 3, metadata.StatusToRemove},
		{4, 2, metadata.StatusUsed},
		{6, 3, metadata.StatusToRemove},
		{9, 7, metadata.StatusUsed},
	}, regions(t, md))
	require.NoError(t, md.Validate())

	// Both leftovers become free ranges separated by the new item
	require.True(t, md.Update())
	require.Equal(t, []region{
		{0, 1, metadata.StatusUsed},
		{1, 3, metadata.StatusFree},
		{4, 2, metadata.StatusUsed},
		{6, 3, metadata.StatusFree},
		{9, 7, metadata.StatusUsed},
	}, regions(t, md))
	require.Equal(t, 2, md.FreeRegionsCount())
	require.NoError(t, md.Validate())

	_, err = md.Allocate(2, nil)
	require.NoError(t, err)
	require.Equal(t, 2, md.FreeRegionsCount())
	require.Equal(t, 4, md.SumFreeSize())
	require.NoError(t, md.Validate())
}

func TestSlabPaddingSkipsUnalignableCandidates(t *testing.T) {
	md, _ := newSlab(16, 16)

	_, err := md.Allocate(1, nil)
	require.NoError(t, err)
	gap, err := md.Allocate(6, nil)
	require.NoError(t, err)
	_, err = md.Allocate(1, nil)
	require.NoError(t, err)
	md.DecreaseUsages(gap)
	require.True(t, md.Update())

	// [1,7) is the smallest free range but cannot hold 4 blocks starting on a multiple of 8
	id, err := md.Allocate(4, metadata.AlignedPadding(8))
	require.NoError(t, err)
	require.Equal(t, 8, md.StartBlock(id))
	require.NoError(t, md.Validate())
}

func TestSlabItemSlotsExhausted(t *testing.T) {
	md, _ := newSlab(8, 2)

	_, err := md.Allocate(1, nil)
	require.NoError(t, err)
	require.Equal(t, 0, md.AvailableItemsCount())

	// Splitting the remaining range would need another slot
	_, err = md.Allocate(1, nil)
	require.True(t, errors.Is(err, memutils.ErrOutOfMemory))

	id, err := md.Allocate(7, nil)
	require.NoError(t, err)
	require.Equal(t, 1, md.StartBlock(id))
	require.NoError(t, md.Validate())
}

func TestSlabAllocationRequest(t *testing.T) {
	md, _ := newSlab(8, 16)

	request, found := md.CreateAllocationRequest(3, nil, false)
	require.True(t, found)
	require.Equal(t, metadata.AllocationRequestFree, request.Type)
	require.Equal(t, "Free", request.Type.String())
	require.Equal(t, 0, request.StartBlock)

	_, found = md.CreateAllocationRequest(3, nil, true)
	require.False(t, found)

	id := md.Alloc(request, nil, false)
	require.Equal(t, 3, md.BlocksCount(id))

	require.Panics(t, func() {
		md.Alloc(request, nil, false)
	})
}

func TestSlabStatistics(t *testing.T) {
	md, _ := newSlab(8, 16)

	a, err := md.Allocate(2, nil)
	require.NoError(t, err)
	_, err = md.Allocate(4, nil)
	require.NoError(t, err)
	md.DecreaseUsages(a)

	var stats memutils.DetailedStatistics
	stats.Clear()
	md.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			ArenaCount:  1,
			ItemCount:   1,
			ArenaBlocks: 8,
			ItemBlocks:  4,
		},
		FreeRangeCount:    1,
		PendingRangeCount: 1,
		PendingBlocks:     2,
		ItemSizeMin:       4,
		ItemSizeMax:       4,
		FreeRangeSizeMin:  2,
		FreeRangeSizeMax:  2,
	}, stats)

	var basic memutils.Statistics
	md.AddStatistics(&basic)
	require.Equal(t, memutils.Statistics{
		ArenaCount:  1,
		ItemCount:   1,
		ArenaBlocks: 8,
		ItemBlocks:  4,
	}, basic)

	md.Update()
	stats.Clear()
	md.AddDetailedStatistics(&stats)
	require.Equal(t, 0, stats.PendingRangeCount)
	require.Equal(t, 2, stats.FreeRangeCount)
}

func TestSlabPrintDetailedMap(t *testing.T) {
	md, _ := newSlab(8, 16)

	_, err := md.Create([]uint16{1, 2, 3}, nil)
	require.NoError(t, err)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	md.PrintDetailedMap(&obj)
	obj.End()

	require.NoError(t, writer.Error())
	require.JSONEq(t, `{
		"TotalBlocks": 8,
		"FreeBlocks": 5,
		"ToRemoveBlocks": 0,
		"Items": 1,
		"FreeRanges": 1,
		"Regions": [
			{"Id": 1, "StartBlock": 0, "BlocksCount": 3, "Status": "Used", "Usages": 1, "HasData": true, "Commit": false},
			{"Id": 2, "StartBlock": 3, "BlocksCount": 5, "Status": "Free"}
		]
	}`, string(writer.Bytes()))
}
