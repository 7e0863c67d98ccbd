package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tilemem/memutils"
)

func (m *SlabBlockMetadata[T]) Validate() error {
	nextStart := 0
	itemCount := 0
	usedCount := 0
	dataCount := 0
	commitCount := 0
	freeCount := 0
	toRemoveCount := 0
	calculatedFree := 0
	calculatedToRemove := 0
	prevStatus := StatusUsed

	for id := m.items.begin(); id != m.items.end(); id = m.items.next(id) {
		it := m.items.item(id)
		itemCount++

		if m.items.prev(m.items.next(id)) != id {
			return errors.Errorf("item %d lists item %d as its next item, but the reverse reference is broken", id, m.items.next(id))
		}
		if it.startBlock != nextStart {
			return errors.Errorf("item %d starts at block %d, but the previous item ends at block %d", id, it.startBlock, nextStart)
		}
		if it.blocksCount < 1 {
			return errors.Errorf("item %d has an invalid blocks count: %d", id, it.blocksCount)
		}
		nextStart += it.blocksCount

		if it.data != nil {
			dataCount++
			if len(it.data) != it.blocksCount {
				return errors.Errorf("item %d holds %d blocks but its data holds %d", id, it.blocksCount, len(it.data))
			}
			mappedID, found := m.content.find(it.key())
			if !found || mappedID != id {
				return errors.Errorf("item %d has data that is not mapped to it", id)
			}
		}

		if it.commit {
			commitCount++
		}

		switch it.status {
		case StatusFree:
			freeCount++
			calculatedFree += it.blocksCount
			if prevStatus == StatusFree {
				return errors.Errorf("item %d is free and follows another free item", id)
			}
			if it.usages != 0 || it.data != nil || it.commit || it.commitIfRecovered {
				return errors.Errorf("free item %d still holds usages, data or pending commits", id)
			}
			if !m.freeItems.contains(id) {
				return errors.Errorf("free item %d is not in the free index", id)
			}
		case StatusUsed:
			usedCount++
			if it.usages < 1 {
				return errors.Errorf("used item %d has no usages", id)
			}
			if it.commitIfRecovered {
				return errors.Errorf("used item %d is still flagged for commit on recovery", id)
			}
		case StatusToRemove:
			toRemoveCount++
			calculatedToRemove += it.blocksCount
			if it.usages != 0 || it.commit {
				return errors.Errorf("item %d is waiting for removal but still holds usages or pending commits", id)
			}
			if !m.toRemoveItems.contains(id) {
				return errors.Errorf("item %d is waiting for removal but is not in the to remove index", id)
			}
		default:
			return errors.Errorf("item %d has an invalid status: %d", id, it.status)
		}

		prevStatus = it.status
	}

	if nextStart != m.Size() {
		return errors.Errorf("the full size of the metadata is %d, but the items only added up to %d", m.Size(), nextStart)
	}
	if itemCount != m.items.size() {
		return errors.Errorf("the item list holds %d items, but only %d are linked", m.items.size(), itemCount)
	}
	if calculatedFree != m.freeBlocks {
		return errors.Errorf("the free size of the metadata is %d, but the free items only added up to %d", m.freeBlocks, calculatedFree)
	}
	if calculatedToRemove != m.toRemoveBlocks {
		return errors.Errorf("the to remove size of the metadata is %d, but the to remove items only added up to %d", m.toRemoveBlocks, calculatedToRemove)
	}
	if usedCount != m.usedItems {
		return errors.Errorf("the used item count of the metadata is %d, but there were %d used items", m.usedItems, usedCount)
	}
	if freeCount != m.freeItems.len() {
		return errors.Errorf("the free index holds %d items, but there were %d free items", m.freeItems.len(), freeCount)
	}
	if toRemoveCount != m.toRemoveItems.len() {
		return errors.Errorf("the to remove index holds %d items, but there were %d items waiting for removal", m.toRemoveItems.len(), toRemoveCount)
	}
	if dataCount != m.content.count() {
		return errors.Errorf("the content index holds %d entries, but %d items have data", m.content.count(), dataCount)
	}
	if commitCount != len(m.toCommitItems) {
		return errors.Errorf("%d items are flagged for commit, but %d are pending", commitCount, len(m.toCommitItems))
	}

	for _, index := range []*sizeIndex{&m.freeItems, &m.toRemoveItems} {
		for pos := 1; pos < index.len(); pos++ {
			if index.blocksCount(index.at(pos-1)) > index.blocksCount(index.at(pos)) {
				return errors.Errorf("size index is not sorted at position %d", pos)
			}
		}
	}

	return nil
}

func (m *SlabBlockMetadata[T]) AddStatistics(stats *memutils.Statistics) {
	stats.ArenaCount++
	stats.ArenaBlocks += m.Size()
	stats.ItemCount += m.usedItems
	stats.ItemBlocks += m.Size() - m.freeBlocks - m.toRemoveBlocks
}

func (m *SlabBlockMetadata[T]) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.ArenaCount++
	stats.ArenaBlocks += m.Size()

	for id := m.items.begin(); id != m.items.end(); id = m.items.next(id) {
		it := m.items.item(id)

		switch it.status {
		case StatusUsed:
			stats.AddItem(it.blocksCount)
		case StatusToRemove:
			stats.AddPendingRange(it.blocksCount)
		default:
			stats.AddFreeRange(it.blocksCount)
		}
	}
}

func (m *SlabBlockMetadata[T]) VisitAllRegions(handleRegion func(id int, startBlock int, blocksCount int, status ItemStatus) error) error {
	for id := m.items.begin(); id != m.items.end(); id = m.items.next(id) {
		it := m.items.item(id)

		err := handleRegion(id, it.startBlock, it.blocksCount, it.status)
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *SlabBlockMetadata[T]) PrintDetailedMap(json *jwriter.ObjectState) {
	m.BlockJsonData(json, m.freeBlocks, m.toRemoveBlocks, m.usedItems, m.freeItems.len())

	arrayState := json.Name("Regions").Array()
	defer arrayState.End()

	for id := m.items.begin(); id != m.items.end(); id = m.items.next(id) {
		it := m.items.item(id)

		obj := arrayState.Object()
		obj.Name("Id").Int(id)
		obj.Name("StartBlock").Int(it.startBlock)
		obj.Name("BlocksCount").Int(it.blocksCount)
		obj.Name("Status").String(it.status.String())
		if it.status != StatusFree {
			obj.Name("Usages").Int(it.usages)
			obj.Name("HasData").Bool(it.data != nil)
			obj.Name("Commit").Bool(it.commit)
		}
		obj.End()
	}
}
