package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tilemem/memutils"
)

func (m *SlabBlockMetadata[T]) Update() bool {
	reclaimed := m.reclaim()
	if reclaimed {
		memutils.DebugValidate(m)
	}
	return reclaimed
}

// reclaim frees every item released since the last reclaim and merges it with free neighbours.
// It does not touch the delay-commit latch.
func (m *SlabBlockMetadata[T]) reclaim() bool {
	if m.toRemoveItems.len() == 0 {
		return false
	}

	// The loop only ever touches the free index, so the released ids can be walked in place
	for _, id := range m.toRemoveItems.ids {
		it := m.items.item(id)

		if it.data != nil {
			m.content.erase(it.key())
			it.data = nil
		}

		it.status = StatusFree
		it.usages = 0
		it.commit = false
		it.commitIfRecovered = false
		m.freeBlocks += it.blocksCount

		if nextID := m.items.next(id); nextID != m.items.end() {
			next := m.items.item(nextID)
			if next.status == StatusFree {
				m.freeItems.erase(nextID)
				it.blocksCount += next.blocksCount
				m.items.erase(nextID)
			}
		}

		if prevID := m.items.prev(id); prevID != itemListBeforeBegin {
			prev := m.items.item(prevID)
			if prev.status == StatusFree {
				m.freeItems.erase(prevID)
				it.startBlock = prev.startBlock
				it.blocksCount += prev.blocksCount
				m.items.erase(prevID)
			}
		}

		m.freeItems.insert(id)
	}

	m.toRemoveItems.clear()
	m.toRemoveBlocks = 0
	return true
}

func (m *SlabBlockMetadata[T]) Commit() bool {
	m.delayCommit = false

	if len(m.toCommitItems) == 0 {
		return false
	}

	for _, id := range m.toCommitItems {
		it := m.items.item(id)
		if it.status != StatusUsed {
			panic(errors.AssertionFailedf("item %d is pending commit but is not used: %s", id, it.status))
		}

		m.writer.Commit(it.data, it.startBlock, it.blocksCount)
		it.commit = false
	}

	m.toCommitItems = m.toCommitItems[:0]
	memutils.DebugValidate(m)
	return true
}
