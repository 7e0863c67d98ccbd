package memutils

import "math"

// Statistics holds the basic numbers for one or more arenas. All sizes are counted in blocks.
type Statistics struct {
	ArenaCount  int
	ItemCount   int
	ArenaBlocks int
	ItemBlocks  int
}

func (s *Statistics) Clear() {
	s.ArenaCount = 0
	s.ItemCount = 0
	s.ArenaBlocks = 0
	s.ItemBlocks = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ArenaCount += other.ArenaCount
	s.ItemCount += other.ItemCount
	s.ArenaBlocks += other.ArenaBlocks
	s.ItemBlocks += other.ItemBlocks
}

// DetailedStatistics extends Statistics with per-range information. Pending ranges are blocks
// released by their last user but not reclaimed yet.
type DetailedStatistics struct {
	Statistics
	FreeRangeCount    int
	PendingRangeCount int
	PendingBlocks     int
	ItemSizeMin       int
	ItemSizeMax       int
	FreeRangeSizeMin  int
	FreeRangeSizeMax  int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRangeCount = 0
	s.PendingRangeCount = 0
	s.PendingBlocks = 0
	s.ItemSizeMin = math.MaxInt
	s.ItemSizeMax = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddPendingRange(size int) {
	s.PendingRangeCount++
	s.PendingBlocks += size
}

func (s *DetailedStatistics) AddItem(size int) {
	s.ItemCount++
	s.ItemBlocks += size

	if size < s.ItemSizeMin {
		s.ItemSizeMin = size
	}

	if size > s.ItemSizeMax {
		s.ItemSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRangeCount += other.FreeRangeCount
	s.PendingRangeCount += other.PendingRangeCount
	s.PendingBlocks += other.PendingBlocks

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}

	if other.ItemSizeMin < s.ItemSizeMin {
		s.ItemSizeMin = other.ItemSizeMin
	}

	if other.ItemSizeMax > s.ItemSizeMax {
		s.ItemSizeMax = other.ItemSizeMax
	}
}
