package metadata

import (
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slices"
)

// sizeIndex keeps item ids sorted ascending by block count. Ids with equal counts keep their
// insertion order.
type sizeIndex struct {
	ids         []int
	blocksCount func(id int) int
}

func newSizeIndex(capacity int, blocksCount func(id int) int) sizeIndex {
	return sizeIndex{
		ids:         make([]int, 0, capacity),
		blocksCount: blocksCount,
	}
}

func (s *sizeIndex) len() int       { return len(s.ids) }
func (s *sizeIndex) at(pos int) int { return s.ids[pos] }

func (s *sizeIndex) clear() {
	s.ids = s.ids[:0]
}

// lowerBound returns the first position whose item holds at least count blocks
func (s *sizeIndex) lowerBound(count int) int {
	return sort.Search(len(s.ids), func(i int) bool {
		return s.blocksCount(s.ids[i]) >= count
	})
}

func (s *sizeIndex) upperBound(count int) int {
	return sort.Search(len(s.ids), func(i int) bool {
		return s.blocksCount(s.ids[i]) > count
	})
}

func (s *sizeIndex) insert(id int) {
	pos := s.upperBound(s.blocksCount(id))
	s.ids = slices.Insert(s.ids, pos, id)
}

// erase must be called before the item's block count changes
func (s *sizeIndex) erase(id int) {
	pos := s.lowerBound(s.blocksCount(id))
	for pos < len(s.ids) && s.ids[pos] != id {
		pos++
	}

	if pos == len(s.ids) {
		panic(errors.AssertionFailedf("item %d is not in the size index", id))
	}

	s.ids = slices.Delete(s.ids, pos, pos+1)
}

func (s *sizeIndex) contains(id int) bool {
	return slices.Contains(s.ids, id)
}
