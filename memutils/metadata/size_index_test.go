package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeIndexOrdering(t *testing.T) {
	counts := map[int]int{1: 4, 2: 1, 3: 4, 4: 8, 5: 2}
	index := newSizeIndex(8, func(id int) int { return counts[id] })

	for _, id := range []int{1, 2, 3, 4, 5} {
		index.insert(id)
	}

	// Equal sizes keep insertion order
	require.Equal(t, []int{2, 5, 1, 3, 4}, index.ids)

	require.Equal(t, 0, index.lowerBound(1))
	require.Equal(t, 2, index.lowerBound(3))
	require.Equal(t, 2, index.lowerBound(4))
	require.Equal(t, 4, index.upperBound(4))
	require.Equal(t, 5, index.lowerBound(9))

	index.erase(3)
	require.Equal(t, []int{2, 5, 1, 4}, index.ids)

	index.erase(2)
	require.Equal(t, []int{5, 1, 4}, index.ids)
	require.False(t, index.contains(2))

	require.Panics(t, func() {
		index.erase(3)
	})

	index.clear()
	require.Equal(t, 0, index.len())
}
