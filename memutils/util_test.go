package memutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tilemem/memutils"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(1, "one"))
	require.NoError(t, memutils.CheckPow2(128, "maxItems"))
	require.NoError(t, memutils.CheckPow2(uint(64), "alignment"))

	err := memutils.CheckPow2(96, "maxItems")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "maxItems is 96")

	require.Error(t, memutils.CheckPow2(0, "zero"))
}

func TestIsPow2(t *testing.T) {
	for _, value := range []int{1, 2, 4, 8, 16, 32, 64, 128} {
		require.True(t, memutils.IsPow2(value), value)
	}

	for _, value := range []int{-4, 0, 3, 6, 12, 127} {
		require.False(t, memutils.IsPow2(value), value)
	}
}

func TestAlign(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 8))
	require.Equal(t, 8, memutils.AlignUp(1, 8))
	require.Equal(t, 8, memutils.AlignUp(8, 8))
	require.Equal(t, 16, memutils.AlignUp(9, 8))

	require.Equal(t, 0, memutils.AlignDown(7, 8))
	require.Equal(t, 8, memutils.AlignDown(15, 8))
}

func TestCheckBlocksCount(t *testing.T) {
	require.NoError(t, memutils.CheckBlocksCount(1, 16, "count"))
	require.NoError(t, memutils.CheckBlocksCount(16, 16, "count"))

	err := memutils.CheckBlocksCount(17, 16, "count")
	require.True(t, errors.Is(err, memutils.ErrInvalidBlocksCount))

	err = memutils.CheckBlocksCount(0, 16, "count")
	require.True(t, errors.Is(err, memutils.ErrInvalidBlocksCount))
}
