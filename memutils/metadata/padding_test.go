package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tilemem/memutils/metadata"
)

func TestAlignedPadding(t *testing.T) {
	padding := metadata.AlignedPadding(8)

	require.Equal(t, 0, padding(0, 4))
	require.Equal(t, 5, padding(3, 4))
	require.Equal(t, 0, padding(16, 16))
	require.Equal(t, 1, padding(23, 1))
}

func TestOffsetPadding(t *testing.T) {
	padding := metadata.OffsetPadding(8, 16)

	require.Equal(t, 0, padding(0, 16))
	require.Equal(t, 0, padding(3, 4))
	require.Equal(t, 0, padding(3, 13))
	require.Equal(t, 5, padding(3, 14))
	require.Equal(t, 2, padding(14, 16))
}
