package vram_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/tilemem/vram"
)

func TestMemoryHardwareTracksWrites(t *testing.T) {
	hardware := vram.NewMemoryHardware[vram.Tile](16)
	require.Equal(t, 16, hardware.BlocksCount())
	require.Equal(t, 16, hardware.UntouchedBlocks())

	emptyDigest := hardware.Digest()

	data := spriteTiles(4, 9)
	hardware.Commit(data, 2, 4)

	require.Equal(t, 1, hardware.Writes())
	require.Equal(t, 4, hardware.WrittenBlocks())
	require.Equal(t, 12, hardware.UntouchedBlocks())
	require.True(t, hardware.Written(2))
	require.True(t, hardware.Written(5))
	require.False(t, hardware.Written(6))
	require.False(t, hardware.Written(-1))
	require.Equal(t, data, hardware.Blocks()[2:6])
	require.NotEqual(t, emptyDigest, hardware.Digest())

	view := hardware.VRAM(10, 2)
	require.Len(t, view, 2)
	view[0][0] = 7
	require.Equal(t, uint32(7), hardware.Blocks()[10][0])
	require.Equal(t, 6, hardware.WrittenBlocks())
	require.Equal(t, 1, hardware.Writes())
}

func TestMemoryHardwareDigestRange(t *testing.T) {
	first := vram.NewMemoryHardware[vram.Tile](8)
	second := vram.NewMemoryHardware[vram.Tile](8)

	data := spriteTiles(2, 3)
	first.Commit(data, 0, 2)
	second.Commit(data, 4, 2)

	require.Equal(t, first.DigestRange(0, 2), second.DigestRange(4, 2))
	require.NotEqual(t, first.Digest(), second.Digest())
}

func TestMemoryHardwareOutOfRangePanics(t *testing.T) {
	hardware := vram.NewMemoryHardware[vram.Tile](8)

	require.Panics(t, func() {
		hardware.Commit(spriteTiles(4, 1), 6, 4)
	})
	require.Panics(t, func() {
		hardware.Commit(spriteTiles(4, 1), 0, 2)
	})
	require.Panics(t, func() {
		hardware.VRAM(-1, 1)
	})
}
