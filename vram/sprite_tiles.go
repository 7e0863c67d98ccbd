package vram

import (
	"github.com/vkngwrapper/tilemem/memutils"
	"golang.org/x/exp/slog"
)

// ValidSpriteTilesCount reports whether a sprite can use count tiles: sprite shapes always use a
// power of two number of tiles, up to MaxSpriteTilesPerItem.
func ValidSpriteTilesCount(count int) bool {
	return count <= MaxSpriteTilesPerItem && memutils.IsPow2(count)
}

// SpriteTiles is the arena for sprite tiles. Its blocks are individual tiles.
type SpriteTiles struct {
	*Arena[Tile]
}

// NewSpriteTiles creates the sprite tiles arena
//
// hardware - The video memory the arena writes to. It must expose SpriteTilesCount tiles.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewSpriteTiles(logger *slog.Logger, hardware Hardware[Tile], options ArenaCreateOptions) (*SpriteTiles, error) {
	arena, err := newArena[Tile](logger, hardware, arenaParams{
		kind:             ArenaSpriteTiles,
		blocksCount:      SpriteTilesCount,
		defaultMaxItems:  DefaultSpriteTilesMaxItems,
		validBlocksCount: ValidSpriteTilesCount,
	}, options)
	if err != nil {
		return nil, err
	}

	return &SpriteTiles{Arena: arena}, nil
}
