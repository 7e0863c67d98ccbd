package vram

import (
	"github.com/vkngwrapper/tilemem/memutils/metadata"
	"golang.org/x/exp/slog"
)

// ValidBgTilesBlocksCount reports whether a background tileset can use count blocks
func ValidBgTilesBlocksCount(count int) bool {
	return count >= 1 && count <= MaxBgTilesBlocksPerItem
}

// BgTiles is the arena for background tilesets. Its blocks are 2KiB runs of tiles. A background can
// only address tiles starting from a character base, so Create places every tileset on a multiple of
// BgTilesAlignment blocks.
type BgTiles struct {
	*Arena[TileBlock]

	offsetPadding metadata.PaddingFunc
}

// NewBgTiles creates the background tiles arena
//
// hardware - The video memory the arena writes to. It must expose BgBlocksCount blocks.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewBgTiles(logger *slog.Logger, hardware Hardware[TileBlock], options ArenaCreateOptions) (*BgTiles, error) {
	arena, err := newArena[TileBlock](logger, hardware, arenaParams{
		kind:             ArenaBgTiles,
		blocksCount:      BgBlocksCount,
		defaultMaxItems:  DefaultBgTilesMaxItems,
		validBlocksCount: ValidBgTilesBlocksCount,
		padding:          metadata.AlignedPadding(BgTilesAlignment),
	}, options)
	if err != nil {
		return nil, err
	}

	return &BgTiles{
		Arena:         arena,
		offsetPadding: metadata.OffsetPadding(BgTilesAlignment, MaxBgTilesBlocksPerItem),
	}, nil
}

// CreateWithOffset behaves like Create, but allows the tileset to start past a character base, as
// long as it still ends within the MaxBgTilesBlocksPerItem blocks the background can address from
// that base. The consumer is responsible for offsetting its map entries by the distance between the
// character base and StartBlock.
func (t *BgTiles) CreateWithOffset(data []TileBlock) (int, error) {
	return t.create(data, t.offsetPadding, "::CreateWithOffset")
}

// CharacterBase returns the character base an item's tiles are addressed from, and the number of
// tiles between that base and the item's first tile
func (t *BgTiles) CharacterBase(id int) (base int, tileOffset int) {
	startBlock := t.StartBlock(id)
	base = startBlock / BgTilesAlignment
	tileOffset = (startBlock - base*BgTilesAlignment) * len(TileBlock{})
	return base, tileOffset
}
