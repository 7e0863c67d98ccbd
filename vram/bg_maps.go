package vram

import (
	"golang.org/x/exp/slog"
)

// ValidBgMapBlocksCount reports whether a background map can use count screen blocks: maps are
// 32x32, 64x32, 32x64 or 64x64 cells.
func ValidBgMapBlocksCount(count int) bool {
	return count == 1 || count == 2 || count == 4
}

// BgMaps is the arena for background maps. Its blocks are 32x32 cell screen blocks.
type BgMaps struct {
	*Arena[MapBlock]
}

// NewBgMaps creates the background maps arena
//
// hardware - The video memory the arena writes to. It must expose BgBlocksCount blocks.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewBgMaps(logger *slog.Logger, hardware Hardware[MapBlock], options ArenaCreateOptions) (*BgMaps, error) {
	arena, err := newArena[MapBlock](logger, hardware, arenaParams{
		kind:             ArenaBgMaps,
		blocksCount:      BgBlocksCount,
		defaultMaxItems:  DefaultBgMapsMaxItems,
		validBlocksCount: ValidBgMapBlocksCount,
	}, options)
	if err != nil {
		return nil, err
	}

	return &BgMaps{Arena: arena}, nil
}

// ScreenBase returns the screen base register value of an item
func (m *BgMaps) ScreenBase(id int) int {
	return m.StartBlock(id)
}
