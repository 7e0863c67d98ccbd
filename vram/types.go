package vram

// Tile is a single 8x8 tile at 4 bits per pixel, the unit of the sprite tiles arena
type Tile [8]uint32

// TileBlock is a 2KiB run of 64 tiles, the unit of the background tiles arena
type TileBlock [64]Tile

// MapCell is a single background map entry: a tile index plus flip and palette bits
type MapCell uint16

// MapBlock is a 2KiB screen block of 32x32 map cells, the unit of the background maps arena
type MapBlock [1024]MapCell

const (
	// SpriteTilesCount is the number of tiles in sprite video memory
	SpriteTilesCount int = 1024
	// MaxSpriteTilesPerItem is the largest run of tiles a single sprite can use
	MaxSpriteTilesPerItem int = 128
	// DefaultSpriteTilesMaxItems is the item capacity of a sprite tiles arena when none is provided
	DefaultSpriteTilesMaxItems int = 128

	// BgBlocksCount is the number of 2KiB blocks in background video memory
	BgBlocksCount int = 32
	// BgTilesAlignment is the number of blocks in a hardware character base
	BgTilesAlignment int = 8
	// MaxBgTilesBlocksPerItem is the largest run of blocks a background tileset can use
	MaxBgTilesBlocksPerItem int = 16
	// DefaultBgTilesMaxItems is the item capacity of a background tiles arena when none is provided
	DefaultBgTilesMaxItems int = 64
	// MaxBgMapBlocksPerItem is the largest run of screen blocks a background map can use
	MaxBgMapBlocksPerItem int = 4
	// DefaultBgMapsMaxItems is the item capacity of a background maps arena when none is provided
	DefaultBgMapsMaxItems int = 64
)

// ArenaKind identifies the region of video memory an arena manages
type ArenaKind int

const (
	ArenaSpriteTiles ArenaKind = iota
	ArenaBgTiles
	ArenaBgMaps
)

var arenaKindMapping = map[ArenaKind]string{
	ArenaSpriteTiles: "SpriteTiles",
	ArenaBgTiles:     "BgTiles",
	ArenaBgMaps:      "BgMaps",
}

func (k ArenaKind) String() string {
	str, ok := arenaKindMapping[k]
	if !ok {
		return "Unknown"
	}
	return str
}
