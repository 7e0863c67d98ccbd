package vram_test

import (
	"io"

	"github.com/vkngwrapper/tilemem/vram"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func spriteTiles(count int, seed uint32) []vram.Tile {
	run := make([]vram.Tile, count)
	for i := range run {
		run[i][0] = seed
		run[i][1] = uint32(i)
	}
	return run
}

func tileBlocks(count int, seed uint32) []vram.TileBlock {
	run := make([]vram.TileBlock, count)
	for i := range run {
		run[i][0][0] = seed
		run[i][0][1] = uint32(i)
	}
	return run
}

func mapBlocks(count int, seed uint16) []vram.MapBlock {
	run := make([]vram.MapBlock, count)
	for i := range run {
		run[i][0] = vram.MapCell(seed)
		run[i][1] = vram.MapCell(i)
	}
	return run
}
