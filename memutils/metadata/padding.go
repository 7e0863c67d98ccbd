package metadata

import "github.com/vkngwrapper/tilemem/memutils"

// PaddingFunc returns how many blocks must be skipped at startBlock before a run of blocksCount
// blocks may be placed there. A nil PaddingFunc never pads.
type PaddingFunc func(startBlock, blocksCount int) int

// AlignedPadding pads every run so that it starts on a multiple of alignment blocks. alignment
// must be a power of two.
func AlignedPadding(alignment int) PaddingFunc {
	memutils.DebugCheckPow2(alignment, "alignment")

	return func(startBlock, blocksCount int) int {
		return memutils.AlignUp(startBlock, uint(alignment)) - startBlock
	}
}

// OffsetPadding lets a run start anywhere as long as it ends within maxBlocks of the alignment
// boundary preceding it. Otherwise the run is moved up to the next boundary.
func OffsetPadding(alignment, maxBlocks int) PaddingFunc {
	memutils.DebugCheckPow2(alignment, "alignment")

	return func(startBlock, blocksCount int) int {
		extraBlocks := startBlock - memutils.AlignDown(startBlock, uint(alignment))
		if extraBlocks == 0 || blocksCount+extraBlocks <= maxBlocks {
			return 0
		}

		return alignment - extraBlocks
	}
}
