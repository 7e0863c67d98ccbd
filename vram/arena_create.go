package vram

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tilemem/memutils"
	"github.com/vkngwrapper/tilemem/memutils/metadata"
	"github.com/vkngwrapper/tilemem/vram/internal/utils"
	"golang.org/x/exp/slog"
)

// ArenaCreateOptions contains optional settings when creating an arena
type ArenaCreateOptions struct {
	// Flags indicates specific arena behaviors to activate or deactivate
	Flags ArenaCreateFlags
	// MaxItems is the number of items the arena can track at once, counting free runs of blocks as
	// well as used ones. It must be a power of two. If it is 0, a default for the arena is used.
	MaxItems int

	// CallbackOptions is an optional set of callbacks that will be executed when the arena writes to
	// video memory or reclaims released blocks
	CallbackOptions *ArenaCallbackOptions
}

type arenaParams struct {
	kind             ArenaKind
	blocksCount      int
	defaultMaxItems  int
	validBlocksCount func(count int) bool
	padding          metadata.PaddingFunc
}

func newArena[T any](logger *slog.Logger, hardware Hardware[T], params arenaParams, options ArenaCreateOptions) (*Arena[T], error) {
	if logger == nil {
		return nil, errors.Newf("attempted to create a %s arena without a logger", params.kind)
	}
	if hardware == nil {
		return nil, errors.Newf("attempted to create a %s arena without hardware", params.kind)
	}
	if hardware.BlocksCount() != params.blocksCount {
		return nil, errors.Newf("%s arena requires hardware of %d blocks, but the provided hardware has %d blocks",
			params.kind, params.blocksCount, hardware.BlocksCount())
	}

	maxItems := options.MaxItems
	if maxItems == 0 {
		maxItems = params.defaultMaxItems
	}
	err := memutils.CheckPow2(maxItems, "ArenaCreateOptions.MaxItems")
	if err != nil {
		return nil, err
	}

	arena := &Arena[T]{
		kind:    params.kind,
		logger:  logger,
		mutex:   utils.OptionalMutex{UseMutex: options.Flags&ArenaCreateExternallySynchronized == 0},
		flags:   options.Flags,
		padding: params.padding,
		callbacks: arenaCallbacks{
			Callbacks: options.CallbackOptions,
			Arena:     params.kind,
		},
	}
	arena.hardware = &arenaWriter[T]{hardware: hardware, callbacks: &arena.callbacks}
	arena.metadata = metadata.NewSlabBlockMetadata[T](arena.hardware, maxItems, params.validBlocksCount)
	arena.metadata.Init(params.blocksCount)

	logger.Debug(params.kind.String()+"::Init",
		slog.Int("BlocksCount", params.blocksCount),
		slog.Int("MaxItems", maxItems),
		slog.String("Flags", options.Flags.String()),
	)

	return arena, nil
}

// arenaWriter forwards block writes to the hardware and reports them to the commit callback
type arenaWriter[T any] struct {
	hardware  Hardware[T]
	callbacks *arenaCallbacks
}

func (w *arenaWriter[T]) Commit(source []T, startBlock, count int) {
	w.hardware.Commit(source, startBlock, count)
	w.callbacks.Commit(startBlock, count)
}

func (w *arenaWriter[T]) VRAM(startBlock, count int) []T {
	return w.hardware.VRAM(startBlock, count)
}
