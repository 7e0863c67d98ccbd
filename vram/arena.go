package vram

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tilemem/memutils"
	"github.com/vkngwrapper/tilemem/memutils/metadata"
	"github.com/vkngwrapper/tilemem/vram/internal/utils"
	"golang.org/x/exp/slog"
)

// Arena manages one region of video memory, split into blocks of type T. Runs of blocks created from
// the same source slice are shared, released runs are only reused or reclaimed once the consumer calls
// Update, and writes to video memory happen either immediately or on the next Commit.
//
// Item ids returned by an arena are only valid until the item's last usage is released and the next
// Update runs.
type Arena[T any] struct {
	kind      ArenaKind
	logger    *slog.Logger
	mutex     utils.OptionalMutex
	flags     ArenaCreateFlags
	padding   metadata.PaddingFunc
	callbacks arenaCallbacks

	hardware *arenaWriter[T]
	metadata *metadata.SlabBlockMetadata[T]
}

// Kind returns the region of video memory this arena manages
func (a *Arena[T]) Kind() ArenaKind { return a.kind }

// Flags returns the flags this arena was created with
func (a *Arena[T]) Flags() ArenaCreateFlags { return a.flags }

// Find returns the id of the item created from data, adding a usage to it. If the item was released
// this frame, it is recovered.
func (a *Arena[T]) Find(data []T) (int, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug(a.kind.String()+"::Find", slog.Int("BlocksCount", len(data)))

	return a.metadata.Find(data)
}

// Create returns the id of an item holding data. If data was already created, the item is shared
// and its usage count increased. Otherwise the data is written to video memory, either immediately
// or on the next Commit.
//
// Items are identified by the address of data[0], so the same asset must always be passed as the
// same slice. An error wrapping memutils.ErrOutOfMemory is returned if there is no room left.
func (a *Arena[T]) Create(data []T) (int, error) {
	return a.create(data, a.padding, "::Create")
}

func (a *Arena[T]) create(data []T, padding metadata.PaddingFunc, operation string) (int, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug(a.kind.String()+operation, slog.Int("BlocksCount", len(data)))

	id, err := a.metadata.Create(data, padding)
	if err != nil {
		a.logger.Debug("  "+a.kind.String()+operation+" FAILED",
			slog.Int("FreeBlocks", a.metadata.SumFreeSize()),
			slog.Int("ToRemoveBlocks", a.metadata.SumToRemoveSize()),
		)
		return -1, err
	}

	return id, nil
}

// Allocate returns the id of an item of count blocks that is not tied to any source data. The consumer
// writes to it directly through VRAM. Allocate only uses free blocks, and fails while a previous Create
// has writes waiting for the next Commit.
func (a *Arena[T]) Allocate(count int) (int, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug(a.kind.String()+"::Allocate", slog.Int("BlocksCount", count))

	id, err := a.metadata.Allocate(count, a.padding)
	if err != nil {
		a.logger.Debug("  "+a.kind.String()+"::Allocate FAILED",
			slog.Int("FreeBlocks", a.metadata.SumFreeSize()),
			slog.Bool("CommitDelayed", a.metadata.CommitDelayed()),
		)
		return -1, err
	}

	return id, nil
}

func (a *Arena[T]) IncreaseUsages(id int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.metadata.IncreaseUsages(id)
}

// DecreaseUsages releases a usage of an item. Once the last usage is released, the item's blocks
// become reusable by Create immediately and are reclaimed by the next Update.
func (a *Arena[T]) DecreaseUsages(id int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug(a.kind.String()+"::DecreaseUsages", slog.Int("Id", id))

	a.metadata.DecreaseUsages(id)
}

func (a *Arena[T]) Usages(id int) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.Usages(id)
}

func (a *Arena[T]) StartBlock(id int) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.StartBlock(id)
}

func (a *Arena[T]) BlocksCount(id int) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.BlocksCount(id)
}

func (a *Arena[T]) BlocksRef(id int) ([]T, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.BlocksRef(id)
}

// SetBlocksRef rebinds an item to different source data of the same length. The new data is written
// on the next Commit.
func (a *Arena[T]) SetBlocksRef(id int, data []T) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug(a.kind.String()+"::SetBlocksRef", slog.Int("Id", id), slog.Int("BlocksCount", len(data)))

	a.metadata.SetBlocksRef(id, data)
}

// ReloadBlocksRef writes an item's source data again on the next Commit
func (a *Arena[T]) ReloadBlocksRef(id int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug(a.kind.String()+"::ReloadBlocksRef", slog.Int("Id", id))

	a.metadata.ReloadBlocksRef(id)
}

// VRAM returns a writable view over the blocks of an item created with Allocate
func (a *Arena[T]) VRAM(id int) ([]T, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.VRAM(id)
}

// Update reclaims every item released since the last Update. It must be called once per frame,
// before Commit.
func (a *Arena[T]) Update() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	reclaimedBlocks := a.metadata.SumToRemoveSize()
	reclaimed := a.metadata.Update()
	if reclaimed {
		a.logger.Debug(a.kind.String()+"::Update", slog.Int("ReclaimedBlocks", reclaimedBlocks))
		a.callbacks.Reclaim(reclaimedBlocks)
	}

	return reclaimed
}

// Commit writes all pending source data to video memory. It must be called once per frame, while
// video memory is safe to write.
func (a *Arena[T]) Commit() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	committed := a.metadata.Commit()
	if committed {
		a.logger.Debug(a.kind.String() + "::Commit")
	}

	if a.flags&ArenaCreateValidateOnCommit != 0 {
		err := a.metadata.Validate()
		if err != nil {
			panic(errors.NewAssertionErrorWithWrappedErrf(err, "%s arena failed validation after commit", a.kind))
		}
	}

	return committed
}

// CommitDelayed returns true if a Create since the last Commit reused blocks that were in use this
// frame. Allocate fails until the next Commit.
func (a *Arena[T]) CommitDelayed() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.CommitDelayed()
}

// Size returns the number of blocks managed by this arena
func (a *Arena[T]) Size() int {
	return a.metadata.Size()
}

// UsedBlocksCount returns the number of blocks held by used items
func (a *Arena[T]) UsedBlocksCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.Size() - a.metadata.SumFreeSize() - a.metadata.SumToRemoveSize()
}

// FreeBlocksCount returns the number of free blocks, not counting released blocks waiting for Update
func (a *Arena[T]) FreeBlocksCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.SumFreeSize()
}

// ToRemoveBlocksCount returns the number of released blocks waiting for Update
func (a *Arena[T]) ToRemoveBlocksCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.SumToRemoveSize()
}

// UsedItemsCount returns the number of items with at least one usage
func (a *Arena[T]) UsedItemsCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.ItemCount()
}

// AvailableItemsCount returns the number of item slots left
func (a *Arena[T]) AvailableItemsCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.AvailableItemsCount()
}

// FreeRegionsCount returns the number of separate runs of free blocks
func (a *Arena[T]) FreeRegionsCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.FreeRegionsCount()
}

func (a *Arena[T]) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.metadata.Validate()
}

// AddStatistics sums this arena's basic statistics into stats
func (a *Arena[T]) AddStatistics(stats *memutils.Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.metadata.AddStatistics(stats)
}

// AddDetailedStatistics sums this arena's detailed statistics into stats
func (a *Arena[T]) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.metadata.AddDetailedStatistics(stats)
}

// PrintDetailedMap writes a json object describing every item in the arena
func (a *Arena[T]) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	a.printDetailedMap(&obj)
}

func (a *Arena[T]) printDetailedMap(obj *jwriter.ObjectState) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	obj.Name("Arena").String(a.kind.String())
	obj.Name("Flags").String(a.flags.String())
	obj.Name("CommitDelayed").Bool(a.metadata.CommitDelayed())
	a.metadata.PrintDetailedMap(obj)
}

// Destroy checks that every item has been released. If any is still in use, each one is logged and
// an error is returned.
func (a *Arena[T]) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.metadata.IsEmpty() {
		err := a.metadata.VisitAllRegions(func(id int, startBlock int, blocksCount int, status metadata.ItemStatus) error {
			if status != metadata.StatusUsed {
				return nil
			}

			a.logUnreleasedItem(id, startBlock, blocksCount)
			return nil
		})
		if err != nil {
			a.logger.LogAttrs(context.Background(),
				slog.LevelError,
				"[UNRELEASED VRAM] error while iterating unreleased items",
				slog.Any("error", err))
		}

		return errors.Newf("%d items were not released before the destruction of the %s arena", a.metadata.ItemCount(), a.kind)
	}

	return nil
}

func (a *Arena[T]) logUnreleasedItem(id, startBlock, blocksCount int) {
	_, hasData := a.metadata.BlocksRef(id)

	a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED VRAM] unreleased item",
		slog.String("arena", a.kind.String()),
		slog.Int("id", id),
		slog.Int("startBlock", startBlock),
		slog.Int("blocksCount", blocksCount),
		slog.Int("usages", a.metadata.Usages(id)),
		slog.Bool("hasData", hasData),
	)
}
