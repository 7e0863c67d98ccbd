package main

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tilemem/memutils"
	"github.com/vkngwrapper/tilemem/vram"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/slog"
)

type simOptions struct {
	MaxItems int
	JSON     bool
	PrintMap bool
}

// asset is a named run of blocks the trace refers to. Created assets keep the same source slice for
// their whole lifetime so that the arena can share them.
type asset struct {
	kind    vram.ArenaKind
	count   int
	scratch bool
	ids     []int

	place   func() (int, error)
	release func(id int)
	reload  func(id int)
}

func newAsset[T any](arena *vram.Arena[T], name string, count int, scratch bool, fill func(seed uint64, index int, block *T)) *asset {
	seed := xxh3.HashString(name)
	a := &asset{
		kind:    arena.Kind(),
		count:   count,
		scratch: scratch,
		release: arena.DecreaseUsages,
		reload:  arena.ReloadBlocksRef,
	}

	if scratch {
		a.place = func() (int, error) {
			id, err := arena.Allocate(count)
			if err != nil {
				return -1, err
			}

			ram, _ := arena.VRAM(id)
			for i := range ram {
				fill(seed, i, &ram[i])
			}
			return id, nil
		}
		return a
	}

	data := make([]T, count)
	for i := range data {
		fill(seed, i, &data[i])
	}
	a.place = func() (int, error) {
		return arena.Create(data)
	}
	return a
}

func fillTile(seed uint64, index int, block *vram.Tile) {
	for i := range block {
		block[i] = uint32(seed>>(uint(i%2)*32)) ^ uint32(index*len(block)+i)
	}
}

func fillTileBlock(seed uint64, index int, block *vram.TileBlock) {
	for i := range block {
		fillTile(seed, index*len(block)+i, &block[i])
	}
}

func fillMapBlock(seed uint64, index int, block *vram.MapBlock) {
	for i := range block {
		block[i] = vram.MapCell(seed) ^ vram.MapCell(index*len(block)+i)
	}
}

func parseArena(name string) (vram.ArenaKind, error) {
	switch name {
	case "sprite", "sprite_tiles":
		return vram.ArenaSpriteTiles, nil
	case "bg_tiles":
		return vram.ArenaBgTiles, nil
	case "bg_map", "bg_maps":
		return vram.ArenaBgMaps, nil
	}
	return 0, errors.Newf("unknown arena %q", name)
}

// checkCount rejects block counts the arena of the given kind cannot hold
func checkCount(kind vram.ArenaKind, count int) error {
	maxCount, valid := vram.MaxBgMapBlocksPerItem, vram.ValidBgMapBlocksCount
	switch kind {
	case vram.ArenaSpriteTiles:
		maxCount, valid = vram.MaxSpriteTilesPerItem, vram.ValidSpriteTilesCount
	case vram.ArenaBgTiles:
		maxCount, valid = vram.MaxBgTilesBlocksPerItem, vram.ValidBgTilesBlocksCount
	}

	err := memutils.CheckBlocksCount(count, maxCount, kind.String()+" count")
	if err == nil && !valid(count) {
		err = errors.Wrapf(memutils.ErrInvalidBlocksCount, "%s cannot use %d blocks", kind, count)
	}
	return err
}

type simulator struct {
	logger  *slog.Logger
	manager *vram.Manager

	spriteTiles *vram.MemoryHardware[vram.Tile]
	bgTiles     *vram.MemoryHardware[vram.TileBlock]
	bgMaps      *vram.MemoryHardware[vram.MapBlock]

	assets map[string]*asset
	frame  int

	ops      int
	failures int
	skipped  int
}

func newSimulator(logger *slog.Logger, options simOptions) (*simulator, error) {
	hardware, spriteTiles, bgTiles, bgMaps := vram.NewMemoryManagerHardware()

	arenaOptions := vram.ArenaCreateOptions{MaxItems: options.MaxItems}
	manager, err := vram.NewManager(logger, hardware, vram.ManagerCreateOptions{
		Flags:       vram.ArenaCreateExternallySynchronized,
		SpriteTiles: arenaOptions,
		BgTiles:     arenaOptions,
		BgMaps:      arenaOptions,
	})
	if err != nil {
		return nil, err
	}

	return &simulator{
		logger:      logger,
		manager:     manager,
		spriteTiles: spriteTiles,
		bgTiles:     bgTiles,
		bgMaps:      bgMaps,
		assets:      make(map[string]*asset),
	}, nil
}

func (s *simulator) apply(op traceOp) error {
	s.ops++

	switch op.Op {
	case opCreate:
		return s.place(op, false)
	case opAllocate:
		return s.place(op, true)
	case opRelease:
		return s.release(op.Data)
	case opReload:
		return s.reload(op.Data)
	}
	return errors.Newf("unknown op %q", op.Op)
}

func (s *simulator) lookupAsset(op traceOp, scratch bool) (*asset, error) {
	kind, err := parseArena(op.Arena)
	if err != nil {
		return nil, err
	}

	a, ok := s.assets[op.Data]
	if ok {
		if a.kind != kind || a.count != op.Count || a.scratch != scratch {
			return nil, errors.Newf("asset %q was first used as %d blocks of %s", op.Data, a.count, a.kind)
		}
		return a, nil
	}

	if err := checkCount(kind, op.Count); err != nil {
		return nil, errors.Wrapf(err, "asset %q", op.Data)
	}

	switch kind {
	case vram.ArenaSpriteTiles:
		a = newAsset(s.manager.SpriteTiles.Arena, op.Data, op.Count, scratch, fillTile)
	case vram.ArenaBgTiles:
		a = newAsset(s.manager.BgTiles.Arena, op.Data, op.Count, scratch, fillTileBlock)
	default:
		a = newAsset(s.manager.BgMaps.Arena, op.Data, op.Count, scratch, fillMapBlock)
	}

	s.assets[op.Data] = a
	return a, nil
}

func (s *simulator) place(op traceOp, scratch bool) error {
	a, err := s.lookupAsset(op, scratch)
	if err != nil {
		return err
	}

	id, err := a.place()
	if errors.Is(err, memutils.ErrOutOfMemory) {
		s.failures++
		s.logger.Info("allocation failed", slog.String("data", op.Data), slog.String("error", err.Error()))
		return nil
	} else if err != nil {
		return err
	}

	a.ids = append(a.ids, id)
	return nil
}

func (s *simulator) release(name string) error {
	a, ok := s.assets[name]
	if !ok {
		return errors.Newf("release of unknown asset %q", name)
	}
	if len(a.ids) == 0 {
		s.skipped++
		return nil
	}

	last := len(a.ids) - 1
	a.release(a.ids[last])
	a.ids = a.ids[:last]
	return nil
}

func (s *simulator) reload(name string) error {
	a, ok := s.assets[name]
	if !ok {
		return errors.Newf("reload of unknown asset %q", name)
	}
	if a.scratch {
		return errors.Newf("asset %q was allocated and has no data to reload", name)
	}
	if len(a.ids) == 0 {
		s.skipped++
		return nil
	}

	a.reload(a.ids[len(a.ids)-1])
	return nil
}

type arenaReport struct {
	Kind            vram.ArenaKind
	UsedBlocks      int
	FreeBlocks      int
	Items           int
	FreeRegions     int
	UntouchedBlocks int
	Digest          uint64
}

type frameReport struct {
	Frame    int
	Ops      int
	Failures int
	Skipped  int
	Result   vram.FrameResult
	Arenas   []arenaReport
}

func arenaReportFor[T any](arena *vram.Arena[T], hardware *vram.MemoryHardware[T]) arenaReport {
	return arenaReport{
		Kind:            arena.Kind(),
		UsedBlocks:      arena.UsedBlocksCount(),
		FreeBlocks:      arena.FreeBlocksCount(),
		Items:           arena.UsedItemsCount(),
		FreeRegions:     arena.FreeRegionsCount(),
		UntouchedBlocks: hardware.UntouchedBlocks(),
		Digest:          hardware.Digest(),
	}
}

// endFrame runs the frame's update and commit and reports the state of every arena
func (s *simulator) endFrame() frameReport {
	report := frameReport{
		Frame:    s.frame,
		Ops:      s.ops,
		Failures: s.failures,
		Skipped:  s.skipped,
		Result:   s.manager.Frame(),
		Arenas: []arenaReport{
			arenaReportFor(s.manager.SpriteTiles.Arena, s.spriteTiles),
			arenaReportFor(s.manager.BgTiles.Arena, s.bgTiles),
			arenaReportFor(s.manager.BgMaps.Arena, s.bgMaps),
		},
	}

	s.frame++
	s.ops = 0
	s.failures = 0
	s.skipped = 0
	return report
}

func (s *simulator) runFrame(frame traceFrame) (frameReport, error) {
	for opIndex, op := range frame.Ops {
		if err := s.apply(op); err != nil {
			return frameReport{}, errors.Wrapf(err, "frame %d op %d", s.frame, opIndex)
		}
	}

	return s.endFrame(), nil
}
