package vram

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tilemem/memutils"
	"golang.org/x/exp/slog"
)

// ManagerHardware is the video memory backing each arena of a Manager
type ManagerHardware struct {
	SpriteTiles Hardware[Tile]
	BgTiles     Hardware[TileBlock]
	BgMaps      Hardware[MapBlock]
}

// NewMemoryManagerHardware creates ManagerHardware backed by MemoryHardware of the right sizes
func NewMemoryManagerHardware() (ManagerHardware, *MemoryHardware[Tile], *MemoryHardware[TileBlock], *MemoryHardware[MapBlock]) {
	spriteTiles := NewMemoryHardware[Tile](SpriteTilesCount)
	bgTiles := NewMemoryHardware[TileBlock](BgBlocksCount)
	bgMaps := NewMemoryHardware[MapBlock](BgBlocksCount)

	return ManagerHardware{
		SpriteTiles: spriteTiles,
		BgTiles:     bgTiles,
		BgMaps:      bgMaps,
	}, spriteTiles, bgTiles, bgMaps
}

// ManagerCreateOptions contains optional settings when creating a Manager
type ManagerCreateOptions struct {
	// Flags are added to the flags of every arena
	Flags ArenaCreateFlags
	// CallbackOptions is used by every arena that does not provide its own
	CallbackOptions *ArenaCallbackOptions

	SpriteTiles ArenaCreateOptions
	BgTiles     ArenaCreateOptions
	BgMaps      ArenaCreateOptions
}

func (o ManagerCreateOptions) arenaOptions(options ArenaCreateOptions) ArenaCreateOptions {
	options.Flags |= o.Flags
	if options.CallbackOptions == nil {
		options.CallbackOptions = o.CallbackOptions
	}
	return options
}

// Manager owns the sprite tiles, background tiles and background maps arenas and drives them
// through the frame loop together.
type Manager struct {
	logger *slog.Logger

	SpriteTiles *SpriteTiles
	BgTiles     *BgTiles
	BgMaps      *BgMaps
}

// FrameResult reports what a call to Manager.Frame did
type FrameResult struct {
	Reclaimed bool
	Committed bool
}

// ManagerStatistics holds detailed statistics for every arena of a Manager, and their sum
type ManagerStatistics struct {
	SpriteTiles memutils.DetailedStatistics
	BgTiles     memutils.DetailedStatistics
	BgMaps      memutils.DetailedStatistics
	Total       memutils.DetailedStatistics
}

// NewManager creates the three arenas
//
// hardware - The video memory of each arena. Every field must be set.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewManager(logger *slog.Logger, hardware ManagerHardware, options ManagerCreateOptions) (*Manager, error) {
	spriteTiles, err := NewSpriteTiles(logger, hardware.SpriteTiles, options.arenaOptions(options.SpriteTiles))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the sprite tiles arena")
	}

	bgTiles, err := NewBgTiles(logger, hardware.BgTiles, options.arenaOptions(options.BgTiles))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the background tiles arena")
	}

	bgMaps, err := NewBgMaps(logger, hardware.BgMaps, options.arenaOptions(options.BgMaps))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the background maps arena")
	}

	return &Manager{
		logger:      logger,
		SpriteTiles: spriteTiles,
		BgTiles:     bgTiles,
		BgMaps:      bgMaps,
	}, nil
}

// Update reclaims released items in every arena
func (m *Manager) Update() bool {
	reclaimed := m.SpriteTiles.Update()
	reclaimed = m.BgTiles.Update() || reclaimed
	reclaimed = m.BgMaps.Update() || reclaimed
	return reclaimed
}

// Commit writes pending data in every arena
func (m *Manager) Commit() bool {
	committed := m.SpriteTiles.Commit()
	committed = m.BgTiles.Commit() || committed
	committed = m.BgMaps.Commit() || committed
	return committed
}

// Frame runs Update and then Commit on every arena. It should be called once per frame, while
// video memory is safe to write.
func (m *Manager) Frame() FrameResult {
	result := FrameResult{
		Reclaimed: m.Update(),
	}
	result.Committed = m.Commit()

	m.logger.Debug("Manager::Frame",
		slog.Bool("Reclaimed", result.Reclaimed),
		slog.Bool("Committed", result.Committed),
	)

	return result
}

// CalculateStatistics gathers detailed statistics for every arena
func (m *Manager) CalculateStatistics() ManagerStatistics {
	var stats ManagerStatistics
	stats.SpriteTiles.Clear()
	stats.BgTiles.Clear()
	stats.BgMaps.Clear()
	stats.Total.Clear()

	m.SpriteTiles.AddDetailedStatistics(&stats.SpriteTiles)
	m.BgTiles.AddDetailedStatistics(&stats.BgTiles)
	m.BgMaps.AddDetailedStatistics(&stats.BgMaps)

	stats.Total.AddDetailedStatistics(&stats.SpriteTiles)
	stats.Total.AddDetailedStatistics(&stats.BgTiles)
	stats.Total.AddDetailedStatistics(&stats.BgMaps)

	return stats
}

// PrintDetailedMap writes a json object describing every arena
func (m *Manager) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	spriteTiles := obj.Name("SpriteTiles").Object()
	m.SpriteTiles.printDetailedMap(&spriteTiles)
	spriteTiles.End()

	bgTiles := obj.Name("BgTiles").Object()
	m.BgTiles.printDetailedMap(&bgTiles)
	bgTiles.End()

	bgMaps := obj.Name("BgMaps").Object()
	m.BgMaps.printDetailedMap(&bgMaps)
	bgMaps.End()
}

// Validate runs a full consistency check of every arena
func (m *Manager) Validate() error {
	return memutils.ValidateAll(m.SpriteTiles, m.BgTiles, m.BgMaps)
}

// Destroy destroys every arena, returning the combined errors of arenas with unreleased items
func (m *Manager) Destroy() error {
	err := m.SpriteTiles.Destroy()
	err = errors.CombineErrors(err, m.BgTiles.Destroy())
	err = errors.CombineErrors(err, m.BgMaps.Destroy())
	return err
}
