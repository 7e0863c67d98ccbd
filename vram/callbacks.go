package vram

// CommitCallback is called each time an arena writes a run of blocks to video memory
type CommitCallback func(
	arena ArenaKind,
	startBlock int,
	blocksCount int,
	userData interface{},
)

// ReclaimCallback is called each time an arena's Update reclaims released blocks
type ReclaimCallback func(
	arena ArenaKind,
	reclaimedBlocks int,
	userData interface{},
)

type ArenaCallbackOptions struct {
	Commit   CommitCallback
	Reclaim  ReclaimCallback
	UserData interface{}
}

type arenaCallbacks struct {
	Callbacks *ArenaCallbackOptions
	Arena     ArenaKind
}

func (c *arenaCallbacks) Commit(startBlock, blocksCount int) {
	if c.Callbacks != nil && c.Callbacks.Commit != nil {
		c.Callbacks.Commit(c.Arena, startBlock, blocksCount, c.Callbacks.UserData)
	}
}

func (c *arenaCallbacks) Reclaim(reclaimedBlocks int) {
	if c.Callbacks != nil && c.Callbacks.Reclaim != nil {
		c.Callbacks.Reclaim(c.Arena, reclaimedBlocks, c.Callbacks.UserData)
	}
}
