package vram

import "github.com/vkngwrapper/core/v2/common"

// ArenaCreateFlags indicate specific arena behaviors to activate or deactivate
type ArenaCreateFlags int32

var arenaCreateFlagsMapping = common.NewFlagStringMapping[ArenaCreateFlags]()

func (f ArenaCreateFlags) Register(str string) {
	arenaCreateFlagsMapping.Register(f, str)
}

func (f ArenaCreateFlags) String() string {
	return arenaCreateFlagsMapping.FlagsToString(f)
}

const (
	// ArenaCreateExternallySynchronized ensures that the arena will not be synchronized internally.
	// The consumer must guarantee it is used from only one goroutine at a time, which is the usual
	// case for a frame loop.
	ArenaCreateExternallySynchronized ArenaCreateFlags = 1 << iota
	// ArenaCreateValidateOnCommit runs a full consistency check of the arena at the end of every
	// Commit and panics if it fails. It is expensive and intended for debugging.
	ArenaCreateValidateOnCommit
)

func init() {
	ArenaCreateExternallySynchronized.Register("ArenaCreateExternallySynchronized")
	ArenaCreateValidateOnCommit.Register("ArenaCreateValidateOnCommit")
}
