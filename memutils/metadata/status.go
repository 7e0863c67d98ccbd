package metadata

// ItemStatus is the lifecycle state of a run of blocks inside a slab arena
type ItemStatus uint8

const (
	// StatusFree marks blocks that belong to no one and can be handed out immediately
	StatusFree ItemStatus = iota
	// StatusUsed marks blocks with at least one live usage
	StatusUsed
	// StatusToRemove marks blocks whose last usage was released during the current frame. They
	// can still be resurrected by Find, or reused directly by an allocation of a fitting size, until
	// the next Update returns them to the free pool.
	StatusToRemove
)

var itemStatusMapping = map[ItemStatus]string{
	StatusFree:     "Free",
	StatusUsed:     "Used",
	StatusToRemove: "ToRemove",
}

func (s ItemStatus) String() string {
	str, ok := itemStatusMapping[s]
	if !ok {
		return "Unknown"
	}
	return str
}
