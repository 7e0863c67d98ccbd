package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// ErrOutOfMemory is returned when an arena has no contiguous run of blocks (or no item slots) left
// to satisfy a request. It is the only recoverable failure an arena reports; callers are expected
// to fall back or retry on a later frame.
var ErrOutOfMemory error = errors.New("out of video memory")

// ErrInvalidBlocksCount is returned when a block count is not one the hardware can address
var ErrInvalidBlocksCount error = errors.New("invalid blocks count")
