package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// IsPow2 reports whether number is a positive power of two
func IsPow2[T Number](number T) bool {
	return number > 0 && number&(number-1) == 0
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// CheckBlocksCount verifies that count lies within [1, max]
func CheckBlocksCount(count, max int, name string) error {
	if count < 1 || count > max {
		return cerrors.Wrapf(ErrInvalidBlocksCount, "%s is %d, expected a value in [1, %d]", name, count, max)
	}
	return nil
}
