package circring

import (
	"errors"
	"fmt"

	"marblering/constants"
)

// ErrInvalidConfig reports a Config the engine cannot run with.
var ErrInvalidConfig = errors.New("circring: invalid config")

// Config carries the policy the engine runs under. The engine itself knows
// nothing about which values are special or how far operations reach.
type Config struct {
	// InsertSkip is the clockwise distance from the cursor at which a new
	// node lands. 1 places it directly after the cursor.
	InsertSkip int

	// RemoveWalk is the number of counter-clockwise hops from the cursor
	// to the node that RewindRemove takes out. 0 removes the cursor itself.
	RemoveWalk int

	// IsRemove selects the RewindRemove branch for a value.
	IsRemove func(value uint64) bool
}

// DefaultConfig returns the marble game policy: insert two clockwise,
// remove seven counter-clockwise on multiples of 23.
func DefaultConfig() Config {
	return Config{
		InsertSkip: constants.DefaultInsertSkip,
		RemoveWalk: constants.DefaultRemoveWalk,
		IsRemove:   MultipleOf(constants.DefaultMagic),
	}
}

// MultipleOf returns a predicate matching positive multiples of k.
// k == 0 never matches.
func MultipleOf(k uint64) func(uint64) bool {
	if k == 0 {
		return func(uint64) bool { return false }
	}
	return func(v uint64) bool { return v != 0 && v%k == 0 }
}

// Validate checks the hop distances and predicate.
func (c Config) Validate() error {
	if c.InsertSkip < 1 {
		return fmt.Errorf("%w: insert skip %d < 1", ErrInvalidConfig, c.InsertSkip)
	}
	if c.RemoveWalk < 0 {
		return fmt.Errorf("%w: remove walk %d < 0", ErrInvalidConfig, c.RemoveWalk)
	}
	if c.IsRemove == nil {
		return fmt.Errorf("%w: nil branch predicate", ErrInvalidConfig)
	}
	return nil
}

// minRemoveLen is the smallest ring RewindRemove may run on: the walk must
// not wrap, and at least one node must survive.
func (c Config) minRemoveLen() int {
	if c.RemoveWalk+1 < 2 {
		return 2
	}
	return c.RemoveWalk + 1
}
