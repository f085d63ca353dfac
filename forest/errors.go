package forest

import "errors"

var (
	// ErrArenaLeak is returned by Close when a local tree's payload arena
	// has outstanding allocations, meaning some leaf's payload was never
	// released back to it.
	ErrArenaLeak = errors.New("forest: payload arena has unreleased allocations")
	// ErrRankMismatch names the condition of a comm whose rank count does
	// not match the forest's recorded state. No operation in this package
	// returns it; partition.PartitionGiven reports that condition with its
	// own error.
	ErrRankMismatch = errors.New("forest: comm size does not match recorded global state")
)
