// Package qtree implements the per-tree local algorithms of the forest:
// the ordered leaf container, the sortedness/linearity/completeness
// predicates, completion, 2:1 balancing, and linearization.
package qtree

import (
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// Tree owns the ordered, sorted sequence of leaves that live in one
// connectivity tree on this process, plus the per-level counters that must
// be kept consistent with that sequence.
type Tree struct {
	Leaves   []quadrant.Quadrant
	Count    [quadrant.MaxLevel + 1]int
	MaxLevel int
	Payload  *Arena
}

// NewTree returns an empty tree whose payload arena allocates dataSize
// bytes per leaf (dataSize == 0 disables payloads).
func NewTree(dataSize int) *Tree {
	return &Tree{Payload: NewArena(dataSize)}
}

// NewRootTree returns a tree containing a single level-0 root leaf, the
// state every local tree starts in when a forest is initialised.
func NewRootTree(dataSize int) *Tree {
	t := NewTree(dataSize)
	t.Append(quadrant.Quadrant{Level: 0})
	return t
}

// Append adds q to the end of the sequence and updates the per-level
// counters eagerly. Callers are responsible for maintaining sort order;
// Append itself does not sort.
func (t *Tree) Append(q quadrant.Quadrant) {
	t.Leaves = append(t.Leaves, q)
	t.Count[q.Level]++
	if int(q.Level) > t.MaxLevel {
		t.MaxLevel = int(q.Level)
	}
}

// RecomputeCounters rebuilds Count and MaxLevel from Leaves. Callers that
// resize or reorder Leaves directly (bypassing Append) must call this
// before re-entering any other public Tree operation.
func (t *Tree) RecomputeCounters() {
	for i := range t.Count {
		t.Count[i] = 0
	}
	t.MaxLevel = 0
	for _, q := range t.Leaves {
		t.Count[q.Level]++
		if int(q.Level) > t.MaxLevel {
			t.MaxLevel = int(q.Level)
		}
	}
}

// releasePayload frees q's owned payload slot, if it has one.
func (t *Tree) releasePayload(q quadrant.Quadrant) {
	if q.Data.Kind == quadrant.PayloadOwned && t.Payload != nil {
		t.Payload.Free(q.Data.OwnedIdx)
	}
}

// NewOwnedPayload allocates a fresh payload slot from t's arena and returns
// a Payload referencing it.
func (t *Tree) NewOwnedPayload() quadrant.Payload {
	if t.Payload == nil || t.Payload.DataSize() == 0 {
		return quadrant.Payload{}
	}
	idx := t.Payload.Alloc()
	return quadrant.Payload{Kind: quadrant.PayloadOwned, OwnedIdx: idx, Owned: t.Payload.Get(idx)}
}
