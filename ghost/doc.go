// Package ghost computes, for a local tree, the leaves that must be
// shipped to a neighbor tree so that neighbor can enforce 2:1 balancing
// against leaves it does not own (the neighbor's insulation layer), and
// deduplicates those shipments against what a receiver already holds.
package ghost
