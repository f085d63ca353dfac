// Package partition tracks each process's slice of the globally
// Morton-ordered forest and implements the distributed repartition
// (PartitionGiven) that moves leaves between processes when the target
// slice counts change.
package partition
