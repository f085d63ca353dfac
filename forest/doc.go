// Package forest orchestrates the per-process pieces (connectivity,
// local trees, partition state, transport) into the single object a
// caller drives: build from a connectivity, balance, repartition,
// checkpoint, close. It has no refinement operation of its own. It is
// also the one place in the module that recovers a core invariant panic and turns it into a process abort, per the
// fail-stop error model the core packages assume.
package forest
