package forest

import "github.com/datatrails/go-datatrails-quadforest/quadrant"

// Options carries the forest-wide configuration NewFromConnectivity
// builds from Option closures, following the ReaderOptions/ReaderOption
// pattern the rest of the family uses for optional construction
// parameters.
type Options struct {
	payloadSize  int
	abortHandler func(error)
	leafInit     func(treeID int, q *quadrant.Quadrant)
}

// Option configures a Forest at construction time.
type Option func(*Options)

// WithPayloadSize sets the fixed per-leaf payload size every local tree's
// arena allocates. The default, zero, disables payloads.
func WithPayloadSize(n int) Option {
	return func(o *Options) { o.payloadSize = n }
}

// WithAbortHandler overrides the default fail-stop behavior (call
// transport.Collectives.Abort) with a caller-supplied handler, letting
// tests and embedding applications observe a core invariant violation
// without tearing down the process.
func WithAbortHandler(h func(error)) Option {
	return func(o *Options) { o.abortHandler = h }
}

// WithLeafInit registers a callback invoked once per initial root leaf a
// forest creates, with the connectivity tree id the leaf belongs to and a
// pointer to the leaf so the callback can stamp application data into its
// payload before the forest is handed back to the caller.
func WithLeafInit(fn func(treeID int, q *quadrant.Quadrant)) Option {
	return func(o *Options) { o.leafInit = fn }
}
