package transport

import "context"

// ReduceOp names a reduction applied by Reduce/Allreduce. The set is
// deliberately small: the algorithms in this module only ever sum or take
// extremes across ranks.
type ReduceOp int

const (
	ReduceSum ReduceOp = iota
	ReduceMin
	ReduceMax
)

// Collectives is the subset of an MPI communicator's collective surface a
// forest needs: process-group shape, synchronization, and the handful of
// data-movement collectives used to broadcast a connectivity and gather
// per-rank counts.
type Collectives interface {
	Init() error
	Finalize() error
	// Abort tears the process group down immediately; err is logged by the
	// caller before the runtime abort. It never returns.
	Abort(ctx context.Context, err error)

	CommSize() int
	CommRank() int

	Barrier(ctx context.Context) error
	Bcast(ctx context.Context, root int, data []byte) ([]byte, error)
	Gather(ctx context.Context, root int, data []byte) ([][]byte, error)
	Allgather(ctx context.Context, data []byte) ([][]byte, error)
	Reduce(ctx context.Context, root int, op ReduceOp, value int64) (int64, error)
	Allreduce(ctx context.Context, op ReduceOp, value int64) (int64, error)
	Wtime() float64
}

// Request is a handle to a posted non-blocking send or receive.
type Request struct {
	buf  []byte
	from int
	fn   func() ([]byte, error)
}

// PointToPoint is the non-blocking send/receive surface repartition uses
// to move wire-packed leaf records between ranks. Every message travels on
// one fixed, implementation-chosen tag: the algorithms never need to
// distinguish message classes by tag, only by sender/receiver rank.
type PointToPoint interface {
	Isend(ctx context.Context, dest int, data []byte) (*Request, error)
	Irecv(ctx context.Context, source int, size int) (*Request, error)
	// Waitall blocks until every request has completed. Completed receive
	// requests can be read back with Request.Bytes. Waitall on an empty
	// slice is a no-op.
	Waitall(ctx context.Context, reqs []*Request) error
}

// Bytes returns a completed receive request's payload. Before the owning
// Waitall has completed the request (and for send requests) it returns nil.
func (r *Request) Bytes() []byte { return r.buf }
