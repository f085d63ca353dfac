package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentracing/opentracing-go"
)

// LocalComm is the single-process dummy implementation of both Collectives
// and PointToPoint: CommSize() is always 1, every collective is a pass
// through of the caller's own data, and point-to-point send/receive is an
// in-memory copy since rank 0 can only ever talk to itself.
//
// Send-to-self is realized as a FIFO mailbox: Isend enqueues immediately,
// Irecv dequeues immediately. Callers must post the Isend side of a
// logical transfer before the matching Irecv, which every call site in
// this module does (a rank always packs and sends its own outgoing slice
// before posting the receive for what it is due to get back).
type LocalComm struct {
	rank    int
	mailbox [][]byte
}

// NewLocalComm returns the single-process shim used by tests and the CLI's
// default run mode.
func NewLocalComm() *LocalComm { return &LocalComm{} }

func (c *LocalComm) span(ctx context.Context, name string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, name)
}

func (c *LocalComm) Init() error     { return nil }
func (c *LocalComm) Finalize() error { return nil }

// Abort logs nothing itself; callers are expected to have logged err
// before calling Abort. It panics rather than os.Exit so a single-process
// test run can recover it.
func (c *LocalComm) Abort(ctx context.Context, err error) {
	span, _ := c.span(ctx, "transport.Abort")
	defer span.Finish()
	panic(fmt.Sprintf("transport: fatal abort: %v", err))
}

func (c *LocalComm) CommSize() int { return 1 }
func (c *LocalComm) CommRank() int { return c.rank }

func (c *LocalComm) Barrier(ctx context.Context) error {
	span, _ := c.span(ctx, "transport.Barrier")
	defer span.Finish()
	return nil
}

func (c *LocalComm) Bcast(ctx context.Context, root int, data []byte) ([]byte, error) {
	span, _ := c.span(ctx, "transport.Bcast")
	defer span.Finish()
	if root != 0 {
		return nil, fmt.Errorf("transport: local comm has no rank %d", root)
	}
	return data, nil
}

func (c *LocalComm) Gather(ctx context.Context, root int, data []byte) ([][]byte, error) {
	span, _ := c.span(ctx, "transport.Gather")
	defer span.Finish()
	return [][]byte{data}, nil
}

func (c *LocalComm) Allgather(ctx context.Context, data []byte) ([][]byte, error) {
	span, _ := c.span(ctx, "transport.Allgather")
	defer span.Finish()
	return [][]byte{data}, nil
}

func (c *LocalComm) Reduce(ctx context.Context, root int, op ReduceOp, value int64) (int64, error) {
	span, _ := c.span(ctx, "transport.Reduce")
	defer span.Finish()
	return value, nil
}

func (c *LocalComm) Allreduce(ctx context.Context, op ReduceOp, value int64) (int64, error) {
	span, _ := c.span(ctx, "transport.Allreduce")
	defer span.Finish()
	return value, nil
}

func (c *LocalComm) Wtime() float64 { return 0 }

// Isend enqueues data onto the loopback mailbox and returns an
// already-satisfied request.
func (c *LocalComm) Isend(ctx context.Context, dest int, data []byte) (*Request, error) {
	if dest != 0 {
		return nil, fmt.Errorf("transport: local comm has no rank %d", dest)
	}
	buf := append([]byte(nil), data...)
	c.mailbox = append(c.mailbox, buf)
	return &Request{fn: func() ([]byte, error) { return nil, nil }}, nil
}

// Irecv dequeues the oldest unmatched Isend. size is advisory only; the
// dummy comm trusts the sender's framing.
func (c *LocalComm) Irecv(ctx context.Context, source int, size int) (*Request, error) {
	if source != 0 {
		return nil, fmt.Errorf("transport: local comm has no rank %d", source)
	}
	if len(c.mailbox) == 0 {
		return &Request{from: source, fn: func() ([]byte, error) { return nil, errors.New("transport: unmatched Irecv") }}, nil
	}
	buf := c.mailbox[0]
	c.mailbox = c.mailbox[1:]
	return &Request{from: source, fn: func() ([]byte, error) { return buf, nil }}, nil
}

// Waitall resolves every request by invoking its completion function and
// storing the result. On an empty slice it is a no-op, matching the
// single-process shim's required semantics for a rank whose repartition
// step sends and receives nothing.
func (c *LocalComm) Waitall(ctx context.Context, reqs []*Request) error {
	span, _ := c.span(ctx, "transport.Waitall")
	defer span.Finish()
	for _, r := range reqs {
		buf, err := r.fn()
		if err != nil {
			return err
		}
		r.buf = buf
	}
	return nil
}
