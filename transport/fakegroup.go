package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/opentracing/opentracing-go"
)

// FakeComm is an in-process, multi-rank implementation of Collectives and
// PointToPoint, for tests that exercise a real partition/exchange protocol
// across more than one rank without an MPI binding. Every collective call a
// rank makes is matched to the corresponding call from every other rank in
// the group by call order: rank r's Nth collective call is assumed to be
// the same logical collective as every other rank's Nth call, which holds
// whenever all ranks run the same algorithm. Point-to-point sends and
// receives are matched by (source, dest) pair regardless of order.
//
// Use NewFakeGroup to build one FakeComm per rank, then run each rank's
// work on its own goroutine.
type FakeComm struct {
	hub     *fakeHub
	rank    int
	collSeq int
}

// NewFakeGroup returns size FakeComm instances sharing one fake network,
// indexed by rank.
func NewFakeGroup(size int) []*FakeComm {
	hub := &fakeHub{size: size, rounds: make(map[int]*fakeRound), p2p: make(map[fakeP2PKey][][]byte)}
	hub.p2pCond = sync.NewCond(&hub.p2pMu)
	comms := make([]*FakeComm, size)
	for r := range comms {
		comms[r] = &FakeComm{hub: hub, rank: r}
	}
	return comms
}

type fakeP2PKey struct{ from, to int }

type fakeHub struct {
	size int

	mu     sync.Mutex
	rounds map[int]*fakeRound

	p2pMu sync.Mutex
	p2p   map[fakeP2PKey][][]byte
	// p2pCond guards both arrival of a new message and drain of the map;
	// woken receivers re-check their own key before consuming.
	p2pCond *sync.Cond
}

type fakeRound struct {
	mu      sync.Mutex
	cond    *sync.Cond
	data    [][]byte
	arrived int
}

func (h *fakeHub) round(seq int) *fakeRound {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rounds[seq]
	if !ok {
		r = &fakeRound{data: make([][]byte, h.size)}
		r.cond = sync.NewCond(&r.mu)
		h.rounds[seq] = r
	}
	return r
}

// collect blocks until every rank in the group has submitted data for this
// call's position in the sequence, then returns all of them, indexed by
// rank, to every caller.
func (c *FakeComm) collect(data []byte) [][]byte {
	r := c.hub.round(c.collSeq)
	c.collSeq++

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[c.rank] = data
	r.arrived++
	if r.arrived == c.hub.size {
		r.cond.Broadcast()
	} else {
		for r.arrived < c.hub.size {
			r.cond.Wait()
		}
	}
	return r.data
}

func (c *FakeComm) span(ctx context.Context, name string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, name)
}

func (c *FakeComm) Init() error     { return nil }
func (c *FakeComm) Finalize() error { return nil }

func (c *FakeComm) Abort(ctx context.Context, err error) {
	span, _ := c.span(ctx, "transport.Abort")
	defer span.Finish()
	panic(fmt.Sprintf("transport: rank %d fatal abort: %v", c.rank, err))
}

func (c *FakeComm) CommSize() int { return c.hub.size }
func (c *FakeComm) CommRank() int { return c.rank }

func (c *FakeComm) Barrier(ctx context.Context) error {
	span, _ := c.span(ctx, "transport.Barrier")
	defer span.Finish()
	c.collect(nil)
	return nil
}

func (c *FakeComm) Bcast(ctx context.Context, root int, data []byte) ([]byte, error) {
	span, _ := c.span(ctx, "transport.Bcast")
	defer span.Finish()
	all := c.collect(data)
	if root < 0 || root >= len(all) {
		return nil, fmt.Errorf("transport: bcast root %d out of range", root)
	}
	return all[root], nil
}

func (c *FakeComm) Gather(ctx context.Context, root int, data []byte) ([][]byte, error) {
	span, _ := c.span(ctx, "transport.Gather")
	defer span.Finish()
	all := c.collect(data)
	if c.rank != root {
		return nil, nil
	}
	return all, nil
}

func (c *FakeComm) Allgather(ctx context.Context, data []byte) ([][]byte, error) {
	span, _ := c.span(ctx, "transport.Allgather")
	defer span.Finish()
	return c.collect(data), nil
}

func (c *FakeComm) Reduce(ctx context.Context, root int, op ReduceOp, value int64) (int64, error) {
	span, _ := c.span(ctx, "transport.Reduce")
	defer span.Finish()
	all := c.collect(encodeInt64(value))
	if c.rank != root {
		return 0, nil
	}
	return foldInt64s(all, op), nil
}

func (c *FakeComm) Allreduce(ctx context.Context, op ReduceOp, value int64) (int64, error) {
	span, _ := c.span(ctx, "transport.Allreduce")
	defer span.Finish()
	all := c.collect(encodeInt64(value))
	return foldInt64s(all, op), nil
}

func (c *FakeComm) Wtime() float64 { return 0 }

// Isend queues data for delivery to dest and returns immediately; the fake
// network has no notion of transmission failure.
func (c *FakeComm) Isend(ctx context.Context, dest int, data []byte) (*Request, error) {
	if dest < 0 || dest >= c.hub.size {
		return nil, fmt.Errorf("transport: isend to out-of-range rank %d", dest)
	}
	buf := append([]byte(nil), data...)
	key := fakeP2PKey{from: c.rank, to: dest}

	c.hub.p2pMu.Lock()
	c.hub.p2p[key] = append(c.hub.p2p[key], buf)
	c.hub.p2pCond.Broadcast()
	c.hub.p2pMu.Unlock()

	return &Request{fn: func() ([]byte, error) { return nil, nil }}, nil
}

// Irecv returns a Request whose completion, resolved during Waitall, blocks
// until a matching Isend from source has arrived.
func (c *FakeComm) Irecv(ctx context.Context, source int, size int) (*Request, error) {
	if source < 0 || source >= c.hub.size {
		return nil, fmt.Errorf("transport: irecv from out-of-range rank %d", source)
	}
	key := fakeP2PKey{from: source, to: c.rank}
	hub := c.hub
	return &Request{from: source, fn: func() ([]byte, error) {
		hub.p2pMu.Lock()
		defer hub.p2pMu.Unlock()
		for len(hub.p2p[key]) == 0 {
			hub.p2pCond.Wait()
		}
		buf := hub.p2p[key][0]
		hub.p2p[key] = hub.p2p[key][1:]
		return buf, nil
	}}, nil
}

func (c *FakeComm) Waitall(ctx context.Context, reqs []*Request) error {
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

func encodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	u := uint64(v)
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
	return buf
}

func decodeInt64(buf []byte) int64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(buf[i]) << (8 * i)
	}
	return int64(u)
}

func foldInt64s(all [][]byte, op ReduceOp) int64 {
	acc := decodeInt64(all[0])
	for _, b := range all[1:] {
		v := decodeInt64(b)
		switch op {
		case ReduceSum:
			acc += v
		case ReduceMin:
			if v < acc {
				acc = v
			}
		case ReduceMax:
			if v > acc {
				acc = v
			}
		}
	}
	return acc
}
