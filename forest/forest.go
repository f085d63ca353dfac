package forest

import (
	"context"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-quadforest/connectivity"
	"github.com/datatrails/go-datatrails-quadforest/partition"
	"github.com/datatrails/go-datatrails-quadforest/qtree"
	"github.com/datatrails/go-datatrails-quadforest/transport"
	"github.com/google/uuid"
)

// Forest is the per-process view of a distributed quadtree forest: the
// connectivity it was built from, the contiguous span of trees this rank
// owns, and the global partition state kept synchronized across ranks.
type Forest struct {
	opts Options

	Comm transport.Collectives
	P2P  transport.PointToPoint
	Conn *connectivity.Connectivity

	Local *partition.Local
	State *partition.GlobalState
}

// NewFromConnectivity builds a forest rooted at one level-0 quadrant per
// connectivity tree, split contiguously across the process group: rank r
// owns trees [firstTree, firstTree+count), with any remainder from an
// uneven split going to the lowest-numbered ranks.
func NewFromConnectivity(ctx context.Context, comm transport.Collectives, p2p transport.PointToPoint, conn *connectivity.Connectivity, opts ...Option) (*Forest, error) {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}

	size := comm.CommSize()
	rank := comm.CommRank()
	firstTree, count := splitTreesAcrossRanks(conn.NumTrees, size, rank)

	trees := make([]*qtree.Tree, count)
	for i := range trees {
		trees[i] = qtree.NewRootTree(o.payloadSize)
		if o.leafInit != nil {
			o.leafInit(firstTree+i, &trees[i].Leaves[0])
		}
	}
	local := &partition.Local{FirstTree: firstTree, DataSize: o.payloadSize, Trees: trees}

	state, err := partition.NewInitialGlobalState(ctx, comm, local, conn.NumTrees)
	if err != nil {
		return nil, fmt.Errorf("forest: initializing global state: %w", err)
	}

	logger.Sugar.Debugf("forest: rank %d owns trees [%d,%d) of %d, run %s", rank, firstTree, firstTree+count, conn.NumTrees, uuid.New())

	return &Forest{opts: o, Comm: comm, P2P: p2p, Conn: conn, Local: local, State: state}, nil
}

// splitTreesAcrossRanks divides numTrees contiguously across size
// processes, with the first (numTrees mod size) ranks getting one extra
// tree each.
func splitTreesAcrossRanks(numTrees, size, rank int) (firstTree, count int) {
	base := numTrees / size
	rem := numTrees % size
	firstTree = rank*base
	if rank < rem {
		firstTree += rank
		count = base + 1
	} else {
		firstTree += rem
		count = base
	}
	return firstTree, count
}

// Balance runs 2:1 balancing (and its internal linearization pass) over
// every locally-held tree.
func (f *Forest) Balance(ctx context.Context, mode qtree.Mode) error {
	return f.run(ctx, "balance", func() error {
		for _, tr := range f.Local.Trees {
			qtree.BalanceSubtree(tr, mode)
		}
		return nil
	})
}

// Repartition moves leaves between processes so process p ends up with
// newCount[p] of them, updating Local and State in place.
func (f *Forest) Repartition(ctx context.Context, newCount []int64) (int64, error) {
	var shipped int64
	err := f.run(ctx, "repartition", func() error {
		var err error
		shipped, err = partition.PartitionGiven(ctx, f.Comm, f.P2P, f.Local, f.State, newCount)
		return err
	})
	return shipped, err
}

// Checksum folds every local tree's qtree.Tree.Checksum into a single
// value, in ascending tree-id order so it is stable across processes that
// happen to hold the same trees.
func (f *Forest) Checksum() uint64 {
	var acc uint64
	for i, tr := range f.Local.Trees {
		acc = acc*31 + uint64(f.Local.FirstTree+i) + tr.Checksum()
	}
	return acc
}

// Close verifies every local tree's payload arena has no outstanding
// allocations. It does not release any transport or comm resources: those
// are owned by whoever constructed Comm/P2P.
func (f *Forest) Close() error {
	for i, tr := range f.Local.Trees {
		if bal := tr.Payload.Balance(); bal != 0 {
			return fmt.Errorf("%w: tree %d has balance %d", ErrArenaLeak, f.Local.FirstTree+i, bal)
		}
	}
	return nil
}

// run wraps a forest operation with the fail-stop recovery contract: a
// panic from a core invariant violation is logged and handed to the
// configured abort handler, then surfaced to the caller as an error. With
// no handler configured it goes to transport.Collectives.Abort instead,
// which does not return.
func (f *Forest) run(ctx context.Context, name string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		wrapped := fmt.Errorf("forest: %s: %v", name, r)
		logger.Sugar.Errorf("forest: rank %d aborting after panic in %s: %v", f.Comm.CommRank(), name, r)
		if f.opts.abortHandler != nil {
			f.opts.abortHandler(wrapped)
			err = wrapped
			return
		}
		f.Comm.Abort(ctx, wrapped)
		err = wrapped
	}()
	return fn()
}
