package partition

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/datatrails/go-datatrails-quadforest/transport"
)

// PartitionGiven reassigns leaves across the process group to match
// newCount[p], the number of leaves process p should own after the call.
// sum(newCount) must equal the forest's current total; every process must
// call PartitionGiven with the same newCount.
//
// On return, local has been rebuilt to hold exactly this process's new
// slice and state has been updated in place to reflect it.
// total_quadrants_shipped is returned for callers that want to log or
// budget repartition cost: the sum over every process p of
// min(|old slice of p Δ new slice of p|, newCount[p]). It is the same
// global value on every process.
func PartitionGiven(ctx context.Context, comm transport.Collectives, p2p transport.PointToPoint, local *Local, state *GlobalState, newCount []int64) (int64, error) {
	size := comm.CommSize()
	rank := comm.CommRank()
	if len(newCount) != size {
		return 0, fmt.Errorf("partition: newCount has %d entries, comm size is %d", len(newCount), size)
	}
	if len(state.LastQuadIndex) != size {
		return 0, fmt.Errorf("partition: global state has %d ranks, comm size is %d", len(state.LastQuadIndex), size)
	}

	oldFirst, oldLast := rangesFromCumulative(state.LastQuadIndex)
	newFirst, newLast := prefixRanges(newCount)

	var total int64
	for i, c := range newCount {
		if c < 0 {
			return 0, fmt.Errorf("partition: newCount[%d] is negative", i)
		}
		total += c
	}
	if oldTotal := state.LastQuadIndex[size-1]; total != oldTotal {
		return 0, fmt.Errorf("partition: newCount totals %d, forest holds %d", total, oldTotal)
	}

	myOldFirst, myOldLast := oldFirst[rank], oldLast[rank]

	// Step 2/3/4: post this rank's outgoing sends (skipping the self pair,
	// handled directly below with no wire trip) then post the matching
	// receives, and wait on all of them together.
	var sendReqs []*transport.Request
	var recvReqs []*transport.Request

	for q := 0; q < size; q++ {
		if q == rank {
			continue
		}
		lo, hi := overlap(myOldFirst, myOldLast, newFirst[q], newLast[q])
		if lo > hi {
			continue
		}
		segs := local.extractSegment(myOldFirst, lo, hi)
		buf := packSendBuffer(segs, rank, local.DataSize)
		req, err := p2p.Isend(ctx, q, buf)
		if err != nil {
			return 0, fmt.Errorf("partition: isend to rank %d: %w", q, err)
		}
		sendReqs = append(sendReqs, req)
	}

	for p := 0; p < size; p++ {
		if p == rank {
			continue
		}
		lo, hi := overlap(oldFirst[p], oldLast[p], newFirst[rank], newLast[rank])
		if lo > hi {
			continue
		}
		req, err := p2p.Irecv(ctx, p, -1)
		if err != nil {
			return 0, fmt.Errorf("partition: irecv from rank %d: %w", p, err)
		}
		recvReqs = append(recvReqs, req)
	}

	all := make([]*transport.Request, 0, len(sendReqs)+len(recvReqs))
	all = append(all, sendReqs...)
	all = append(all, recvReqs...)
	if err := p2p.Waitall(ctx, all); err != nil {
		return 0, fmt.Errorf("partition: waitall: %w", err)
	}

	// Step 5: rebuild locally. The kept self-overlap segment and every
	// received segment together make up this rank's new slice.
	selfLo, selfHi := overlap(myOldFirst, myOldLast, newFirst[rank], newLast[rank])
	incoming := local.extractSegment(myOldFirst, selfLo, selfHi)
	for _, req := range recvReqs {
		segs, err := unpackRecvBuffer(req.Bytes(), local.DataSize)
		if err != nil {
			return 0, err
		}
		incoming = append(incoming, segs...)
	}

	rebuilt := rebuildLocal(incoming, local.DataSize)
	*local = *rebuilt

	// Step 6: install the new cumulative counts and recompute
	// global_first_position by gathering every rank's own first position.
	newCum := make([]int64, size)
	var running int64
	for i, c := range newCount {
		running += c
		newCum[i] = running
	}
	numTrees := state.FirstPosition[len(state.FirstPosition)-1].WhichTree
	positions, err := allgatherFirstPositions(ctx, comm, local, numTrees)
	if err != nil {
		return 0, err
	}
	state.LastQuadIndex = newCum
	state.FirstPosition = positions

	// Step 7: total_quadrants_shipped.
	var shipped int64
	for p := 0; p < size; p++ {
		d := rangeSymmetricDifference(oldFirst[p], oldLast[p], newFirst[p], newLast[p])
		if d > newCount[p] {
			d = newCount[p]
		}
		shipped += d
	}
	return shipped, nil
}

func prefixRanges(counts []int64) (first, last []int64) {
	n := len(counts)
	first = make([]int64, n)
	last = make([]int64, n)
	var running int64
	for i, c := range counts {
		first[i] = running
		last[i] = running + c - 1
		running += c
	}
	return first, last
}

func rangesFromCumulative(cum []int64) (first, last []int64) {
	n := len(cum)
	first = make([]int64, n)
	last = make([]int64, n)
	var prev int64
	for i, c := range cum {
		first[i] = prev
		last[i] = c - 1
		prev = c
	}
	return first, last
}

// overlap returns the intersection [lo, hi] of two inclusive index ranges.
// If they do not overlap (or either is empty), lo > hi.
func overlap(aFirst, aLast, bFirst, bLast int64) (int64, int64) {
	lo := aFirst
	if bFirst > lo {
		lo = bFirst
	}
	hi := aLast
	if bLast < hi {
		hi = bLast
	}
	return lo, hi
}

func rangeLen(first, last int64) int64 {
	if last < first {
		return 0
	}
	return last - first + 1
}

func rangeSymmetricDifference(oldFirst, oldLast, newFirst, newLast int64) int64 {
	lo, hi := overlap(oldFirst, oldLast, newFirst, newLast)
	inter := rangeLen(lo, hi)
	return rangeLen(oldFirst, oldLast) + rangeLen(newFirst, newLast) - 2*inter
}

func allgatherFirstPositions(ctx context.Context, comm transport.Collectives, local *Local, numTrees int) ([]Position, error) {
	pos := local.firstPosition()
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(pos.WhichTree))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(pos.X))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(pos.Y))

	all, err := comm.Allgather(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("partition: allgather first positions: %w", err)
	}
	out := make([]Position, len(all)+1)
	for i, b := range all {
		out[i] = Position{
			WhichTree: int(binary.LittleEndian.Uint32(b[0:4])),
			X:         int64(binary.LittleEndian.Uint64(b[4:12])),
			Y:         int64(binary.LittleEndian.Uint64(b[12:20])),
		}
	}
	out[len(all)] = Position{WhichTree: numTrees}
	return out, nil
}

// NewInitialGlobalState builds a GlobalState from scratch by gathering
// every process's local leaf count and first position: the same
// information PartitionGiven recomputes internally after a repartition,
// used here to seed a forest's state right after construction.
func NewInitialGlobalState(ctx context.Context, comm transport.Collectives, local *Local, numTrees int) (*GlobalState, error) {
	size := comm.CommSize()
	countBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(countBuf, uint64(local.totalLeaves()))
	counts, err := comm.Allgather(ctx, countBuf)
	if err != nil {
		return nil, fmt.Errorf("partition: allgather leaf counts: %w", err)
	}
	lastQuadIndex := make([]int64, size)
	var running int64
	for i, b := range counts {
		running += int64(binary.LittleEndian.Uint64(b))
		lastQuadIndex[i] = running
	}
	positions, err := allgatherFirstPositions(ctx, comm, local, numTrees)
	if err != nil {
		return nil, err
	}
	return &GlobalState{FirstPosition: positions, LastQuadIndex: lastQuadIndex}, nil
}
