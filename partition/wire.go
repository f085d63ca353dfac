package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// wireRecordSize is the packed width of one quadrant record: x, y (8 bytes
// each), level (1 byte, padded to 8 for alignment with the C
// struct-of-primitives layout this mirrors), then the two 32-bit piggy
// fields (destination tree id, origin process) quadrant.Piggy already
// models for in-transit quadrants.
const wireRecordSize = 32

func packRecord(buf []byte, q quadrant.Quadrant, treeIdx int32, procIdx int32) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(q.X))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(q.Y))
	buf[16] = q.Level
	binary.LittleEndian.PutUint32(buf[24:28], uint32(treeIdx))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(procIdx))
}

func unpackRecord(buf []byte) (q quadrant.Quadrant, treeIdx int32) {
	x := int64(binary.LittleEndian.Uint64(buf[0:8]))
	y := int64(binary.LittleEndian.Uint64(buf[8:16]))
	level := buf[16]
	treeIdx = int32(binary.LittleEndian.Uint32(buf[24:28]))
	return quadrant.Quadrant{X: x, Y: y, Level: level}, treeIdx
}

type treeCount struct {
	treeID int32
	count  int32
}

func groupByTree(segs []wireLeaf) []treeCount {
	var counts []treeCount
	for _, s := range segs {
		if len(counts) == 0 || counts[len(counts)-1].treeID != s.TreeID {
			counts = append(counts, treeCount{treeID: s.TreeID})
		}
		counts[len(counts)-1].count++
	}
	return counts
}

// packSendBuffer builds one send-pair message: a header of per-tree leaf
// counts (so the receiver can preallocate before scanning records), the
// packed quadrant records, then the flattened payload bytes in the same
// order. The payload region is present even for zero-length payloads, kept
// at a fixed dataSize stride so the receiver can index straight into it.
func packSendBuffer(segs []wireLeaf, myRank int, dataSize int) []byte {
	counts := groupByTree(segs)
	headerLen := 4 + 8*len(counts)
	buf := make([]byte, headerLen+len(segs)*wireRecordSize+len(segs)*dataSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(counts)))
	off := 4
	for _, c := range counts {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(c.treeID))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(c.count))
		off += 8
	}
	for _, s := range segs {
		packRecord(buf[off:off+wireRecordSize], s.Q, s.TreeID, int32(myRank))
		off += wireRecordSize
	}
	for _, s := range segs {
		copy(buf[off:off+dataSize], s.Payload)
		off += dataSize
	}
	return buf
}

// unpackRecvBuffer reverses packSendBuffer.
func unpackRecvBuffer(buf []byte, dataSize int) ([]wireLeaf, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("partition: truncated wire header")
	}
	numTrees := int(binary.LittleEndian.Uint32(buf[0:4]))
	off := 4
	k := 0
	for i := 0; i < numTrees; i++ {
		if off+8 > len(buf) {
			return nil, fmt.Errorf("partition: truncated tree count table")
		}
		k += int(binary.LittleEndian.Uint32(buf[off+4 : off+8]))
		off += 8
	}
	recordsStart := off
	payloadStart := recordsStart + k*wireRecordSize
	if payloadStart+k*dataSize > len(buf) {
		return nil, fmt.Errorf("partition: truncated wire body")
	}
	out := make([]wireLeaf, k)
	for i := 0; i < k; i++ {
		q, treeIdx := unpackRecord(buf[recordsStart+i*wireRecordSize : recordsStart+(i+1)*wireRecordSize])
		var payload []byte
		if dataSize > 0 {
			payload = append([]byte(nil), buf[payloadStart+i*dataSize:payloadStart+(i+1)*dataSize]...)
		}
		out[i] = wireLeaf{Q: q, TreeID: treeIdx, Payload: payload}
	}
	return out, nil
}
