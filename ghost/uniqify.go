package ghost

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/datatrails/go-datatrails-quadforest/bloom"
	"github.com/datatrails/go-datatrails-quadforest/quadrant"
)

// byTreeThenMorton sorts overlap entries by (DestTree, Morton id at
// MaxLevel), the tree-prefixed order UniqifyOverlap needs so a single
// linear pass finds both adjacent duplicates and runs sharing a
// destination.
type byTreeThenMorton []Overlap

func (s byTreeThenMorton) Len() int      { return len(s) }
func (s byTreeThenMorton) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byTreeThenMorton) Less(i, j int) bool {
	if s[i].DestTree != s[j].DestTree {
		return s[i].DestTree < s[j].DestTree
	}
	return quadrant.Less(s[i].Quadrant, s[j].Quadrant)
}

// UniqifyOverlap sorts out by (tree, morton), drops adjacent duplicates,
// and drops any entry already present in alreadyHave. alreadyHave must
// already be sorted the same way.
//
// A 4-way Bloom filter sized to len(alreadyHave) is built up front as a
// fast-reject prefilter: a "definitely not present" answer skips the
// binary-search confirmation outright, since that answer is exact; a
// "maybe present" answer still falls through to the binary search, since
// Bloom filters never rule out false positives.
func UniqifyOverlap(alreadyHave, out []Overlap) []Overlap {
	sort.Stable(byTreeThenMorton(out))

	deduped := out[:0]
	for i, o := range out {
		if i > 0 && sameEntry(out[i-1], o) {
			continue
		}
		deduped = append(deduped, o)
	}

	region, ok := buildFilter(alreadyHave)

	result := deduped[:0]
	for _, o := range deduped {
		if ok {
			maybe, err := bloom.MaybeContainsV1(region, 0, entryDigest(o))
			if err == nil && !maybe {
				result = append(result, o)
				continue
			}
		}
		if !containsEntry(alreadyHave, o) {
			result = append(result, o)
		}
	}
	return result
}

func sameEntry(a, b Overlap) bool {
	return a.DestTree == b.DestTree && quadrant.IsEqual(a.Quadrant, b.Quadrant)
}

func entryDigest(o Overlap) []byte {
	var buf [13]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(o.DestTree))
	binary.LittleEndian.PutUint64(buf[4:12], quadrant.LinearID(o.Quadrant, o.Quadrant.Level))
	buf[12] = o.Quadrant.Level
	sum := sha256.Sum256(buf[:])
	return sum[:]
}

func buildFilter(alreadyHave []Overlap) ([]byte, bool) {
	if len(alreadyHave) == 0 {
		return nil, false
	}
	const bitsPerElement = 10
	mBits := bloom.MBitsSafeCast(bloom.MBitsV1(uint64(len(alreadyHave)), bitsPerElement))
	if mBits == 0 {
		return nil, false
	}
	region := make([]byte, bloom.RegionBytesV1(mBits))
	if err := bloom.InitV1(region, uint64(len(alreadyHave)), bitsPerElement, 4); err != nil {
		return nil, false
	}
	for _, o := range alreadyHave {
		if err := bloom.InsertV1(region, 0, entryDigest(o)); err != nil {
			return nil, false
		}
	}
	return region, true
}

// containsEntry does a binary search for o in the sorted alreadyHave slice.
func containsEntry(alreadyHave []Overlap, o Overlap) bool {
	i := sort.Search(len(alreadyHave), func(i int) bool {
		return !less(alreadyHave[i], o)
	})
	return i < len(alreadyHave) && sameEntry(alreadyHave[i], o)
}

func less(a, b Overlap) bool {
	if a.DestTree != b.DestTree {
		return a.DestTree < b.DestTree
	}
	return quadrant.Less(a.Quadrant, b.Quadrant)
}
