package forest

import (
	"crypto/rand"
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-quadforest/partition"
	"github.com/veraison/go-cose"
)

// Snapshot is the payload a Checkpoint commits to: the global partition
// state plus a per-tree checksum, enough for a peer to confirm a
// repartition round preserved the forest's content without re-deriving it
// from the raw leaves.
type Snapshot struct {
	FirstPosition []partition.Position `cbor:"1,keyasint"`
	LastQuadIndex []int64              `cbor:"2,keyasint"`
	TreeChecksums []uint64             `cbor:"3,keyasint"`
}

// Checkpoint is a Snapshot sealed in a COSE Sign1 envelope, the same shape
// massifs.Checkpoint wraps an MMRState in.
type Checkpoint struct {
	Snapshot Snapshot
	Msg      cose.Sign1Message
}

// NewCheckpointCodec returns the deterministic CBOR codec checkpoints are
// marshaled with, matching massifs.NewRootSignerCodec's option choice so
// two checkpoints over identical state encode to identical bytes.
func NewCheckpointCodec() (dtcbor.CBORCodec, error) {
	return dtcbor.NewCBORCodec(dtcbor.NewDeterministicEncOpts(), dtcbor.NewDeterministicDecOpts())
}

// NewSnapshot builds a Snapshot from f's current state: one checksum per
// locally-held tree, in ascending tree-id order.
func (f *Forest) NewSnapshot() Snapshot {
	checksums := make([]uint64, len(f.Local.Trees))
	for i, tr := range f.Local.Trees {
		checksums[i] = tr.Checksum()
	}
	return Snapshot{
		FirstPosition: f.State.FirstPosition,
		LastQuadIndex: f.State.LastQuadIndex,
		TreeChecksums: checksums,
	}
}

// SignCheckpoint seals snap in a COSE Sign1 envelope using signer.
func SignCheckpoint(codec dtcbor.CBORCodec, signer cose.Signer, snap Snapshot) (*Checkpoint, error) {
	payload, err := codec.MarshalCBOR(snap)
	if err != nil {
		return nil, fmt.Errorf("forest: marshaling checkpoint payload: %w", err)
	}
	msg := cose.Sign1Message{Payload: payload}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("forest: signing checkpoint: %w", err)
	}
	return &Checkpoint{Snapshot: snap, Msg: msg}, nil
}

// VerifyCheckpoint checks ck's COSE signature and that its embedded
// payload decodes back to the same Snapshot ck claims to carry.
func VerifyCheckpoint(codec dtcbor.CBORCodec, verifier cose.Verifier, ck *Checkpoint) error {
	msg := ck.Msg
	if err := msg.Verify(nil, verifier); err != nil {
		return fmt.Errorf("forest: verifying checkpoint signature: %w", err)
	}
	var decoded Snapshot
	if err := codec.UnmarshalInto(msg.Payload, &decoded); err != nil {
		return fmt.Errorf("forest: decoding checkpoint payload: %w", err)
	}
	if !snapshotsEqual(decoded, ck.Snapshot) {
		return fmt.Errorf("forest: checkpoint payload does not match signed snapshot")
	}
	return nil
}

func snapshotsEqual(a, b Snapshot) bool {
	if len(a.LastQuadIndex) != len(b.LastQuadIndex) ||
		len(a.TreeChecksums) != len(b.TreeChecksums) ||
		len(a.FirstPosition) != len(b.FirstPosition) {
		return false
	}
	for i := range a.LastQuadIndex {
		if a.LastQuadIndex[i] != b.LastQuadIndex[i] {
			return false
		}
	}
	for i := range a.TreeChecksums {
		if a.TreeChecksums[i] != b.TreeChecksums[i] {
			return false
		}
	}
	for i := range a.FirstPosition {
		if a.FirstPosition[i] != b.FirstPosition[i] {
			return false
		}
	}
	return true
}
