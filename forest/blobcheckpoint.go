package forest

import (
	"context"
	"fmt"
	"io"

	"github.com/datatrails/go-datatrails-common/azblob"
)

// BlobCheckpointArchive persists signed checkpoints to blob storage,
// mirroring the massifs.MassifCommitter/blobreader Put/Reader shape over
// azblob.Storer. It is an optional sink: no core forest operation
// (balancing, completion, repartition) depends on one being configured.
type BlobCheckpointArchive struct {
	Storer *azblob.Storer
	Prefix string
}

// NewBlobCheckpointArchive returns an archive rooted at prefix within
// storer's container.
func NewBlobCheckpointArchive(storer *azblob.Storer, prefix string) *BlobCheckpointArchive {
	return &BlobCheckpointArchive{Storer: storer, Prefix: prefix}
}

func (a *BlobCheckpointArchive) checkpointPath(round int) string {
	return fmt.Sprintf("%s/checkpoint-%08d.cbor", a.Prefix, round)
}

// PutCheckpoint writes ck's COSE-signed CBOR encoding under a path keyed
// by repartition round number.
func (a *BlobCheckpointArchive) PutCheckpoint(ctx context.Context, round int, ck *Checkpoint) error {
	data, err := ck.Msg.MarshalCBOR()
	if err != nil {
		return fmt.Errorf("forest: marshaling checkpoint for archive: %w", err)
	}
	if _, err := a.Storer.Put(ctx, a.checkpointPath(round), azblob.NewBytesReaderCloser(data)); err != nil {
		return fmt.Errorf("forest: writing checkpoint blob: %w", err)
	}
	return nil
}

// GetCheckpoint reads back a previously archived checkpoint's raw COSE
// CBOR bytes. Verification is the caller's responsibility, via
// VerifyCheckpoint over the decoded Checkpoint.
func (a *BlobCheckpointArchive) GetCheckpoint(ctx context.Context, round int) ([]byte, error) {
	rr, err := a.Storer.Reader(ctx, a.checkpointPath(round))
	if err != nil {
		return nil, fmt.Errorf("forest: reading checkpoint blob: %w", err)
	}
	defer rr.Reader.Close()
	return io.ReadAll(rr.Reader)
}
