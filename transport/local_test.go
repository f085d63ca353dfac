package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalCommSendToSelf(t *testing.T) {
	ctx := context.Background()
	c := NewLocalComm()
	require.Equal(t, 1, c.CommSize())
	require.Equal(t, 0, c.CommRank())

	send, err := c.Isend(ctx, 0, []byte("hello"))
	require.NoError(t, err)
	recv, err := c.Irecv(ctx, 0, 5)
	require.NoError(t, err)

	require.NoError(t, c.Waitall(ctx, []*Request{send, recv}))
	require.Equal(t, []byte("hello"), recv.Bytes())
}

func TestLocalCommWaitallEmptyIsNoop(t *testing.T) {
	c := NewLocalComm()
	require.NoError(t, c.Waitall(context.Background(), nil))
}

func TestLocalCommBcastRoundTrip(t *testing.T) {
	c := NewLocalComm()
	out, err := c.Bcast(context.Background(), 0, []byte("path"))
	require.NoError(t, err)
	require.Equal(t, []byte("path"), out)
}
