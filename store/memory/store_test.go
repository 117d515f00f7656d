package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

func sample() *platformrpc.Transaction {
	return &platformrpc.Transaction{
		ID:       "txn-1",
		Protocol: platformrpc.Sep24,
		Kind:     platformrpc.KindDeposit,
		Status:   platformrpc.StatusIncomplete,
	}
}

func TestFindUnknownID(t *testing.T) {
	store := New()

	txn, err := store.Find(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, txn)
}

func TestSaveAndFindReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))

	first, err := store.Find(ctx, "txn-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Mutating the returned copy must not leak into the store.
	first.Status = platformrpc.StatusCompleted

	second, err := store.Find(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusIncomplete, second.Status)
}

func TestSaveRevisionConflict(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))

	// A writer holding the stale revision loses.
	stale := sample()
	err := store.Save(ctx, stale)
	require.Error(t, err)
	assert.Equal(t, errors.STORE_ERROR, errors.AsError(err).Code)

	// A fresh read carries the current revision and wins.
	current, err := store.Find(ctx, "txn-1")
	require.NoError(t, err)
	current.Status = platformrpc.StatusPendingAnchor
	require.NoError(t, store.Save(ctx, current))

	stored, err := store.Find(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, stored.Status)
	assert.Equal(t, int64(2), stored.Seq)
}

func TestSaveNewWithNonZeroSeq(t *testing.T) {
	store := New()

	txn := sample()
	txn.Seq = 3
	err := store.Save(context.Background(), txn)
	require.Error(t, err)
	assert.Equal(t, errors.STORE_ERROR, errors.AsError(err).Code)
}
