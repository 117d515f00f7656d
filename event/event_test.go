package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

func TestPublishStatusChanged(t *testing.T) {
	pub := NewPublisher()

	var received []platformrpc.TransactionEvent
	handler := func(evt platformrpc.TransactionEvent) {
		received = append(received, evt)
	}
	require.NoError(t, pub.Subscribe(handler))

	pub.PublishStatusChanged(platformrpc.TransactionEvent{
		Transaction: &platformrpc.Transaction{
			ID:     "txn-1",
			Status: platformrpc.StatusPendingAnchor,
		},
	})

	// Subscribers run synchronously on the publishing goroutine.
	require.Len(t, received, 1)
	assert.NotEmpty(t, received[0].ID)
	assert.Equal(t, platformrpc.EventTypeTransactionStatusChanged, received[0].Type)
	assert.Equal(t, "txn-1", received[0].Transaction.ID)

	require.NoError(t, pub.Unsubscribe(handler))
	pub.PublishStatusChanged(platformrpc.TransactionEvent{
		Transaction: &platformrpc.Transaction{ID: "txn-2"},
	})
	assert.Len(t, received, 1)
}

func TestPublishPreservesExplicitMetadata(t *testing.T) {
	pub := NewPublisher()

	var got platformrpc.TransactionEvent
	require.NoError(t, pub.Subscribe(func(evt platformrpc.TransactionEvent) {
		got = evt
	}))

	pub.PublishStatusChanged(platformrpc.TransactionEvent{
		ID:          "evt-1",
		Type:        platformrpc.EventTypeTransactionStatusChanged,
		Transaction: &platformrpc.Transaction{ID: "txn-1"},
	})

	assert.Equal(t, "evt-1", got.ID)
}
