package platformrpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusFamilies(t *testing.T) {
	assert.True(t, StatusError.IsError())
	assert.True(t, StatusExpired.IsError())
	assert.False(t, StatusPendingAnchor.IsError())

	assert.True(t, StatusCompleted.IsFinal())
	assert.True(t, StatusRefunded.IsFinal())
	assert.False(t, StatusExpired.IsFinal())
	assert.False(t, StatusPendingStellar.IsFinal())
}

func TestTransactionClone(t *testing.T) {
	received := time.Now().UTC()
	original := &Transaction{
		ID:                 "txn-1",
		Status:             StatusPendingAnchor,
		TransferReceivedAt: &received,
		Refunds: &Refunds{
			AmountRefunded: "10",
			AmountFee:      "1",
			Payments: []RefundPayment{
				{ID: "ref-1", IDType: RefundIDTypeExternal, Amount: "10", Fee: "1"},
			},
		},
		StellarTransactions: []StellarTransaction{
			{ID: "hash-1", Payments: []StellarPayment{{ID: "op-1", Amount: "10"}}},
		},
	}

	clone := original.Clone()
	clone.Status = StatusCompleted
	*clone.TransferReceivedAt = received.Add(time.Hour)
	clone.Refunds.Payments[0].Amount = "99"
	clone.StellarTransactions[0].Payments[0].Amount = "99"

	assert.Equal(t, StatusPendingAnchor, original.Status)
	assert.Equal(t, received, *original.TransferReceivedAt)
	assert.Equal(t, "10", original.Refunds.Payments[0].Amount)
	assert.Equal(t, "10", original.StellarTransactions[0].Payments[0].Amount)
}

func TestFundsReceived(t *testing.T) {
	txn := &Transaction{}
	assert.False(t, txn.FundsReceived())

	now := time.Now().UTC()
	txn.TransferReceivedAt = &now
	assert.True(t, txn.FundsReceived())
}
