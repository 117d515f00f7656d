package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

func refundParams(id, amount, fee string) map[string]any {
	return map[string]any{
		"transaction_id": "txn-1",
		"refund": map[string]any{
			"id":         id,
			"amount":     map[string]string{"amount": amount, "asset": fiatUSD},
			"amount_fee": map[string]string{"amount": fee, "asset": fiatUSD},
		},
	}
}

func TestNotifyRefundInitiated(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, receivedDepositTxn(platformrpc.StatusPendingAnchor))

	resp, err := env.call(t, MethodNotifyRefundInitiated, refundParams("ref-1", "40", "1"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingExternal, resp.Status)

	stored := env.load(t, "txn-1")
	require.NotNil(t, stored.Refunds)
	assert.Equal(t, "40", stored.Refunds.AmountRefunded)
	assert.Equal(t, "1", stored.Refunds.AmountFee)
	require.Len(t, stored.Refunds.Payments, 1)
	assert.Equal(t, platformrpc.RefundIDTypeExternal, stored.Refunds.Payments[0].IDType)
}

func TestRefundAssetMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, receivedDepositTxn(platformrpc.StatusPendingAnchor))

	t.Run("amount asset", func(t *testing.T) {
		params := map[string]any{
			"transaction_id": "txn-1",
			"refund": map[string]any{
				"id":         "ref-1",
				"amount":     map[string]string{"amount": "40", "asset": stellarUSDC},
				"amount_fee": map[string]string{"amount": "1", "asset": fiatUSD},
			},
		}
		_, err := env.call(t, MethodNotifyRefundPending, params)
		require.Error(t, err)
		assert.Equal(t,
			"refund.amount.asset does not match transaction amount_in_asset",
			errors.AsError(err).Message)
	})

	t.Run("fee asset", func(t *testing.T) {
		params := map[string]any{
			"transaction_id": "txn-1",
			"refund": map[string]any{
				"id":         "ref-1",
				"amount":     map[string]string{"amount": "40", "asset": fiatUSD},
				"amount_fee": map[string]string{"amount": "1", "asset": stellarUSDC},
			},
		}
		_, err := env.call(t, MethodNotifyRefundPending, params)
		require.Error(t, err)
		assert.Equal(t,
			"refund.amount_fee.asset does not match match transaction amount_fee_asset",
			errors.AsError(err).Message)
	})
}

func TestNotifyRefundSentAggregatesAlwaysDerived(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingAnchor)
	txn.AmountIn = "10"
	env.seed(t, txn)

	resp, err := env.call(t, MethodNotifyRefundSent, refundParams("1", "1", "0.1"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, resp.Status)

	stored := env.load(t, "txn-1")
	assert.Equal(t, "1", stored.Refunds.AmountRefunded)
	assert.Equal(t, "0.1", stored.Refunds.AmountFee)
	require.Len(t, stored.Refunds.Payments, 1)

	// Resubmitting the same refund id replaces the prior entry and the
	// aggregates recompute from scratch.
	resp, err = env.call(t, MethodNotifyRefundSent, refundParams("1", "1.5", "0.2"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, resp.Status)

	stored = env.load(t, "txn-1")
	assert.Equal(t, "1.5", stored.Refunds.AmountRefunded)
	assert.Equal(t, "0.2", stored.Refunds.AmountFee)
	require.Len(t, stored.Refunds.Payments, 1)
}

func TestNotifyRefundSentCompletionTrigger(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingAnchor)
	txn.AmountIn = "2"
	env.seed(t, txn)

	resp, err := env.call(t, MethodNotifyRefundSent, refundParams("1", "1", "0"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, resp.Status)
	assert.Nil(t, resp.CompletedAt)

	resp, err = env.call(t, MethodNotifyRefundSent, refundParams("2", "1", "0"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusRefunded, resp.Status)
	require.NotNil(t, resp.CompletedAt)

	stored := env.load(t, "txn-1")
	assert.Equal(t, "2", stored.Refunds.AmountRefunded)
	require.Len(t, stored.Refunds.Payments, 2)
}

func TestNotifyRefundSentExceedsAmountIn(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingAnchor)
	txn.AmountIn = "2"
	env.seed(t, txn)

	_, err := env.call(t, MethodNotifyRefundSent, refundParams("1", "2", "0.5"))
	require.Error(t, err)
	assert.Equal(t, "Refund amount exceeds amount_in", errors.AsError(err).Message)

	// The failed call must not persist its mutation.
	stored := env.load(t, "txn-1")
	assert.Nil(t, stored.Refunds)
	assert.Equal(t, platformrpc.StatusPendingAnchor, stored.Status)
}

func TestNotifyRefundSentRequiresRefundFromPendingAnchor(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, receivedDepositTxn(platformrpc.StatusPendingAnchor))

	_, err := env.call(t, MethodNotifyRefundSent, map[string]any{"transaction_id": "txn-1"})
	require.Error(t, err)
	assert.Equal(t, "refund is required", errors.AsError(err).Message)
}

func TestNotifyRefundSentUnknownIDInPendingExternal(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingExternal)
	txn.Refunds = &platformrpc.Refunds{
		AmountRefunded: "40",
		AmountFee:      "1",
		Payments: []platformrpc.RefundPayment{
			{ID: "ref-1", IDType: platformrpc.RefundIDTypeExternal, Amount: "40", Fee: "1"},
		},
	}
	env.seed(t, txn)

	_, err := env.call(t, MethodNotifyRefundSent, refundParams("ref-unknown", "40", "1"))
	require.Error(t, err)
	assert.Equal(t, "Invalid refund id", errors.AsError(err).Message)

	// The recorded id confirms the pending refund and keeps totals.
	resp, err := env.call(t, MethodNotifyRefundSent, refundParams("ref-1", "40", "1"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, resp.Status)
	require.Len(t, env.load(t, "txn-1").Refunds.Payments, 1)
}

func TestDoStellarRefund(t *testing.T) {
	withdrawal := func() *platformrpc.Transaction {
		txn := receivedDepositTxn(platformrpc.StatusPendingAnchor)
		txn.Kind = platformrpc.KindWithdrawal
		return txn
	}

	t.Run("requires custody integration", func(t *testing.T) {
		env := newTestEnv(t)
		env.deps.CustodyEnabled = false
		env.seed(t, withdrawal())

		_, err := env.call(t, MethodDoStellarRefund, refundParams("ref-1", "40", "1"))
		require.Error(t, err)
		assert.Equal(t,
			"Action[do_stellar_refund] requires enabled custody integration",
			errors.AsError(err).Message)
	})

	t.Run("submits custody refund without recording it", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t, withdrawal())

		resp, err := env.call(t, MethodDoStellarRefund, refundParams("ref-1", "40", "1"))
		require.NoError(t, err)
		assert.Equal(t, platformrpc.StatusPendingStellar, resp.Status)

		require.Len(t, env.custody.refunds, 1)
		assert.Equal(t, "ref-1", env.custody.refunds[0].ID)
		assert.Equal(t, platformrpc.RefundIDTypeStellar, env.custody.refunds[0].IDType)

		// The payment record lands later via notify_refund_sent.
		assert.Nil(t, env.load(t, "txn-1").Refunds)
	})
}

func TestNotifyRefundSentWithdrawalAfterStellarRefund(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingAnchor)
	txn.Kind = platformrpc.KindWithdrawal
	env.seed(t, txn)

	// do_stellar_refund submits the custody refund and parks the
	// withdrawal in pending_stellar without recording a payment.
	resp, err := env.call(t, MethodDoStellarRefund, refundParams("ref-1", "99", "1"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingStellar, resp.Status)

	// notify_refund_sent then records the observed on-chain payment
	// and closes the refund once it covers amount_in.
	resp, err = env.call(t, MethodNotifyRefundSent, refundParams("ref-1", "99", "1"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusRefunded, resp.Status)

	stored := env.load(t, "txn-1")
	require.NotNil(t, stored.Refunds)
	require.Len(t, stored.Refunds.Payments, 1)
	assert.Equal(t, platformrpc.RefundIDTypeStellar, stored.Refunds.Payments[0].IDType)
}

func TestNotifyRefundSentWithdrawalPartialFromPendingStellar(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingStellar)
	txn.Kind = platformrpc.KindWithdrawal
	env.seed(t, txn)

	resp, err := env.call(t, MethodNotifyRefundSent, refundParams("ref-1", "40", "1"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, resp.Status)
}

func TestNotifyRefundSentUnknownIDInPendingStellar(t *testing.T) {
	env := newTestEnv(t)
	txn := receivedDepositTxn(platformrpc.StatusPendingStellar)
	txn.Kind = platformrpc.KindWithdrawal
	txn.Refunds = &platformrpc.Refunds{
		AmountRefunded: "40",
		AmountFee:      "1",
		Payments: []platformrpc.RefundPayment{
			{ID: "ref-1", IDType: platformrpc.RefundIDTypeStellar, Amount: "40", Fee: "1"},
		},
	}
	env.seed(t, txn)

	_, err := env.call(t, MethodNotifyRefundSent, refundParams("ref-unknown", "40", "1"))
	require.Error(t, err)
	assert.Equal(t, "Invalid refund id", errors.AsError(err).Message)
}

func TestRefundAggregateInvariant(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, receivedDepositTxn(platformrpc.StatusPendingAnchor))

	_, err := env.call(t, MethodNotifyRefundPending, refundParams("ref-1", "20", "0.5"))
	require.NoError(t, err)

	stored := env.load(t, "txn-1")
	assert.Equal(t, "20", stored.Refunds.AmountRefunded)
	assert.Equal(t, "0.5", stored.Refunds.AmountFee)

	// Drive the recorded refund through sent and re-check derivation.
	resp, err := env.call(t, MethodNotifyRefundSent, refundParams("ref-1", "25", "0.5"))
	require.NoError(t, err)
	assert.Equal(t, platformrpc.StatusPendingAnchor, resp.Status)

	stored = env.load(t, "txn-1")
	assert.Equal(t, "25", stored.Refunds.AmountRefunded)
	assert.Equal(t, "0.5", stored.Refunds.AmountFee)
	require.Len(t, stored.Refunds.Payments, 1)
}
