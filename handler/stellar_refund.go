package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// doStellarRefund asks the custody service to return on-chain funds to
// the user for a withdrawal that cannot complete. The refund payment is
// recorded later by notify_refund_sent, once it is observed on chain.
type doStellarRefund struct {
	deps *Deps
}

func (h *doStellarRefund) Method() Method {
	return MethodDoStellarRefund
}

func (h *doStellarRefund) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req DoStellarRefundRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *doStellarRefund) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 || txn.Kind != platformrpc.KindWithdrawal {
		return nil
	}
	if !txn.FundsReceived() {
		return nil
	}
	return statuses(platformrpc.StatusPendingAnchor)
}

func (h *doStellarRefund) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(DoStellarRefundRequest)

	if !h.deps.CustodyEnabled {
		return errors.NewInvalidParams(
			"Action[%s] requires enabled custody integration", h.Method())
	}
	if err := h.deps.validateRefundDetail(txn, &r.Refund); err != nil {
		return err
	}
	return assertRefundWithinAmountIn(txn, &r.Refund)
}

func (h *doStellarRefund) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(DoStellarRefundRequest)

	payment := platformrpc.RefundPayment{
		ID:     r.Refund.ID,
		IDType: platformrpc.RefundIDTypeStellar,
		Amount: r.Refund.Amount.Amount,
		Fee:    r.Refund.AmountFee.Amount,
	}
	if err := h.deps.Custody.CreateTransactionRefund(ctx, txn.ID, payment); err != nil {
		return errors.NewInternalError("failed to submit custody refund", err)
	}
	return nil
}

func (h *doStellarRefund) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingStellar, nil
}
