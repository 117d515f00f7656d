package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// notifyAmountsUpdated overrides the outbound amounts while the anchor
// holds the transaction.
type notifyAmountsUpdated struct {
	deps *Deps
}

func (h *notifyAmountsUpdated) Method() Method {
	return MethodNotifyAmountsUpdated
}

func (h *notifyAmountsUpdated) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyAmountsUpdatedRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyAmountsUpdated) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if !txn.FundsReceived() {
		return nil
	}
	return statuses(platformrpc.StatusPendingAnchor)
}

func (h *notifyAmountsUpdated) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyAmountsUpdatedRequest)

	if err := h.deps.validateAmount("amount_out", r.AmountOut.Amount, txn.AmountOutAsset, false); err != nil {
		return err
	}
	return h.deps.validateAmount("amount_fee", r.AmountFee.Amount, txn.AmountFeeAsset, true)
}

func (h *notifyAmountsUpdated) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyAmountsUpdatedRequest)

	txn.AmountOut = r.AmountOut.Amount
	txn.AmountFee = r.AmountFee.Amount
	return nil
}

func (h *notifyAmountsUpdated) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingAnchor, nil
}
