package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// notifyInteractiveFlowCompleted records the amounts agreed during the
// interactive flow and hands the transaction to the anchor.
type notifyInteractiveFlowCompleted struct {
	deps *Deps
}

func (h *notifyInteractiveFlowCompleted) Method() Method {
	return MethodNotifyInteractiveFlowCompleted
}

func (h *notifyInteractiveFlowCompleted) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyInteractiveFlowCompletedRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyInteractiveFlowCompleted) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 && txn.Protocol != platformrpc.Sep31 {
		return nil
	}
	return statuses(platformrpc.StatusIncomplete, platformrpc.StatusError)
}

func (h *notifyInteractiveFlowCompleted) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyInteractiveFlowCompletedRequest)

	// A deposit converts off-chain funds into an on-chain asset; a
	// withdrawal or cross-border receive is the mirror image.
	inboundStellar := txn.Kind != platformrpc.KindDeposit

	if err := h.deps.validateAmount("amount_in", r.AmountIn.Amount, r.AmountIn.Asset, false); err != nil {
		return err
	}
	if err := assertStellarAsset("amount_in", r.AmountIn.Asset, inboundStellar); err != nil {
		return err
	}

	if err := h.deps.validateAmount("amount_out", r.AmountOut.Amount, r.AmountOut.Asset, false); err != nil {
		return err
	}
	if err := assertStellarAsset("amount_out", r.AmountOut.Asset, !inboundStellar); err != nil {
		return err
	}

	if err := h.deps.validateAmount("amount_fee", r.AmountFee.Amount, r.AmountFee.Asset, true); err != nil {
		return err
	}
	if err := assertStellarAsset("amount_fee", r.AmountFee.Asset, inboundStellar); err != nil {
		return err
	}

	if r.AmountExpected != nil {
		if err := h.deps.validateAmount("amount_expected", r.AmountExpected.Amount, r.AmountIn.Asset, false); err != nil {
			return err
		}
	}
	return nil
}

func (h *notifyInteractiveFlowCompleted) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyInteractiveFlowCompletedRequest)

	txn.AmountIn = r.AmountIn.Amount
	txn.AmountInAsset = r.AmountIn.Asset
	txn.AmountOut = r.AmountOut.Amount
	txn.AmountOutAsset = r.AmountOut.Asset
	txn.AmountFee = r.AmountFee.Amount
	txn.AmountFeeAsset = r.AmountFee.Asset

	if r.AmountExpected != nil {
		txn.AmountExpected = r.AmountExpected.Amount
	} else {
		txn.AmountExpected = r.AmountIn.Amount
	}

	if r.DestinationAccount != "" {
		txn.DestinationAccount = r.DestinationAccount
	}
	return nil
}

func (h *notifyInteractiveFlowCompleted) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingAnchor, nil
}
