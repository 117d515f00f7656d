package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// notifyTrustSet resumes a deposit parked in pending_trust once the
// anchor observes the user's trustline, re-dispatching the custody
// payment that do_stellar_payment deferred. A failed wait returns the
// transaction to the anchor instead.
type notifyTrustSet struct {
	deps *Deps
}

func (h *notifyTrustSet) Method() Method {
	return MethodNotifyTrustSet
}

func (h *notifyTrustSet) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyTrustSetRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyTrustSet) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 || txn.Kind != platformrpc.KindDeposit {
		return nil
	}
	return statuses(platformrpc.StatusPendingTrust)
}

func (h *notifyTrustSet) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

func (h *notifyTrustSet) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyTrustSetRequest)

	if h.deps.CustodyEnabled && r.Success {
		if err := h.deps.Custody.CreateTransactionPayment(ctx, txn.ID); err != nil {
			return errors.NewInternalError("failed to submit custody payment", err)
		}
	}
	return nil
}

func (h *notifyTrustSet) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	r := req.(NotifyTrustSetRequest)

	if !h.deps.CustodyEnabled || !r.Success {
		return platformrpc.StatusPendingAnchor, nil
	}
	return platformrpc.StatusPendingStellar, nil
}
