package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// doStellarPayment asks the custody service to submit the outbound
// on-chain payment of a deposit. Without a destination trustline the
// transaction parks in pending_trust instead.
type doStellarPayment struct {
	deps *Deps
}

func (h *doStellarPayment) Method() Method {
	return MethodDoStellarPayment
}

func (h *doStellarPayment) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req DoStellarPaymentRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *doStellarPayment) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 || txn.Kind != platformrpc.KindDeposit {
		return nil
	}
	if !txn.FundsReceived() {
		return nil
	}
	return statuses(platformrpc.StatusPendingAnchor)
}

func (h *doStellarPayment) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	if !h.deps.CustodyEnabled {
		return errors.NewInvalidRequest(
			"Action[%s] requires enabled custody integration", h.Method())
	}
	return nil
}

func (h *doStellarPayment) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

// NextStatus both decides the transition and dispatches the custody
// payment, so the trustline is queried exactly once per call.
func (h *doStellarPayment) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	if !h.deps.Chain.IsTrustLineConfigured(txn.DestinationAccount, txn.AmountOutAsset) {
		return platformrpc.StatusPendingTrust, nil
	}
	if err := h.deps.Custody.CreateTransactionPayment(ctx, txn.ID); err != nil {
		return "", errors.NewInternalError("failed to submit custody payment", err)
	}
	return platformrpc.StatusPendingStellar, nil
}
