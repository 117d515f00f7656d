package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// allStatuses enumerates the full status set for handlers whose
// legality is defined by exclusion.
var allStatuses = []platformrpc.Status{
	platformrpc.StatusIncomplete,
	platformrpc.StatusPendingAnchor,
	platformrpc.StatusPendingUserTransferStart,
	platformrpc.StatusPendingExternal,
	platformrpc.StatusPendingStellar,
	platformrpc.StatusPendingTrust,
	platformrpc.StatusPendingReceiver,
	platformrpc.StatusPendingSender,
	platformrpc.StatusPendingCustomerInfoUpdate,
	platformrpc.StatusCompleted,
	platformrpc.StatusRefunded,
	platformrpc.StatusExpired,
	platformrpc.StatusError,
}

// notifyTransactionExpired abandons a transaction the user walked away
// from.
type notifyTransactionExpired struct {
	deps *Deps
}

func (h *notifyTransactionExpired) Method() Method {
	return MethodNotifyTransactionExpired
}

func (h *notifyTransactionExpired) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyTransactionExpiredRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyTransactionExpired) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	set := make(StatusSet)
	for _, s := range allStatuses {
		if s.IsError() || s.IsFinal() {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

func (h *notifyTransactionExpired) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

func (h *notifyTransactionExpired) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

func (h *notifyTransactionExpired) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusExpired, nil
}
