package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// requestCustomerInfoUpdate asks the sending anchor for updated KYC
// data on a cross-border receive.
type requestCustomerInfoUpdate struct {
	deps *Deps
}

func (h *requestCustomerInfoUpdate) Method() Method {
	return MethodRequestCustomerInfoUpdate
}

func (h *requestCustomerInfoUpdate) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req RequestCustomerInfoUpdateRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *requestCustomerInfoUpdate) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep31 || txn.Kind != platformrpc.KindReceive {
		return nil
	}
	return statuses(platformrpc.StatusPendingReceiver)
}

func (h *requestCustomerInfoUpdate) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

func (h *requestCustomerInfoUpdate) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

func (h *requestCustomerInfoUpdate) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingCustomerInfoUpdate, nil
}
