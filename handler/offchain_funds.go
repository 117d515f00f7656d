package handler

import (
	"context"
	"encoding/json"
	"time"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// requestOffchainFunds asks the user to deliver the off-chain leg of a
// deposit.
type requestOffchainFunds struct {
	deps *Deps
}

func (h *requestOffchainFunds) Method() Method {
	return MethodRequestOffchainFunds
}

func (h *requestOffchainFunds) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req RequestOffchainFundsRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *requestOffchainFunds) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Kind != platformrpc.KindDeposit {
		return nil
	}
	switch txn.Protocol {
	case platformrpc.Sep6, platformrpc.Sep24:
		set := statuses(platformrpc.StatusIncomplete)
		if !txn.FundsReceived() {
			set[platformrpc.StatusPendingAnchor] = struct{}{}
			if txn.Protocol == platformrpc.Sep6 {
				set[platformrpc.StatusPendingCustomerInfoUpdate] = struct{}{}
			}
		}
		return set
	}
	return nil
}

func (h *requestOffchainFunds) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(RequestOffchainFundsRequest)

	none := r.AmountIn == nil && r.AmountFee == nil && r.AmountExpected == nil
	all := r.AmountIn != nil && r.AmountFee != nil
	if !none && !all {
		return errors.NewInvalidParams(
			"All (amount_out is optional) or none of the amount_in, amount_out, and amount_fee should be set")
	}

	if r.AmountIn != nil {
		if err := assertStellarAsset("amount_in", r.AmountIn.Asset, false); err != nil {
			return err
		}
		if err := h.deps.validateAmount("amount_in", r.AmountIn.Amount, r.AmountIn.Asset, false); err != nil {
			return err
		}
	}
	if r.AmountOut != nil {
		if err := assertStellarAsset("amount_out", r.AmountOut.Asset, true); err != nil {
			return err
		}
		if err := h.deps.validateAmount("amount_out", r.AmountOut.Amount, r.AmountOut.Asset, false); err != nil {
			return err
		}
	}
	if r.AmountFee != nil {
		if err := assertStellarAsset("amount_fee", r.AmountFee.Asset, false); err != nil {
			return err
		}
		if err := h.deps.validateAmount("amount_fee", r.AmountFee.Amount, r.AmountFee.Asset, true); err != nil {
			return err
		}
	}
	if r.AmountExpected != nil {
		if err := h.deps.validateAmount("amount_expected", r.AmountExpected.Amount, r.AmountIn.Asset, false); err != nil {
			return err
		}
	}

	// Amounts may ride on the request or already be on the transaction,
	// but they have to come from somewhere.
	if r.AmountIn == nil && txn.AmountIn == "" {
		return errors.NewInvalidParams("amount_in is required")
	}
	if r.AmountOut == nil && txn.AmountOut == "" && txn.AmountInAsset == txn.AmountOutAsset {
		return errors.NewInvalidParams("amount_out is required for non-exchange transactions")
	}
	if r.AmountFee == nil && txn.AmountFee == "" {
		return errors.NewInvalidParams("amount_fee is required")
	}
	return nil
}

func (h *requestOffchainFunds) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(RequestOffchainFundsRequest)

	if r.AmountIn != nil {
		txn.AmountIn = r.AmountIn.Amount
		txn.AmountInAsset = r.AmountIn.Asset
	}
	if r.AmountOut != nil {
		txn.AmountOut = r.AmountOut.Amount
		txn.AmountOutAsset = r.AmountOut.Asset
	}
	if r.AmountFee != nil {
		txn.AmountFee = r.AmountFee.Amount
		txn.AmountFeeAsset = r.AmountFee.Asset
	}
	if r.AmountExpected != nil {
		txn.AmountExpected = r.AmountExpected.Amount
	} else if r.AmountIn != nil {
		txn.AmountExpected = r.AmountIn.Amount
	}
	return nil
}

func (h *requestOffchainFunds) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingUserTransferStart, nil
}

// notifyOffchainFundsReceived records receipt of the user's off-chain
// funds and, when custody integration is on, registers the transaction
// with the custody service.
type notifyOffchainFundsReceived struct {
	deps *Deps
}

func (h *notifyOffchainFundsReceived) Method() Method {
	return MethodNotifyOffchainFundsReceived
}

func (h *notifyOffchainFundsReceived) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyOffchainFundsReceivedRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

// NotifiesStatusChange marks the funds-received transition as the one
// the rest of the platform listens for.
func (h *notifyOffchainFundsReceived) NotifiesStatusChange() bool { return true }

func (h *notifyOffchainFundsReceived) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Kind != platformrpc.KindDeposit {
		return nil
	}
	switch txn.Protocol {
	case platformrpc.Sep6, platformrpc.Sep24:
		if txn.FundsReceived() {
			return nil
		}
		return statuses(platformrpc.StatusPendingUserTransferStart)
	}
	return nil
}

func (h *notifyOffchainFundsReceived) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyOffchainFundsReceivedRequest)

	if err := assertAmountsCombination(r.AmountIn, r.AmountOut, r.AmountFee); err != nil {
		return err
	}
	if r.AmountIn != nil {
		if err := h.deps.validateAmount("amount_in", r.AmountIn.Amount, txn.AmountInAsset, false); err != nil {
			return err
		}
	}
	if r.AmountOut != nil {
		if err := h.deps.validateAmount("amount_out", r.AmountOut.Amount, txn.AmountOutAsset, false); err != nil {
			return err
		}
	}
	if r.AmountFee != nil {
		if err := h.deps.validateAmount("amount_fee", r.AmountFee.Amount, txn.AmountFeeAsset, true); err != nil {
			return err
		}
	}
	return nil
}

func (h *notifyOffchainFundsReceived) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyOffchainFundsReceivedRequest)

	if r.ExternalTransactionID != "" {
		txn.ExternalTransactionID = r.ExternalTransactionID
		if r.FundsReceivedAt != nil {
			received := r.FundsReceivedAt.UTC()
			txn.TransferReceivedAt = &received
		}
	}
	if txn.TransferReceivedAt == nil {
		now := time.Now().UTC()
		txn.TransferReceivedAt = &now
	}

	if r.AmountIn != nil {
		txn.AmountIn = r.AmountIn.Amount
	}
	if r.AmountOut != nil {
		txn.AmountOut = r.AmountOut.Amount
	}
	if r.AmountFee != nil {
		txn.AmountFee = r.AmountFee.Amount
	}

	if h.deps.CustodyEnabled {
		if err := h.deps.Custody.CreateTransaction(ctx, txn); err != nil {
			return errors.NewInternalError("failed to register transaction with custody service", err)
		}
	}
	return nil
}

func (h *notifyOffchainFundsReceived) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingAnchor, nil
}

// notifyOffchainFundsSent records dispatch of off-chain funds. For a
// deposit that is the user's inbound transfer leaving the banking rail;
// for a withdrawal it is the anchor's final payout.
type notifyOffchainFundsSent struct {
	deps *Deps
}

func (h *notifyOffchainFundsSent) Method() Method {
	return MethodNotifyOffchainFundsSent
}

func (h *notifyOffchainFundsSent) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyOffchainFundsSentRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyOffchainFundsSent) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 {
		return nil
	}
	switch txn.Kind {
	case platformrpc.KindDeposit:
		return statuses(platformrpc.StatusPendingUserTransferStart)
	case platformrpc.KindWithdrawal:
		if txn.FundsReceived() {
			return statuses(platformrpc.StatusPendingAnchor, platformrpc.StatusPendingExternal)
		}
		return statuses(platformrpc.StatusPendingExternal)
	}
	return nil
}

func (h *notifyOffchainFundsSent) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	return nil
}

func (h *notifyOffchainFundsSent) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyOffchainFundsSentRequest)

	if r.ExternalTransactionID != "" {
		txn.ExternalTransactionID = r.ExternalTransactionID
		if txn.Kind == platformrpc.KindDeposit {
			received := time.Now().UTC()
			if r.FundsSentAt != nil {
				received = r.FundsSentAt.UTC()
			}
			txn.TransferReceivedAt = &received
		}
	}
	return nil
}

func (h *notifyOffchainFundsSent) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	switch txn.Kind {
	case platformrpc.KindDeposit:
		return platformrpc.StatusPendingExternal, nil
	case platformrpc.KindWithdrawal:
		return platformrpc.StatusCompleted, nil
	}
	return "", errors.NewInvalidRequest(
		"Kind[%s] is not supported for protocol[%s] and action[%s]",
		txn.Kind, txn.Protocol, h.Method())
}

// assertAmountsCombination enforces the accepted request shapes for
// funds-received notifications: all three amounts, none, or amount_in
// alone.
func assertAmountsCombination(amountIn, amountOut, amountFee *Amount) error {
	none := amountIn == nil && amountOut == nil && amountFee == nil
	all := amountIn != nil && amountOut != nil && amountFee != nil
	onlyIn := amountIn != nil && amountOut == nil && amountFee == nil
	if none || all || onlyIn {
		return nil
	}
	return errors.NewInvalidParams(
		"Invalid amounts combination provided: all, none or only amount_in should be set")
}
