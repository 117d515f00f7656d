package handler

import (
	"context"
	"encoding/json"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/amounts"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// notifyRefundInitiated records a started off-chain refund of a
// deposit.
type notifyRefundInitiated struct {
	deps *Deps
}

func (h *notifyRefundInitiated) Method() Method {
	return MethodNotifyRefundInitiated
}

func (h *notifyRefundInitiated) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyRefundInitiatedRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyRefundInitiated) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	return refundableDepositStatuses(txn)
}

func (h *notifyRefundInitiated) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyRefundInitiatedRequest)
	return h.deps.validateRefundRequest(txn, &r.Refund)
}

func (h *notifyRefundInitiated) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyRefundInitiatedRequest)
	return upsertRefundPayment(txn, externalRefundPayment(&r.Refund))
}

func (h *notifyRefundInitiated) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingExternal, nil
}

// notifyRefundPending records an off-chain refund that has left the
// anchor but not yet reached the user.
type notifyRefundPending struct {
	deps *Deps
}

func (h *notifyRefundPending) Method() Method {
	return MethodNotifyRefundPending
}

func (h *notifyRefundPending) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyRefundPendingRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyRefundPending) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 {
		return nil
	}
	return refundableDepositStatuses(txn)
}

func (h *notifyRefundPending) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyRefundPendingRequest)
	return h.deps.validateRefundRequest(txn, &r.Refund)
}

func (h *notifyRefundPending) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyRefundPendingRequest)
	return upsertRefundPayment(txn, externalRefundPayment(&r.Refund))
}

func (h *notifyRefundPending) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingExternal, nil
}

// notifyRefundSent records a completed refund payment and decides
// whether the refund history now covers the whole deposit.
type notifyRefundSent struct {
	deps *Deps
}

func (h *notifyRefundSent) Method() Method {
	return MethodNotifyRefundSent
}

func (h *notifyRefundSent) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyRefundSentRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyRefundSent) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Protocol != platformrpc.Sep24 {
		return nil
	}
	switch txn.Kind {
	case platformrpc.KindDeposit:
		if !txn.FundsReceived() {
			return nil
		}
		return statuses(platformrpc.StatusPendingAnchor, platformrpc.StatusPendingExternal)
	case platformrpc.KindWithdrawal:
		set := statuses(platformrpc.StatusPendingStellar)
		if txn.FundsReceived() {
			set[platformrpc.StatusPendingAnchor] = struct{}{}
		}
		return set
	}
	return nil
}

func (h *notifyRefundSent) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyRefundSentRequest)

	if r.Refund == nil {
		if txn.Status == platformrpc.StatusPendingAnchor {
			return errors.NewInvalidParams("refund is required")
		}
		return nil
	}

	// A refund first announced via notify_refund_pending moves a
	// deposit to pending_external; a withdrawal refund submitted via
	// do_stellar_refund sits in pending_stellar. In either state the
	// sent notification must reference one of the recorded payments.
	if (txn.Status == platformrpc.StatusPendingExternal ||
		txn.Status == platformrpc.StatusPendingStellar) &&
		txn.Refunds != nil && len(txn.Refunds.Payments) > 0 {
		found := false
		for _, p := range txn.Refunds.Payments {
			if p.ID == r.Refund.ID {
				found = true
				break
			}
		}
		if !found {
			return errors.NewInvalidParams("Invalid refund id")
		}
	}

	return h.deps.validateRefundDetail(txn, r.Refund)
}

func (h *notifyRefundSent) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyRefundSentRequest)
	if r.Refund == nil {
		return nil
	}

	idType := platformrpc.RefundIDTypeStellar
	if txn.Kind == platformrpc.KindDeposit {
		idType = platformrpc.RefundIDTypeExternal
	}
	return upsertRefundPayment(txn, platformrpc.RefundPayment{
		ID:     r.Refund.ID,
		IDType: idType,
		Amount: r.Refund.Amount.Amount,
		Fee:    r.Refund.AmountFee.Amount,
	})
}

func (h *notifyRefundSent) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	total, err := refundTotal(txn)
	if err != nil {
		return "", err
	}
	amountIn, err := amounts.Parse(txn.AmountIn, "amount_in")
	if err != nil {
		return "", err
	}

	switch total.Cmp(amountIn) {
	case 0:
		return platformrpc.StatusRefunded, nil
	case -1:
		return platformrpc.StatusPendingAnchor, nil
	default:
		return "", errors.NewInvalidParams("Refund amount exceeds amount_in")
	}
}

// refundableDepositStatuses is the legality set shared by the
// refund-initiation notifications: a deposit whose funds have arrived
// and are still with the anchor.
func refundableDepositStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Kind != platformrpc.KindDeposit || !txn.FundsReceived() {
		return nil
	}
	return statuses(platformrpc.StatusPendingAnchor)
}

// validateRefundRequest bundles the per-payment checks with the
// amount_in cap shared by the refund notifications.
func (d *Deps) validateRefundRequest(txn *platformrpc.Transaction, refund *RefundDetail) error {
	if err := d.validateRefundDetail(txn, refund); err != nil {
		return err
	}
	return assertRefundWithinAmountIn(txn, refund)
}

func externalRefundPayment(refund *RefundDetail) platformrpc.RefundPayment {
	return platformrpc.RefundPayment{
		ID:     refund.ID,
		IDType: platformrpc.RefundIDTypeExternal,
		Amount: refund.Amount.Amount,
		Fee:    refund.AmountFee.Amount,
	}
}
