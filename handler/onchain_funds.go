package handler

import (
	"context"
	"encoding/json"

	"github.com/stellar/go/support/log"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// notifyOnchainFundsReceived records an observed inbound Stellar
// payment for a withdrawal and attaches the on-chain payment records.
type notifyOnchainFundsReceived struct {
	deps *Deps
}

func (h *notifyOnchainFundsReceived) Method() Method {
	return MethodNotifyOnchainFundsReceived
}

func (h *notifyOnchainFundsReceived) DecodeRequest(raw json.RawMessage) (Request, error) {
	var req NotifyOnchainFundsReceivedRequest
	if err := decodeRequest(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *notifyOnchainFundsReceived) SupportedStatuses(txn *platformrpc.Transaction) StatusSet {
	if txn.Kind != platformrpc.KindWithdrawal {
		return nil
	}
	return statuses(platformrpc.StatusPendingUserTransferStart)
}

func (h *notifyOnchainFundsReceived) Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyOnchainFundsReceivedRequest)

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

func (h *notifyOnchainFundsReceived) Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error {
	r := req.(NotifyOnchainFundsReceivedRequest)

	// Record attachment is enrichment, not a precondition. A Horizon
	// outage must not block the transition.
	payments, err := h.deps.Chain.PaymentsForTransaction(ctx, r.StellarTransactionID)
	if err != nil {
		log.WithField("id", txn.ID).
			WithField("stellar_transaction_id", r.StellarTransactionID).
			WithField("error", err.Error()).
			Error("failed to retrieve stellar transaction, proceeding without payment records")
	} else {
		attachStellarTransaction(txn, r.StellarTransactionID, payments)
	}
	txn.StellarTransactionID = r.StellarTransactionID

	if r.AmountIn != nil {
		txn.AmountIn = r.AmountIn.Amount
	}
	if r.AmountOut != nil {
		txn.AmountOut = r.AmountOut.Amount
	}
	if r.AmountFee != nil {
		txn.AmountFee = r.AmountFee.Amount
	}
	return nil
}

func (h *notifyOnchainFundsReceived) NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error) {
	return platformrpc.StatusPendingAnchor, nil
}

// attachStellarTransaction records the observed on-chain transaction on
// the platform transaction. The latest payment's creation time marks
// when the transfer arrived.
func attachStellarTransaction(txn *platformrpc.Transaction, hash string, payments []platformrpc.StellarPayment) {
	record := platformrpc.StellarTransaction{
		ID:       hash,
		Memo:     txn.Memo,
		MemoType: txn.MemoType,
		Payments: payments,
	}
	if len(payments) > 0 {
		last := payments[len(payments)-1].CreatedAt
		record.CreatedAt = last
		received := last.UTC()
		txn.TransferReceivedAt = &received
	}

	for i := range txn.StellarTransactions {
		if txn.StellarTransactions[i].ID == hash {
			txn.StellarTransactions[i] = record
			return
		}
	}
	txn.StellarTransactions = append(txn.StellarTransactions, record)
}
