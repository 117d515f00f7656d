package handler

import (
	"time"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
)

// TransactionResponse is the normalized snapshot of a transaction
// returned from every successful action call. Amounts travel as
// (amount, asset) pairs and the protocol/kind stamps let callers route
// without re-querying the store.
type TransactionResponse struct {
	ID       string               `json:"id"`
	SEP      platformrpc.Protocol `json:"sep"`
	Kind     platformrpc.Kind     `json:"kind"`
	Status   platformrpc.Status   `json:"status"`
	Message  string               `json:"message,omitempty"`

	AmountIn       *AmountResponse `json:"amount_in,omitempty"`
	AmountOut      *AmountResponse `json:"amount_out,omitempty"`
	AmountFee      *AmountResponse `json:"amount_fee,omitempty"`
	AmountExpected *AmountResponse `json:"amount_expected,omitempty"`

	SourceAccount      string `json:"source_account,omitempty"`
	DestinationAccount string `json:"destination_account,omitempty"`
	Memo               string `json:"memo,omitempty"`
	MemoType           string `json:"memo_type,omitempty"`

	ExternalTransactionID string `json:"external_transaction_id,omitempty"`

	Refunds             *RefundsResponse             `json:"refunds,omitempty"`
	Customers           *CustomersResponse           `json:"customers,omitempty"`
	StellarTransactions []StellarTransactionResponse `json:"stellar_transactions,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	TransferReceivedAt *time.Time `json:"transfer_received_at,omitempty"`
}

// AmountResponse is one (amount, asset) pair.
type AmountResponse struct {
	Amount string `json:"amount"`
	Asset  string `json:"asset,omitempty"`
}

// RefundsResponse mirrors the transaction's refund aggregate.
type RefundsResponse struct {
	AmountRefunded AmountResponse          `json:"amount_refunded"`
	AmountFee      AmountResponse          `json:"amount_fee"`
	Payments       []RefundPaymentResponse `json:"payments"`
}

// RefundPaymentResponse is one recorded refund payment.
type RefundPaymentResponse struct {
	ID     string         `json:"id"`
	IDType string         `json:"id_type"`
	Amount AmountResponse `json:"amount"`
	Fee    AmountResponse `json:"fee"`
}

// CustomersResponse carries the sender/receiver Stellar ids for
// protocol families that track both legs.
type CustomersResponse struct {
	Sender   CustomerReference `json:"sender"`
	Receiver CustomerReference `json:"receiver"`
}

// CustomerReference identifies one customer by Stellar account.
type CustomerReference struct {
	Account string `json:"account,omitempty"`
	Memo    string `json:"memo,omitempty"`
}

// StellarTransactionResponse is one observed on-chain transaction.
type StellarTransactionResponse struct {
	ID        string                    `json:"id"`
	Memo      string                    `json:"memo,omitempty"`
	MemoType  string                    `json:"memo_type,omitempty"`
	Envelope  string                    `json:"envelope,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	Payments  []StellarPaymentResponse  `json:"payments,omitempty"`
}

// StellarPaymentResponse is one payment operation of an observed
// on-chain transaction.
type StellarPaymentResponse struct {
	ID                 string         `json:"id"`
	Amount             AmountResponse `json:"amount"`
	PaymentType        string         `json:"payment_type"`
	SourceAccount      string         `json:"source_account,omitempty"`
	DestinationAccount string         `json:"destination_account,omitempty"`
}

// ToTransactionResponse maps a transaction snapshot to the normalized
// response shape.
func ToTransactionResponse(txn *platformrpc.Transaction) *TransactionResponse {
	out := &TransactionResponse{
		ID:                    txn.ID,
		SEP:                   txn.Protocol,
		Kind:                  txn.Kind,
		Status:                txn.Status,
		Message:               txn.Message,
		AmountIn:              amountPair(txn.AmountIn, txn.AmountInAsset),
		AmountOut:             amountPair(txn.AmountOut, txn.AmountOutAsset),
		AmountFee:             amountPair(txn.AmountFee, txn.AmountFeeAsset),
		SourceAccount:         txn.SourceAccount,
		DestinationAccount:    txn.DestinationAccount,
		Memo:                  txn.Memo,
		MemoType:              txn.MemoType,
		ExternalTransactionID: txn.ExternalTransactionID,
		StartedAt:             txn.StartedAt,
		UpdatedAt:             txn.UpdatedAt,
		CompletedAt:           txn.CompletedAt,
		TransferReceivedAt:    txn.TransferReceivedAt,
	}

	// amount_expected reports in the requested asset's terms, which is
	// the amount_in asset once the amounts are set.
	if txn.AmountExpected != "" {
		out.AmountExpected = &AmountResponse{
			Amount: txn.AmountExpected,
			Asset:  txn.AmountInAsset,
		}
	}

	if txn.Refunds != nil {
		out.Refunds = toRefundsResponse(txn)
	}

	if txn.Protocol == platformrpc.Sep24 || txn.Protocol == platformrpc.Sep31 {
		out.Customers = &CustomersResponse{
			Sender:   CustomerReference{Account: txn.SourceAccount},
			Receiver: CustomerReference{Account: txn.DestinationAccount},
		}
	}

	for _, st := range txn.StellarTransactions {
		out.StellarTransactions = append(out.StellarTransactions, toStellarTransactionResponse(st))
	}

	return out
}

func amountPair(amount, assetID string) *AmountResponse {
	if amount == "" {
		return nil
	}
	return &AmountResponse{Amount: amount, Asset: assetID}
}

func toRefundsResponse(txn *platformrpc.Transaction) *RefundsResponse {
	refunds := txn.Refunds
	out := &RefundsResponse{
		AmountRefunded: AmountResponse{Amount: refunds.AmountRefunded, Asset: txn.AmountInAsset},
		AmountFee:      AmountResponse{Amount: refunds.AmountFee, Asset: txn.AmountFeeAsset},
		Payments:       make([]RefundPaymentResponse, 0, len(refunds.Payments)),
	}
	for _, p := range refunds.Payments {
		out.Payments = append(out.Payments, RefundPaymentResponse{
			ID:     p.ID,
			IDType: string(p.IDType),
			Amount: AmountResponse{Amount: p.Amount, Asset: txn.AmountInAsset},
			Fee:    AmountResponse{Amount: p.Fee, Asset: txn.AmountFeeAsset},
		})
	}
	return out
}

func toStellarTransactionResponse(st platformrpc.StellarTransaction) StellarTransactionResponse {
	out := StellarTransactionResponse{
		ID:        st.ID,
		Memo:      st.Memo,
		MemoType:  st.MemoType,
		Envelope:  st.Envelope,
		CreatedAt: st.CreatedAt,
	}
	for _, p := range st.Payments {
		out.Payments = append(out.Payments, StellarPaymentResponse{
			ID:                 p.ID,
			Amount:             AmountResponse{Amount: p.Amount, Asset: p.Asset},
			PaymentType:        string(p.Type),
			SourceAccount:      p.SourceAccount,
			DestinationAccount: p.DestinationAccount,
		})
	}
	return out
}
