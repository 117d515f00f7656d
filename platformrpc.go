// Package platformrpc provides the transaction action layer of a Stellar
// anchor platform: a family of RPC methods that validate and apply state
// transitions on SEP-6, SEP-24 and SEP-31 transactions while delegating
// persistence, custody and chain queries to the developer.
package platformrpc

import (
	"context"
	"time"
)

// Protocol tags the SEP family a transaction belongs to. It determines
// which handlers apply and how the kind field is interpreted.
type Protocol string

const (
	// Sep6 is the programmatic deposit/withdrawal protocol.
	Sep6 Protocol = "6"

	// Sep24 is the interactive deposit/withdrawal protocol.
	Sep24 Protocol = "24"

	// Sep31 is the cross-border receive protocol.
	Sep31 Protocol = "31"
)

// Kind is the direction of a transaction.
type Kind string

const (
	// KindDeposit moves off-chain funds onto the Stellar network.
	KindDeposit Kind = "deposit"

	// KindWithdrawal moves on-chain funds off the Stellar network.
	KindWithdrawal Kind = "withdrawal"

	// KindReceive is the SEP-31 receiving side of a cross-border payment.
	KindReceive Kind = "receive"
)

// Status is a value from the closed SEP transaction status enumeration.
// Action handlers are the only component that moves a transaction
// between statuses.
type Status string

const (
	StatusIncomplete                Status = "incomplete"
	StatusPendingAnchor             Status = "pending_anchor"
	StatusPendingUserTransferStart  Status = "pending_user_transfer_start"
	StatusPendingExternal           Status = "pending_external"
	StatusPendingStellar            Status = "pending_stellar"
	StatusPendingTrust              Status = "pending_trust"
	StatusPendingReceiver           Status = "pending_receiver"
	StatusPendingSender             Status = "pending_sender"
	StatusPendingCustomerInfoUpdate Status = "pending_customer_info_update"
	StatusCompleted                 Status = "completed"
	StatusRefunded                  Status = "refunded"
	StatusExpired                   Status = "expired"
	StatusError                     Status = "error"
)

// IsError reports whether the status is one of the error family
// (error, expired).
func (s Status) IsError() bool {
	return s == StatusError || s == StatusExpired
}

// IsFinal reports whether the status is a terminal success
// (completed, refunded).
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusRefunded
}

// Transaction is the canonical transaction record shared by all
// protocol families. Protocol tags which family the record belongs to;
// handlers branch on the tag instead of probing per-protocol stores.
type Transaction struct {
	ID       string
	Protocol Protocol
	Kind     Kind
	Status   Status

	// Amounts are decimal strings paired with asset identifiers of the
	// form "stellar:CODE:ISSUER", "stellar:native" or "iso4217:CODE".
	AmountIn       string
	AmountInAsset  string
	AmountOut      string
	AmountOutAsset string
	AmountFee      string
	AmountFeeAsset string
	AmountExpected string

	// RequestAssetCode is the code the user asked for; it resolves to
	// the transaction's natural asset via the asset service.
	RequestAssetCode string

	SourceAccount      string
	DestinationAccount string
	Memo               string
	MemoType           string

	ExternalTransactionID string
	StellarTransactionID  string
	StellarTransactions   []StellarTransaction

	Refunds *Refunds

	Message string

	TransferReceivedAt *time.Time
	StartedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time

	// Seq is the store revision used for compare-and-swap saves. Zero
	// means the record has never been persisted.
	Seq int64
}

// FundsReceived reports whether an inbound transfer has been observed
// for this transaction.
func (t *Transaction) FundsReceived() bool {
	return t.TransferReceivedAt != nil
}

// Clone returns a deep copy of the transaction. Handlers mutate the
// copy and persist it with a single Save, leaving the loaded snapshot
// untouched.
func (t *Transaction) Clone() *Transaction {
	out := *t
	if t.TransferReceivedAt != nil {
		received := *t.TransferReceivedAt
		out.TransferReceivedAt = &received
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	if t.Refunds != nil {
		out.Refunds = t.Refunds.Clone()
	}
	if t.StellarTransactions != nil {
		out.StellarTransactions = make([]StellarTransaction, len(t.StellarTransactions))
		for i, st := range t.StellarTransactions {
			out.StellarTransactions[i] = st.Clone()
		}
	}
	return &out
}

// Refunds aggregates the refund history of a transaction. AmountRefunded
// and AmountFee are always derived from Payments, never incremented.
type Refunds struct {
	AmountRefunded string
	AmountFee      string

	// Payments is ordered by first submission. A payment id is unique
	// within the list; re-submitting an id replaces the prior entry.
	Payments []RefundPayment
}

// Clone returns a deep copy of the refund aggregate.
func (r *Refunds) Clone() *Refunds {
	out := *r
	out.Payments = make([]RefundPayment, len(r.Payments))
	copy(out.Payments, r.Payments)
	return &out
}

// RefundPayment is one discrete partial-refund event.
type RefundPayment struct {
	ID     string
	IDType RefundIDType
	Amount string
	Fee    string
}

// RefundIDType tells whether a refund payment id references an
// off-chain payment or a Stellar transaction.
type RefundIDType string

const (
	RefundIDTypeExternal RefundIDType = "external"
	RefundIDTypeStellar  RefundIDType = "stellar"
)

// StellarTransaction is an observed on-chain transaction related to a
// platform transaction.
type StellarTransaction struct {
	ID        string
	Memo      string
	MemoType  string
	Envelope  string
	CreatedAt time.Time
	Payments  []StellarPayment
}

// Clone returns a deep copy of the record.
func (s StellarTransaction) Clone() StellarTransaction {
	out := s
	out.Payments = make([]StellarPayment, len(s.Payments))
	copy(out.Payments, s.Payments)
	return out
}

// StellarPayment is one payment operation inside an observed
// on-chain transaction.
type StellarPayment struct {
	ID                 string
	Amount             string
	Asset              string
	SourceAccount      string
	DestinationAccount string
	Type               StellarPaymentType
	CreatedAt          time.Time
}

// StellarPaymentType distinguishes plain payments from path payments.
type StellarPaymentType string

const (
	PaymentTypePayment     StellarPaymentType = "payment"
	PaymentTypePathPayment StellarPaymentType = "path_payment"
)

// TransactionStore is the persistence interface for transaction records.
// The action layer calls these methods during state transitions; the
// developer implements the interface against their own database.
type TransactionStore interface {
	// Find retrieves a transaction by id. A missing record returns
	// (nil, nil) so callers can distinguish absence from store failure.
	Find(ctx context.Context, id string) (*Transaction, error)

	// Save persists the record. The stored revision must equal
	// txn.Seq or the save fails with a conflict; on success the
	// stored revision (and txn.Seq) become txn.Seq+1.
	Save(ctx context.Context, txn *Transaction) error
}

// CustodyService performs on-chain payment submission and custody
// bookkeeping on the anchor's behalf. All calls are fire-and-forget
// from the handler's perspective: a custody error fails the RPC call
// but never rolls back prior mutations.
type CustodyService interface {
	// CreateTransaction registers the transaction with the custody
	// service, typically on first receipt of external funds.
	CreateTransaction(ctx context.Context, txn *Transaction) error

	// CreateTransactionPayment asks the custody service to submit the
	// outbound on-chain payment for the transaction.
	CreateTransactionPayment(ctx context.Context, txnID string) error

	// CreateTransactionRefund asks the custody service to submit an
	// on-chain refund payment.
	CreateTransactionRefund(ctx context.Context, txnID string, payment RefundPayment) error
}

// ChainQuery answers questions about the Stellar network needed by the
// action layer: trustline existence and payment records.
type ChainQuery interface {
	// IsTrustLineConfigured reports whether the account holds a
	// trustline for the asset. Implementations fail closed: any query
	// error reads as "not configured", never as a propagated error.
	IsTrustLineConfigured(account, asset string) bool

	// PaymentsForTransaction returns the payment operations of an
	// on-chain transaction ordered by creation time.
	PaymentsForTransaction(ctx context.Context, hash string) ([]StellarPayment, error)
}

// EventPublisher publishes transaction change events after a
// successful mutation.
type EventPublisher interface {
	PublishStatusChanged(event TransactionEvent)
}

// TransactionEvent is the payload published on a status change.
type TransactionEvent struct {
	ID          string
	Type        string
	Transaction *Transaction
}

// EventTypeTransactionStatusChanged is the only event type emitted by
// the action layer.
const EventTypeTransactionStatusChanged = "transaction_status_changed"

// AssetInfo describes one asset the anchor supports.
type AssetInfo struct {
	// Schema is "stellar" or "iso4217".
	Schema string

	Code   string
	Issuer string

	// SignificantDecimals bounds the precision of amounts denominated
	// in this asset. Zero means unconstrained.
	SignificantDecimals int
}

// Asset schemas.
const (
	SchemaStellar = "stellar"
	SchemaISO4217 = "iso4217"
)

// AssetService resolves asset codes and identifiers to AssetInfo.
type AssetService interface {
	// GetAsset resolves a bare code ("USD", "USDC") to its info.
	// Unknown codes return nil.
	GetAsset(code string) *AssetInfo

	// GetAssetByID resolves a full identifier such as
	// "stellar:USDC:GA..." or "iso4217:USD". Unknown ids return nil.
	GetAssetByID(id string) *AssetInfo
}
