// Package handler implements the transaction action layer: one handler
// per RPC method, each validating a requested state transition against
// the transaction's current (status, kind, protocol, funds-received)
// tuple, applying amount and asset invariants, mutating a cloned
// snapshot and persisting it with a single save.
package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stellar/go/support/log"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// Handler is the contract every action handler implements. The shared
// transition algorithm lives in Execute; handlers only supply the
// method-specific pieces.
type Handler interface {
	// Method returns the RPC method tag this handler serves.
	Method() Method

	// DecodeRequest unmarshals raw RPC params into the handler's
	// request type.
	DecodeRequest(raw json.RawMessage) (Request, error)

	// SupportedStatuses returns the statuses from which this action is
	// a legal transition, conditioned on the transaction's protocol,
	// kind and funds-received flag. Empty means the handler does not
	// apply to this transaction at all.
	SupportedStatuses(txn *platformrpc.Transaction) StatusSet

	// Validate runs handler-specific amount/asset invariant checks
	// against the pre-mutation snapshot.
	Validate(ctx context.Context, txn *platformrpc.Transaction, req Request) error

	// Apply mutates the cloned transaction with the request's fields
	// and triggers any custody side effect.
	Apply(ctx context.Context, txn *platformrpc.Transaction, req Request) error

	// NextStatus computes the resulting status from the post-Apply
	// transaction and the request.
	NextStatus(ctx context.Context, txn *platformrpc.Transaction, req Request) (platformrpc.Status, error)
}

// StatusChangeNotifier marks handlers whose successful mutation
// publishes a transaction-status-changed event.
type StatusChangeNotifier interface {
	NotifiesStatusChange() bool
}

// StatusSet is a set of transaction statuses.
type StatusSet map[platformrpc.Status]struct{}

// Contains reports set membership.
func (s StatusSet) Contains(status platformrpc.Status) bool {
	_, ok := s[status]
	return ok
}

func statuses(list ...platformrpc.Status) StatusSet {
	s := make(StatusSet, len(list))
	for _, status := range list {
		s[status] = struct{}{}
	}
	return s
}

// Deps bundles the collaborators shared by all handlers.
type Deps struct {
	Store     platformrpc.TransactionStore
	Validator *Validator
	Assets    platformrpc.AssetService
	Chain     platformrpc.ChainQuery
	Custody   platformrpc.CustodyService
	Events    platformrpc.EventPublisher

	// CustodyEnabled gates the custody side effects; actions that need
	// custody fail fast when it is off.
	CustodyEnabled bool
}

// Execute runs the shared transition algorithm for one action request:
// load, legality check, structural validation, invariant checks, apply,
// status transition, save, event. It returns the normalized snapshot of
// the mutated transaction.
func Execute(ctx context.Context, deps *Deps, h Handler, raw json.RawMessage) (*TransactionResponse, error) {
	req, err := h.DecodeRequest(raw)
	if err != nil {
		return nil, err
	}

	loaded, err := deps.Store.Find(ctx, req.GetTransactionID())
	if err != nil {
		return nil, errors.NewStoreError("failed to load transaction", err)
	}
	if loaded == nil {
		return nil, errors.NewInvalidRequest(
			"Transaction with id[%s] is not found", req.GetTransactionID())
	}

	if !h.SupportedStatuses(loaded).Contains(loaded.Status) {
		return nil, errors.NewInvalidRequest(
			"Action[%s] is not supported. Status[%s], kind[%s], protocol[%s], funds received[%t]",
			h.Method(), loaded.Status, loaded.Kind, loaded.Protocol, loaded.FundsReceived())
	}

	if err := deps.Validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := h.Validate(ctx, loaded, req); err != nil {
		return nil, err
	}

	txn := loaded.Clone()
	if err := h.Apply(ctx, txn, req); err != nil {
		return nil, err
	}

	nextStatus, err := h.NextStatus(ctx, txn, req)
	if err != nil {
		return nil, err
	}
	if nextStatus.IsError() && req.GetMessage() == "" {
		return nil, errors.NewInvalidParams("message is required")
	}

	now := time.Now().UTC()
	if req.GetMessage() != "" {
		txn.Message = req.GetMessage()
	} else if loaded.Status.IsError() && !nextStatus.IsError() {
		// Leaving the error family without a fresh message clears the
		// stale one.
		txn.Message = ""
	}
	txn.Status = nextStatus
	txn.UpdatedAt = now
	if nextStatus.IsFinal() {
		txn.CompletedAt = &now
	}

	if err := deps.Store.Save(ctx, txn); err != nil {
		return nil, errors.NewStoreError("failed to save transaction", err)
	}

	if notifier, ok := h.(StatusChangeNotifier); ok && notifier.NotifiesStatusChange() && deps.Events != nil {
		deps.Events.PublishStatusChanged(platformrpc.TransactionEvent{
			Type:        platformrpc.EventTypeTransactionStatusChanged,
			Transaction: txn.Clone(),
		})
	}

	log.WithField("id", txn.ID).WithField("method", string(h.Method())).
		WithField("status", string(txn.Status)).
		Debug("transaction updated")

	return ToTransactionResponse(txn), nil
}
