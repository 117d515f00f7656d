// Package memory provides an in-memory TransactionStore suitable for
// tests and single-process deployments.
package memory

import (
	"context"
	"sync"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// Store is a thread-safe in-memory transaction store with
// compare-and-swap save semantics.
type Store struct {
	mu   sync.RWMutex
	txns map[string]*platformrpc.Transaction
}

// New creates an empty Store.
func New() *Store {
	return &Store{txns: make(map[string]*platformrpc.Transaction)}
}

// Find returns a deep copy of the stored transaction, or (nil, nil)
// when the id is unknown.
func (s *Store) Find(ctx context.Context, id string) (*platformrpc.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.txns[id]
	if !ok {
		return nil, nil
	}
	return txn.Clone(), nil
}

// Save persists the transaction. The caller's Seq must match the
// stored revision; on success both advance by one.
func (s *Store) Save(ctx context.Context, txn *platformrpc.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.txns[txn.ID]
	if ok && current.Seq != txn.Seq {
		return errors.NewStoreError("transaction revision conflict", nil)
	}
	if !ok && txn.Seq != 0 {
		return errors.NewStoreError("transaction revision conflict", nil)
	}

	txn.Seq++
	s.txns[txn.ID] = txn.Clone()
	return nil
}

var _ platformrpc.TransactionStore = (*Store)(nil)
