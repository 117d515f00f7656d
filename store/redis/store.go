// Package redis provides a Redis-backed TransactionStore. Records are
// stored as JSON values; a WATCH-based transaction gives the save its
// compare-and-swap semantics.
package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

const keyPrefix = "platform:txn:"

// Store persists transactions in Redis.
type Store struct {
	client *redis.Client
}

// New creates a Store over an existing Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// NewFromAddr creates a Store with its own client for the given
// address.
func NewFromAddr(addr string) *Store {
	return New(redis.NewClient(&redis.Options{Addr: addr}))
}

func key(id string) string {
	return keyPrefix + id
}

// Find loads a transaction by id, returning (nil, nil) when the key
// does not exist.
func (s *Store) Find(ctx context.Context, id string) (*platformrpc.Transaction, error) {
	payload, err := s.client.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to load transaction from redis", err)
	}

	var txn platformrpc.Transaction
	if err := json.Unmarshal(payload, &txn); err != nil {
		return nil, errors.NewStoreError("failed to decode stored transaction", err)
	}
	return &txn, nil
}

// Save persists the transaction, requiring the stored revision to
// match txn.Seq. The watch aborts the write when a concurrent save
// lands first.
func (s *Store) Save(ctx context.Context, txn *platformrpc.Transaction) error {
	k := key(txn.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, k).Bytes()
		switch {
		case err == redis.Nil:
			if txn.Seq != 0 {
				return errors.NewStoreError("transaction revision conflict", nil)
			}
		case err != nil:
			return errors.NewStoreError("failed to load transaction from redis", err)
		default:
			var current platformrpc.Transaction
			if err := json.Unmarshal(payload, &current); err != nil {
				return errors.NewStoreError("failed to decode stored transaction", err)
			}
			if current.Seq != txn.Seq {
				return errors.NewStoreError("transaction revision conflict", nil)
			}
		}

		next := txn.Clone()
		next.Seq++
		encoded, err := json.Marshal(next)
		if err != nil {
			return errors.NewStoreError("failed to encode transaction", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, encoded, 0)
			return nil
		})
		if err != nil {
			return errors.NewStoreError("failed to save transaction to redis", err)
		}

		txn.Seq = next.Seq
		return nil
	}, k)
	if err == redis.TxFailedErr {
		return errors.NewStoreError("transaction revision conflict", err)
	}
	return err
}

var _ platformrpc.TransactionStore = (*Store)(nil)
