// Package horizon answers chain queries for the action layer: trustline
// existence for an account and payment records for a transaction hash.
package horizon

import (
	"context"
	"fmt"
	"sort"

	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	hProtocol "github.com/stellar/go-stellar-sdk/protocols/horizon"
	"github.com/stellar/go-stellar-sdk/protocols/horizon/operations"
	"github.com/stellar/go/support/log"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/asset"
)

// API is the slice of the Horizon client the query layer needs. It is
// satisfied by *horizonclient.Client and easily faked in tests.
type API interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
	Payments(request horizonclient.OperationRequest) (operations.OperationsPage, error)
}

// Querier implements platformrpc.ChainQuery against a Horizon server.
type Querier struct {
	client API
}

// New creates a Querier for the given Horizon URL.
func New(horizonURL string) *Querier {
	return &Querier{client: &horizonclient.Client{HorizonURL: horizonURL}}
}

// NewWithClient creates a Querier over an existing client.
func NewWithClient(client API) *Querier {
	return &Querier{client: client}
}

// IsTrustLineConfigured reports whether the account holds a trustline
// for the asset. The native asset needs no trustline. Any query failure
// reads as "not configured": the caller falls back to a pending-trust
// flow instead of failing the RPC call.
func (q *Querier) IsTrustLineConfigured(account, assetID string) bool {
	code := asset.Code(assetID)
	if code == asset.NativeAssetCode {
		return true
	}
	issuer := asset.Issuer(assetID)

	resp, err := q.client.AccountDetail(horizonclient.AccountRequest{AccountID: account})
	if err != nil {
		log.WithField("account", account).WithField("asset", assetID).
			Errorf("unable to check trust: %v", err)
		return false
	}

	for _, balance := range resp.Balances {
		if balance.Type != "credit_alphanum4" && balance.Type != "credit_alphanum12" {
			continue
		}
		if balance.Code == code && balance.Issuer == issuer {
			return true
		}
	}
	return false
}

// PaymentsForTransaction returns the payment operations of an on-chain
// transaction ordered by creation time.
func (q *Querier) PaymentsForTransaction(_ context.Context, hash string) ([]platformrpc.StellarPayment, error) {
	page, err := q.client.Payments(horizonclient.OperationRequest{
		ForTransaction: hash,
		Join:           "transactions",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments for transaction %s: %w", hash, err)
	}

	var payments []platformrpc.StellarPayment
	for _, op := range page.Embedded.Records {
		if p := convertOperation(op); p != nil {
			payments = append(payments, *p)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

// convertOperation maps a Horizon operation onto a payment record.
// Returns nil for non-payment operation types.
func convertOperation(op operations.Operation) *platformrpc.StellarPayment {
	switch op.GetType() {
	case "payment":
		payment, ok := op.(operations.Payment)
		if !ok {
			return nil
		}
		return paymentRecord(payment, platformrpc.PaymentTypePayment)
	case "path_payment_strict_receive", "path_payment":
		payment, ok := op.(operations.PathPayment)
		if !ok {
			return nil
		}
		return paymentRecord(payment.Payment, platformrpc.PaymentTypePathPayment)
	case "path_payment_strict_send":
		payment, ok := op.(operations.PathPaymentStrictSend)
		if !ok {
			return nil
		}
		return paymentRecord(payment.Payment, platformrpc.PaymentTypePathPayment)
	default:
		return nil
	}
}

func paymentRecord(p operations.Payment, typ platformrpc.StellarPaymentType) *platformrpc.StellarPayment {
	base := p.GetBase()
	assetID := asset.ID(platformrpc.AssetInfo{
		Schema: platformrpc.SchemaStellar,
		Code:   assetCode(p),
		Issuer: p.Asset.Issuer,
	})
	return &platformrpc.StellarPayment{
		ID:                 base.ID,
		Amount:             p.Amount,
		Asset:              assetID,
		SourceAccount:      p.From,
		DestinationAccount: p.To,
		Type:               typ,
		CreatedAt:          base.LedgerCloseTime,
	}
}

func assetCode(p operations.Payment) string {
	if p.Asset.Type == "native" {
		return asset.NativeAssetCode
	}
	return p.Asset.Code
}

var _ platformrpc.ChainQuery = (*Querier)(nil)
