// Package custody implements the custody-service collaborator used by
// action handlers that move on-chain funds: an HTTP client for the
// external custody API and a disabled placeholder wired when custody
// integration is off.
package custody

import (
	"context"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// Disabled is the CustodyService bound when custody integration is
// turned off. Handlers that require custody reject the request before
// reaching it; any call that does arrive is a wiring bug.
type Disabled struct{}

// NewDisabled returns the disabled custody service.
func NewDisabled() *Disabled {
	return &Disabled{}
}

func (*Disabled) CreateTransaction(context.Context, *platformrpc.Transaction) error {
	return errors.NewConfigInvalid("custody integration is not enabled")
}

func (*Disabled) CreateTransactionPayment(context.Context, string) error {
	return errors.NewConfigInvalid("custody integration is not enabled")
}

func (*Disabled) CreateTransactionRefund(context.Context, string, platformrpc.RefundPayment) error {
	return errors.NewConfigInvalid("custody integration is not enabled")
}

var _ platformrpc.CustodyService = (*Disabled)(nil)
