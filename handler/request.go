package handler

import (
	"encoding/json"
	stderrors "errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stellar/go/strkey"

	"github.com/stellar-connect/platform-rpc-go/errors"
)

// Request is the common surface of all action request DTOs.
type Request interface {
	GetTransactionID() string
	GetMessage() string
}

// Base carries the fields shared by every action request.
type Base struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Message       string `json:"message,omitempty"`
}

func (b Base) GetTransactionID() string { return b.TransactionID }
func (b Base) GetMessage() string       { return b.Message }

// Amount is a bare decimal amount validated against the transaction's
// recorded asset.
type Amount struct {
	Amount string `json:"amount" validate:"required"`
}

// AmountAsset is an amount paired with a full asset identifier.
type AmountAsset struct {
	Amount string `json:"amount" validate:"required"`
	Asset  string `json:"asset" validate:"required"`
}

// RefundDetail describes one refund payment in a request.
type RefundDetail struct {
	ID        string      `json:"id" validate:"required"`
	Amount    AmountAsset `json:"amount" validate:"required"`
	AmountFee AmountAsset `json:"amount_fee" validate:"required"`
}

// NotifyInteractiveFlowCompletedRequest carries the amounts agreed
// during the interactive flow.
type NotifyInteractiveFlowCompletedRequest struct {
	Base
	AmountIn           AmountAsset `json:"amount_in" validate:"required"`
	AmountOut          AmountAsset `json:"amount_out" validate:"required"`
	AmountFee          AmountAsset `json:"amount_fee" validate:"required"`
	AmountExpected     *Amount     `json:"amount_expected,omitempty"`
	DestinationAccount string      `json:"destination_account,omitempty" validate:"omitempty,stellar_account"`
}

// RequestOffchainFundsRequest asks the user to start the off-chain leg.
type RequestOffchainFundsRequest struct {
	Base
	AmountIn       *AmountAsset `json:"amount_in,omitempty"`
	AmountOut      *AmountAsset `json:"amount_out,omitempty"`
	AmountFee      *AmountAsset `json:"amount_fee,omitempty"`
	AmountExpected *Amount      `json:"amount_expected,omitempty"`
}

// NotifyOffchainFundsReceivedRequest reports receipt of the user's
// off-chain funds.
type NotifyOffchainFundsReceivedRequest struct {
	Base
	AmountIn              *Amount    `json:"amount_in,omitempty"`
	AmountOut             *Amount    `json:"amount_out,omitempty"`
	AmountFee             *Amount    `json:"amount_fee,omitempty"`
	ExternalTransactionID string     `json:"external_transaction_id,omitempty"`
	FundsReceivedAt       *time.Time `json:"funds_received_at,omitempty"`
}

// NotifyOffchainFundsSentRequest reports dispatch of off-chain funds.
type NotifyOffchainFundsSentRequest struct {
	Base
	ExternalTransactionID string     `json:"external_transaction_id,omitempty"`
	FundsSentAt           *time.Time `json:"funds_sent_at,omitempty"`
}

// NotifyOnchainFundsReceivedRequest reports an observed inbound
// Stellar payment.
type NotifyOnchainFundsReceivedRequest struct {
	Base
	StellarTransactionID string  `json:"stellar_transaction_id" validate:"required"`
	AmountIn             *Amount `json:"amount_in,omitempty"`
	AmountOut            *Amount `json:"amount_out,omitempty"`
	AmountFee            *Amount `json:"amount_fee,omitempty"`
}

// NotifyAmountsUpdatedRequest overrides the outbound amounts.
type NotifyAmountsUpdatedRequest struct {
	Base
	AmountOut Amount `json:"amount_out" validate:"required"`
	AmountFee Amount `json:"amount_fee" validate:"required"`
}

// DoStellarPaymentRequest triggers the outbound on-chain payment.
type DoStellarPaymentRequest struct {
	Base
}

// NotifyTrustSetRequest reports the outcome of waiting for the user's
// trustline. Success false means the anchor gave up waiting.
type NotifyTrustSetRequest struct {
	Base
	Success bool `json:"success"`
}

// DoStellarRefundRequest triggers an on-chain refund.
type DoStellarRefundRequest struct {
	Base
	Refund RefundDetail `json:"refund" validate:"required"`
}

// NotifyRefundInitiatedRequest records a started off-chain refund.
type NotifyRefundInitiatedRequest struct {
	Base
	Refund RefundDetail `json:"refund" validate:"required"`
}

// NotifyRefundPendingRequest records a pending off-chain refund.
type NotifyRefundPendingRequest struct {
	Base
	Refund RefundDetail `json:"refund" validate:"required"`
}

// NotifyRefundSentRequest records a completed refund payment.
type NotifyRefundSentRequest struct {
	Base
	Refund *RefundDetail `json:"refund,omitempty"`
}

// NotifyTransactionExpiredRequest abandons a stale transaction. The
// message explains the expiry to the user and is mandatory.
type NotifyTransactionExpiredRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Message       string `json:"message" validate:"required"`
}

func (r NotifyTransactionExpiredRequest) GetTransactionID() string { return r.TransactionID }
func (r NotifyTransactionExpiredRequest) GetMessage() string       { return r.Message }

// RequestCustomerInfoUpdateRequest asks the sending anchor for updated
// customer KYC data.
type RequestCustomerInfoUpdateRequest struct {
	Base
}

// Validator performs structural validation of request DTOs using
// struct tags. Failures surface as INVALID_PARAMS with one message per
// violated field.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the request validator with the platform's custom
// rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// stellar_account accepts a Stellar ed25519 public key (G...).
	_ = v.RegisterValidation("stellar_account", func(fl validator.FieldLevel) bool {
		return strkey.IsValidEd25519PublicKey(fl.Field().String())
	})

	return &Validator{validate: v}
}

// ValidateStruct checks the request against its struct tags.
func (v *Validator) ValidateStruct(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewInternalError("request validation failed", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+" is required")
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return errors.NewInvalidParams("%s", strings.Join(messages, "\n"))
}

// decodeRequest unmarshals raw JSON-RPC params into a concrete request
// type. Malformed params surface as INVALID_PARAMS.
func decodeRequest(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return errors.NewInvalidParams("params is required")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.NewInvalidParams("invalid params: %v", err)
	}
	return nil
}
