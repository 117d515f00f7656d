package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	plain := NewInvalidParams("amount_in is required")
	assert.EqualError(t, plain, "[INVALID_PARAMS] amount_in is required")

	cause := stderrors.New("connection refused")
	wrapped := NewStoreError("saving transaction failed", cause)
	assert.EqualError(t, wrapped, "[STORE_ERROR] saving transaction failed (caused by: connection refused)")
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
}

func TestIsMatchesByCode(t *testing.T) {
	err := NewInvalidRequest("Transaction with id[%s] is not found", "txn-1")

	assert.True(t, stderrors.Is(err, &Error{Code: INVALID_REQUEST}))
	assert.False(t, stderrors.Is(err, &Error{Code: INVALID_PARAMS}))
	assert.False(t, stderrors.Is(err, stderrors.New("other")))
}

func TestJSONRPCCode(t *testing.T) {
	tests := []struct {
		err  *Error
		code int
	}{
		{NewInvalidRequest("bad envelope"), JSONRPCInvalidRequest},
		{NewConfigInvalid("custody integration is not enabled"), JSONRPCInvalidRequest},
		{NewMethodNotFound("no such method"), JSONRPCMethodNotFound},
		{NewInvalidParams("refund is required"), JSONRPCInvalidParams},
		{NewBadRequest("amount_in.amount should be positive"), JSONRPCInvalidParams},
		{NewInternalError("boom", nil), JSONRPCInternalError},
		{NewStoreError("conflict", nil), JSONRPCInternalError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, tc.err.JSONRPCCode(), "code %s", tc.err.Code)
	}
}

func TestAsError(t *testing.T) {
	typed := NewInvalidParams("refund is required")
	assert.Same(t, typed, AsError(typed))

	plain := stderrors.New("boom")
	converted := AsError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, INTERNAL_ERROR, converted.Code)
	assert.Equal(t, plain, converted.Cause)
}
