// Package amounts validates and sums decimal-string amounts. All
// arithmetic goes through shopspring/decimal; amounts are never parsed
// as floats.
package amounts

import (
	"github.com/shopspring/decimal"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// Parse converts a decimal string into a decimal value. Malformed
// input raises a BAD_REQUEST naming the field.
func Parse(amount, fieldName string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, errors.NewBadRequest("%s.amount is invalid", fieldName)
	}
	return d, nil
}

// AssertPositive requires amount > 0.
func AssertPositive(amount, fieldName string) error {
	d, err := Parse(amount, fieldName)
	if err != nil {
		return err
	}
	if d.Sign() <= 0 {
		return errors.NewBadRequest("%s.amount should be positive", fieldName)
	}
	return nil
}

// AssertNonNegative requires amount >= 0. Zero is legal for fee fields.
func AssertNonNegative(amount, fieldName string) error {
	d, err := Parse(amount, fieldName)
	if err != nil {
		return err
	}
	if d.Sign() < 0 {
		return errors.NewBadRequest("%s.amount should be non-negative", fieldName)
	}
	return nil
}

// AssertPrecision requires the amount to fit the asset's significant
// decimals, when the asset constrains them.
func AssertPrecision(amount string, info *platformrpc.AssetInfo, fieldName string) error {
	d, err := Parse(amount, fieldName)
	if err != nil {
		return err
	}
	if info == nil || info.SignificantDecimals == 0 {
		return nil
	}
	if !d.Round(int32(info.SignificantDecimals)).Equal(d) {
		return errors.NewBadRequest(
			"'%s' has invalid significant decimals. Expected: '%d'",
			amount, info.SignificantDecimals)
	}
	return nil
}

// Sum adds decimal strings. Inputs must already be validated; a parse
// failure here is a bug and surfaces as an internal error.
func Sum(values ...string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, errors.NewInternalError("malformed stored amount", err)
		}
		total = total.Add(d)
	}
	return total, nil
}

// Equal compares two decimal strings numerically ("1.0" equals "1").
func Equal(a, b string) (bool, error) {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return false, errors.NewInternalError("malformed stored amount", err)
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return false, errors.NewInternalError("malformed stored amount", err)
	}
	return da.Equal(db), nil
}

// Format renders a decimal back to its canonical string form.
func Format(d decimal.Decimal) string {
	return d.String()
}
