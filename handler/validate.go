package handler

import (
	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/amounts"
	"github.com/stellar-connect/platform-rpc-go/asset"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// validateAmount checks the numeric invariants of one amount field:
// positivity (or non-negativity for fee-like fields), asset support
// and precision. assetID may name the request's asset or the
// transaction's recorded asset for bare-amount requests.
func (d *Deps) validateAmount(fieldName, amount, assetID string, allowZero bool) error {
	if allowZero {
		if err := amounts.AssertNonNegative(amount, fieldName); err != nil {
			return err
		}
	} else {
		if err := amounts.AssertPositive(amount, fieldName); err != nil {
			return err
		}
	}
	if assetID == "" {
		return nil
	}
	info := d.Assets.GetAssetByID(assetID)
	if info == nil {
		return errors.NewBadRequest("'%s' is not a supported asset.", assetID)
	}
	return amounts.AssertPrecision(amount, info, fieldName)
}

// assertStellarAsset requires the asset identifier to be on-chain
// (wantStellar) or off-chain (!wantStellar).
func assertStellarAsset(fieldName, assetID string, wantStellar bool) error {
	if asset.IsStellar(assetID) == wantStellar {
		return nil
	}
	if wantStellar {
		return errors.NewInvalidParams("%s should be stellar asset", fieldName)
	}
	return errors.NewInvalidParams("%s should be non-stellar asset", fieldName)
}

// validateRefundDetail checks one refund payment request against the
// transaction: amount positivity, fee non-negativity and the asset
// match against the transaction's recorded assets.
func (d *Deps) validateRefundDetail(txn *platformrpc.Transaction, refund *RefundDetail) error {
	if err := d.validateAmount("refund.amount", refund.Amount.Amount, txn.AmountInAsset, false); err != nil {
		return err
	}
	if err := d.validateAmount("refund.amountFee", refund.AmountFee.Amount, txn.AmountInAsset, true); err != nil {
		return err
	}
	if txn.AmountInAsset != refund.Amount.Asset {
		return errors.NewInvalidParams("refund.amount.asset does not match transaction amount_in_asset")
	}
	if txn.AmountFeeAsset != refund.AmountFee.Asset {
		// TODO: confirm with the protocol owners whether the duplicated
		// "match match" wording is load-bearing for existing clients
		// before correcting it.
		return errors.NewInvalidParams("refund.amount_fee.asset does not match match transaction amount_fee_asset")
	}
	return nil
}

// assertRefundWithinAmountIn rejects a refund request whose grand
// total, as it would stand after recording the payment, would exceed
// the transaction's amount_in.
func assertRefundWithinAmountIn(txn *platformrpc.Transaction, refund *RefundDetail) error {
	total, err := prospectiveRefundTotal(txn, refund)
	if err != nil {
		return err
	}
	amountIn, err := amounts.Parse(txn.AmountIn, "amount_in")
	if err != nil {
		return err
	}
	if total.GreaterThan(amountIn) {
		return errors.NewInvalidParams("Refund amount exceeds amount_in")
	}
	return nil
}
