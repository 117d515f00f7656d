package handler

import (
	"github.com/shopspring/decimal"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/amounts"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

// upsertRefundPayment records one refund payment on the transaction.
// A payment with a known id replaces the recorded one in place, a new
// id is appended, and the refund aggregates are always recomputed
// from the full payments list afterwards.
func upsertRefundPayment(txn *platformrpc.Transaction, payment platformrpc.RefundPayment) error {
	if txn.Refunds == nil {
		txn.Refunds = &platformrpc.Refunds{}
	}
	replaced := false
	for i := range txn.Refunds.Payments {
		if txn.Refunds.Payments[i].ID == payment.ID {
			txn.Refunds.Payments[i] = payment
			replaced = true
			break
		}
	}
	if !replaced {
		txn.Refunds.Payments = append(txn.Refunds.Payments, payment)
	}
	return recalculateRefunds(txn.Refunds)
}

// recalculateRefunds rederives the refund aggregates from the
// payments list. AmountRefunded is the sum of payment amounts and
// AmountFee the sum of payment fees.
func recalculateRefunds(refunds *platformrpc.Refunds) error {
	refunded := decimal.Zero
	fees := decimal.Zero
	for _, p := range refunds.Payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return errors.NewInternalError("recorded refund payment is malformed", err)
		}
		fee, err := decimal.NewFromString(p.Fee)
		if err != nil {
			return errors.NewInternalError("recorded refund payment is malformed", err)
		}
		refunded = refunded.Add(amount)
		fees = fees.Add(fee)
	}
	refunds.AmountRefunded = amounts.Format(refunded)
	refunds.AmountFee = amounts.Format(fees)
	return nil
}

// refundTotal returns the refund grand total, amount refunded plus
// accumulated fees, as recorded on the transaction.
func refundTotal(txn *platformrpc.Transaction) (decimal.Decimal, error) {
	if txn.Refunds == nil {
		return decimal.Zero, nil
	}
	return amounts.Sum(txn.Refunds.AmountRefunded, txn.Refunds.AmountFee)
}

// prospectiveRefundTotal computes the refund grand total as it would
// stand after upserting the requested payment, without mutating the
// transaction. Requests that merely replace a recorded payment must
// not be double counted against amount_in.
func prospectiveRefundTotal(txn *platformrpc.Transaction, refund *RefundDetail) (decimal.Decimal, error) {
	amount, err := amounts.Parse(refund.Amount.Amount, "refund.amount")
	if err != nil {
		return decimal.Zero, err
	}
	fee, err := amounts.Parse(refund.AmountFee.Amount, "refund.amount_fee")
	if err != nil {
		return decimal.Zero, err
	}
	total := amount.Add(fee)
	if txn.Refunds == nil {
		return total, nil
	}
	for _, p := range txn.Refunds.Payments {
		if p.ID == refund.ID {
			continue
		}
		recorded, err := amounts.Sum(p.Amount, p.Fee)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(recorded)
	}
	return total, nil
}
