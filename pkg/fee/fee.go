// Package fee computes gateway convenience charges.
package fee

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNonPositiveAmount the net amount must be greater than zero.
var ErrNonPositiveAmount = errors.New("fee: amount must be greater than zero")

// Charge the gateway total for a net amount.
type Charge struct {
	Net   decimal.Decimal
	Fee   decimal.Decimal
	Total decimal.Decimal
}

// ComputeCharge applies a percentage fee rate to a net amount.
// The fee rounds to two decimal places and the total is net plus fee,
// so total minus fee always reproduces the net exactly.
func ComputeCharge(net decimal.Decimal, ratePercent decimal.Decimal) (Charge, error) {
	if !net.IsPositive() {
		return Charge{}, ErrNonPositiveAmount
	}

	fee := net.Mul(ratePercent).Div(decimal.NewFromInt(100)).Round(2)
	return Charge{
		Net:   net,
		Fee:   fee,
		Total: net.Add(fee),
	}, nil
}
