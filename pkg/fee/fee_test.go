package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCharge(t *testing.T) {
	net := decimal.NewFromInt(15000)
	rate := decimal.RequireFromString("3.5")

	charge, err := ComputeCharge(net, rate)
	require.NoError(t, err)

	assert.True(t, charge.Fee.Equal(decimal.RequireFromString("525.00")), "fee = %s", charge.Fee)
	assert.True(t, charge.Total.Equal(decimal.RequireFromString("15525.00")), "total = %s", charge.Total)
}

func TestComputeChargeZeroRate(t *testing.T) {
	net := decimal.NewFromInt(2500)

	charge, err := ComputeCharge(net, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, charge.Fee.IsZero())
	assert.True(t, charge.Total.Equal(net))
}

func TestComputeChargeRoundTrip(t *testing.T) {
	rate := decimal.RequireFromString("3.5")

	for _, raw := range []string{"1", "10", "999.99", "12345.67", "150000", "499999.99"} {
		net := decimal.RequireFromString(raw)

		charge, err := ComputeCharge(net, rate)
		require.NoError(t, err)

		assert.True(t, charge.Total.GreaterThanOrEqual(net), "net %s", raw)
		assert.True(t, charge.Total.Sub(charge.Fee).Equal(net), "net %s", raw)
	}
}

func TestComputeChargeRejectsNonPositive(t *testing.T) {
	rate := decimal.RequireFromString("3.5")

	_, err := ComputeCharge(decimal.Zero, rate)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = ComputeCharge(decimal.NewFromInt(-50), rate)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}
