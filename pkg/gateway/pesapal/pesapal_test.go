package pesapal

import (
	"testing"

	"makao/pkg/gateway/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeState(t *testing.T) {
	cases := []struct {
		description string
		want        types.State
	}{
		{"Completed", types.StateCompleted},
		{"COMPLETED", types.StateCompleted},
		{"Failed", types.StateFailed},
		{"Invalid", types.StateFailed},
		{"Reversed", types.StateFailed},
		{"Pending", types.StatePending},
		{"", types.StatePending},
		{"SomethingNew", types.StatePending},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeState(tc.description), "description %q", tc.description)
	}
}

func TestValidateAmountBounds(t *testing.T) {
	c := &Client{}

	assert.NoError(t, c.ValidateAmount(decimal.NewFromInt(10)))
	assert.NoError(t, c.ValidateAmount(decimal.NewFromInt(500000)))

	var ve *types.ValidationError
	assert.ErrorAs(t, c.ValidateAmount(decimal.NewFromInt(9)), &ve)
	assert.ErrorAs(t, c.ValidateAmount(decimal.NewFromInt(500001)), &ve)
}

func TestHTTPClientDoesNotRetry(t *testing.T) {
	// a transport level retry could create a second remote order the
	// ledger never recorded
	assert.Zero(t, newHTTPClient().RetryCount)
}
