package mpesa

import (
	"testing"

	"makao/pkg/gateway/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAmountBounds(t *testing.T) {
	c := &Client{}

	assert.NoError(t, c.ValidateAmount(decimal.NewFromInt(1)))
	assert.NoError(t, c.ValidateAmount(decimal.NewFromInt(150000)))

	var ve *types.ValidationError
	assert.ErrorAs(t, c.ValidateAmount(decimal.Zero), &ve)
	assert.ErrorAs(t, c.ValidateAmount(decimal.NewFromInt(150001)), &ve)
}

func TestHTTPClientDoesNotRetry(t *testing.T) {
	// a transport level retry could push a second STK prompt the
	// ledger never recorded
	assert.Zero(t, newHTTPClient().RetryCount)
}
