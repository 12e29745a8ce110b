package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusHelpers(t *testing.T) {
	p := &Payment{Status: StatusPending}
	assert.True(t, p.IsPending())
	assert.False(t, p.IsTerminal())

	p.Status = StatusCompleted
	assert.True(t, p.IsCompleted())
	assert.True(t, p.IsTerminal())

	p.Status = StatusFailed
	assert.False(t, p.IsCompleted())
	assert.True(t, p.IsTerminal())
}

func TestValidKind(t *testing.T) {
	for _, kind := range []string{KindRent, KindDeposit, KindDepositRegistration, KindSubscription} {
		assert.True(t, ValidKind(kind), kind)
	}
	assert.False(t, ValidKind("refund"))
	assert.False(t, ValidKind(""))
}
