package migrations

import (
	"makao/app/models/payment"
	"makao/app/models/subscription"
	"makao/app/models/unit"
)

// RegisterTables returns the models to auto migrate.
func RegisterTables() []interface{} {
	return []interface{}{
		&payment.Payment{},
		&unit.Unit{},
		&subscription.Subscription{},
	}
}
