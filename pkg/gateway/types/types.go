// Package types defines the shared payment gateway contracts.
package types

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider payment gateway provider
type Provider string

// supported providers
const (
	ProviderMpesa   Provider = "mpesa"
	ProviderPesapal Provider = "pesapal"
)

// State normalized outcome of a gateway transaction
type State string

// normalized transaction states
const (
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StatePending   State = "pending"
)

// OrderRequest a charge to push to the gateway. Amount carries the
// gross total, fees already included.
type OrderRequest struct {
	MerchantReference string
	Amount            decimal.Decimal
	PhoneNumber       string
	Email             string
	Description       string
}

// OrderResponse gateway acknowledgment of a submitted order.
type OrderResponse struct {
	TrackingID  string
	RedirectURL string
}

// StatusResult normalized transaction status from a gateway query
// or callback.
type StatusResult struct {
	TrackingID  string
	State       State
	ReceiptCode string
	Amount      decimal.Decimal
	Description string
}

// Client a payment gateway client.
type Client interface {
	// Name the provider identifier
	Name() Provider

	// FeeRate the provider's convenience fee as a percentage
	FeeRate() decimal.Decimal

	// ValidateAmount checks the gross amount against the provider's
	// per-transaction bounds, without any network call
	ValidateAmount(amount decimal.Decimal) error

	// GetAccessToken fetches or returns a cached auth token
	GetAccessToken(ctx context.Context) (string, error)

	// SubmitOrder pushes a charge to the gateway
	SubmitOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error)

	// QueryStatus asks the gateway for a transaction's current state
	QueryStatus(ctx context.Context, trackingID string) (*StatusResult, error)
}
