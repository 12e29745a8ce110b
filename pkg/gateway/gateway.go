// Package gateway builds payment gateway clients.
package gateway

import (
	"fmt"

	"makao/pkg/gateway/mpesa"
	"makao/pkg/gateway/pesapal"
	"makao/pkg/gateway/types"
)

// NewClient builds a client for the named provider.
func NewClient(provider types.Provider) (types.Client, error) {
	switch provider {
	case types.ProviderMpesa:
		return mpesa.NewClient(), nil
	case types.ProviderPesapal:
		return pesapal.NewClient(), nil
	default:
		return nil, fmt.Errorf("gateway: unsupported provider %q", provider)
	}
}
