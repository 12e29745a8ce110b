package types

import "fmt"

// ValidationError a request the gateway would never accept, raised
// before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gateway validation: %s %s", e.Field, e.Reason)
}

// TransportError a network or HTTP level failure talking to the
// gateway. Retryable.
type TransportError struct {
	Provider Provider
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport: %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError the gateway understood the request and refused it.
// Not retryable.
type RejectionError struct {
	Provider Provider
	Code     string
	Message  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("gateway rejected: %s [%s] %s", e.Provider, e.Code, e.Message)
}
