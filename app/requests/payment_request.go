package requests

import (
	"fmt"

	"makao/app/models/payment"
	"makao/pkg/config"
	"makao/pkg/gateway/types"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/thedevsaddam/govalidator"
)

// InitiatePaymentRequest shared payload for every payment initiation
// endpoint. Amount is the net amount, fees are added server side.
type InitiatePaymentRequest struct {
	Provider    string `json:"provider" valid:"provider"`
	Amount      string `json:"amount" valid:"amount"`
	PhoneNumber string `json:"phone_number" valid:"phone_number"`
	Email       string `json:"email" valid:"email"`
	TenantID    uint64 `json:"tenant_id"`
	UserID      uint64 `json:"user_id"`
	Plan        string `json:"plan"`

	// signup session reference, carried through correlation so the
	// frontend can link the confirmed deposit back to a registration
	SessionID string `json:"session_id"`

	// parsed amount, populated during validation
	ParsedAmount decimal.Decimal `json:"-"`
}

// ValidateInitiatePayment binds and validates a payment initiation.
func ValidateInitiatePayment(c *gin.Context) (*InitiatePaymentRequest, error) {
	var req InitiatePaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("malformed request body: %w", err)
	}

	if req.Provider == "" {
		req.Provider = config.GetString("payment.default_gateway")
	}

	rules := govalidator.MapData{
		"provider":     []string{"required", "in:mpesa,pesapal"},
		"amount":       []string{"required"},
		"phone_number": []string{"required", "min:9", "max:13"},
		"email":        []string{"email"},
	}

	messages := govalidator.MapData{
		"provider": []string{
			"required:payment provider is required",
			"in:provider must be mpesa or pesapal",
		},
		"amount": []string{
			"required:amount is required",
		},
		"phone_number": []string{
			"required:phone number is required",
			"min:phone number is too short",
			"max:phone number is too long",
		},
		"email": []string{
			"email:email address is invalid",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount is not a valid number")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	req.ParsedAmount = amount

	return &req, nil
}

// ValidateSubscriptionPayment validates the subscription flavor,
// which additionally needs a user and a known plan.
func ValidateSubscriptionPayment(c *gin.Context, plans map[string]string) (*InitiatePaymentRequest, error) {
	req, err := ValidateInitiatePayment(c)
	if err != nil {
		return nil, err
	}

	if req.UserID == 0 {
		return nil, fmt.Errorf("user_id is required for subscription payments")
	}
	if req.Plan == "" {
		return nil, fmt.Errorf("plan is required for subscription payments")
	}
	price, ok := plans[req.Plan]
	if !ok {
		return nil, fmt.Errorf("unknown plan %q", req.Plan)
	}

	// the plan fixes the price, ignore whatever amount the client sent
	req.ParsedAmount = decimal.RequireFromString(price)

	return req, nil
}

// ProviderType the validated provider as a typed value.
func (r *InitiatePaymentRequest) ProviderType() types.Provider {
	return types.Provider(r.Provider)
}

// RequireTenant enforces the tenant fields used by deposit payments.
func (r *InitiatePaymentRequest) RequireTenant() error {
	if r.TenantID == 0 {
		return fmt.Errorf("tenant_id is required for %s payments", payment.KindDeposit)
	}
	return nil
}
