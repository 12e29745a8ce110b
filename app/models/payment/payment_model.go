// Package payment defines the payment ledger model.
package payment

import (
	"makao/app/models"

	"github.com/shopspring/decimal"
)

// payment kinds
const (
	KindRent                = "rent"
	KindDeposit             = "deposit"
	KindDepositRegistration = "deposit_registration"
	KindSubscription        = "subscription"
)

// payment statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Payment ledger record. Amount always stores the net amount
// owed to the landlord, never the gateway total with fees.
type Payment struct {
	models.BaseModel

	Kind     string `gorm:"column:kind;type:varchar(32);not null;index" json:"kind"`
	Provider string `gorm:"column:provider;type:varchar(16);not null" json:"provider"`

	Amount decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`

	TenantID *uint64 `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	UnitID   *uint64 `gorm:"column:unit_id;index" json:"unit_id,omitempty"`
	UserID   *uint64 `gorm:"column:user_id;index" json:"user_id,omitempty"`
	Plan     string  `gorm:"column:plan;type:varchar(32)" json:"plan,omitempty"`

	// MerchantReference is our side of the correlation key,
	// GatewayTrackingID is the provider's side.
	MerchantReference string `gorm:"column:merchant_reference;type:varchar(64);uniqueIndex;not null" json:"merchant_reference"`
	GatewayTrackingID string `gorm:"column:gateway_tracking_id;type:varchar(128);index" json:"gateway_tracking_id,omitempty"`

	// SessionID ties a registration deposit back to the signup session.
	// Stored on the row so the link survives correlation cache expiry.
	SessionID string `gorm:"column:session_id;type:varchar(64)" json:"session_id,omitempty"`

	Status        string `gorm:"column:status;type:varchar(16);not null;default:pending;index" json:"status"`
	ReceiptCode   string `gorm:"column:receipt_code;type:varchar(64)" json:"receipt_code,omitempty"`
	FailureReason string `gorm:"column:failure_reason;type:varchar(255)" json:"failure_reason,omitempty"`
	Description   string `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	PhoneNumber   string `gorm:"column:phone_number;type:varchar(16)" json:"phone_number,omitempty"`
	Email         string `gorm:"column:email;type:varchar(128)" json:"email,omitempty"`

	models.CommonTimestampsField
}

// TableName table name
func (Payment) TableName() string {
	return "payments"
}
