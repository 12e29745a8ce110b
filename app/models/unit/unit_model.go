// Package unit defines the rental unit model.
package unit

import (
	"time"

	"makao/app/models"

	"github.com/shopspring/decimal"
)

// Unit a rentable unit owned by a landlord.
type Unit struct {
	models.BaseModel

	UserID     uint64  `gorm:"column:user_id;index;not null" json:"user_id"`
	TenantID   *uint64 `gorm:"column:tenant_id;index" json:"tenant_id,omitempty"`
	UnitNumber string  `gorm:"column:unit_number;type:varchar(32);not null" json:"unit_number"`

	Rent          decimal.Decimal `gorm:"column:rent;type:decimal(12,2);not null" json:"rent"`
	RentPaid      decimal.Decimal `gorm:"column:rent_paid;type:decimal(12,2);not null;default:0" json:"rent_paid"`
	RentRemaining decimal.Decimal `gorm:"column:rent_remaining;type:decimal(12,2);not null;default:0" json:"rent_remaining"`
	Deposit       decimal.Decimal `gorm:"column:deposit;type:decimal(12,2);not null;default:0" json:"deposit"`

	IsAvailable bool       `gorm:"column:is_available;not null;default:true" json:"is_available"`
	RentDueDate *time.Time `gorm:"column:rent_due_date" json:"rent_due_date,omitempty"`

	// contact details for the current tenant, denormalized so the
	// reminder job needs no join
	TenantName  string `gorm:"column:tenant_name;type:varchar(64)" json:"tenant_name,omitempty"`
	TenantEmail string `gorm:"column:tenant_email;type:varchar(128)" json:"tenant_email,omitempty"`

	models.CommonTimestampsField
}

// TableName table name
func (Unit) TableName() string {
	return "units"
}
