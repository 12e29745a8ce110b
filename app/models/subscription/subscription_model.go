// Package subscription defines the landlord subscription model.
package subscription

import (
	"time"

	"makao/app/models"
)

// Subscription one active subscription per landlord.
type Subscription struct {
	models.BaseModel

	UserID     uint64    `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Plan       string    `gorm:"column:plan;type:varchar(32);not null" json:"plan"`
	ExpiryDate time.Time `gorm:"column:expiry_date;not null" json:"expiry_date"`

	models.CommonTimestampsField
}

// TableName table name
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive reports whether the subscription has not expired.
func (s *Subscription) IsActive() bool {
	return s.ExpiryDate.After(time.Now())
}
