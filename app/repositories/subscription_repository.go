package repositories

import (
	"context"
	"errors"
	"time"

	"makao/app/models/subscription"
	"makao/pkg/database"

	"gorm.io/gorm"
)

// SubscriptionRepository persistence for landlord subscriptions.
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a subscription repository.
func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{db: database.DB}
}

// GetByUserID fetches a landlord's subscription.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID uint64) (*subscription.Subscription, error) {
	var s subscription.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Renew extends an existing subscription by the billing period or
// creates a fresh one. A still-active subscription extends from its
// current expiry, an expired one restarts from now.
func (r *SubscriptionRepository) Renew(ctx context.Context, userID uint64, plan string, period time.Duration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s subscription.Subscription
		err := tx.Where("user_id = ?", userID).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&subscription.Subscription{
				UserID:     userID,
				Plan:       plan,
				ExpiryDate: time.Now().Add(period),
			}).Error
		}
		if err != nil {
			return err
		}

		base := time.Now()
		if s.ExpiryDate.After(base) {
			base = s.ExpiryDate
		}

		return tx.Model(&s).Updates(map[string]interface{}{
			"plan":        plan,
			"expiry_date": base.Add(period),
		}).Error
	})
}
