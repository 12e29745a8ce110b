// Package repositories wraps database access behind small interfaces.
package repositories

import (
	"context"
	"time"

	"makao/app/models/payment"
	"makao/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository persistence for the payment ledger.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a payment repository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{db: database.DB}
}

// Create inserts a new pending ledger record.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID fetches a payment by primary key.
func (r *PaymentRepository) GetByID(ctx context.Context, id uint64) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByTrackingID fetches a payment by the gateway tracking id.
func (r *PaymentRepository) GetByTrackingID(ctx context.Context, trackingID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_tracking_id = ?", trackingID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByMerchantReference fetches a payment by our reference.
func (r *PaymentRepository) GetByMerchantReference(ctx context.Context, ref string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("merchant_reference = ?", ref).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetTrackingID records the gateway tracking id, only while still blank.
func (r *PaymentRepository) SetTrackingID(ctx context.Context, id uint64, trackingID string) error {
	return r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND (gateway_tracking_id = '' OR gateway_tracking_id IS NULL)", id).
		Update("gateway_tracking_id", trackingID).Error
}

// MarkCompleted moves a pending payment to completed. Returns true only
// for the caller that won the transition; a payment already terminal
// is left untouched and reports false.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, id uint64, receiptCode string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND status = ?", id, payment.StatusPending).
		Updates(map[string]interface{}{
			"status":       payment.StatusCompleted,
			"receipt_code": receiptCode,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkFailed moves a pending payment to failed. Same winner semantics
// as MarkCompleted.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uint64, reason string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND status = ?", id, payment.StatusPending).
		Updates(map[string]interface{}{
			"status":         payment.StatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListStalePending lists pending payments older than the cutoff, oldest
// first. Rows without a tracking id are included so a crash between the
// ledger insert and the gateway submit still gets cleaned up.
func (r *PaymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]payment.Payment, error) {
	var payments []payment.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", payment.StatusPending, olderThan).
		Order("created_at asc").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// ListByUnit lists payments for a unit, newest first.
func (r *PaymentRepository) ListByUnit(ctx context.Context, unitID uint64) ([]payment.Payment, error) {
	var payments []payment.Payment
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

// SumCompletedByUnit totals completed net amounts per unit since a date.
func (r *PaymentRepository) SumCompletedByUnit(ctx context.Context, unitID uint64, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("unit_id = ? AND status = ? AND created_at >= ?", unitID, payment.StatusCompleted, since).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
