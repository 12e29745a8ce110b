package repositories

import (
	"context"
	"time"

	"makao/app/models/unit"
	"makao/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitRepository persistence for rental units.
type UnitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a unit repository.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{db: database.DB}
}

// GetByID fetches a unit by primary key.
func (r *UnitRepository) GetByID(ctx context.Context, id uint64) (*unit.Unit, error) {
	var u unit.Unit
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AddRentPaid credits a rent amount against the unit's balance. The
// update runs as SQL expressions so concurrent credits never lose.
func (r *UnitRepository) AddRentPaid(ctx context.Context, unitID uint64, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&unit.Unit{}).
		Where("id = ?", unitID).
		Updates(map[string]interface{}{
			"rent_paid":      gorm.Expr("rent_paid + ?", amount),
			"rent_remaining": gorm.Expr("rent - (rent_paid + ?)", amount),
			"updated_at":     time.Now(),
		}).Error
}

// Reserve marks a unit unavailable after a deposit confirms.
func (r *UnitRepository) Reserve(ctx context.Context, unitID uint64) error {
	return r.db.WithContext(ctx).
		Model(&unit.Unit{}).
		Where("id = ?", unitID).
		Update("is_available", false).Error
}

// ReserveForTenant reserves a unit and links the paying tenant.
func (r *UnitRepository) ReserveForTenant(ctx context.Context, unitID, tenantID uint64) error {
	return r.db.WithContext(ctx).
		Model(&unit.Unit{}).
		Where("id = ?", unitID).
		Updates(map[string]interface{}{
			"is_available": false,
			"tenant_id":    tenantID,
		}).Error
}

// ListDueUnits lists occupied units whose rent falls due within the window.
func (r *UnitRepository) ListDueUnits(ctx context.Context, within time.Duration) ([]unit.Unit, error) {
	var units []unit.Unit
	now := time.Now()
	err := r.db.WithContext(ctx).
		Where("tenant_id IS NOT NULL AND rent_due_date IS NOT NULL").
		Where("rent_due_date BETWEEN ? AND ?", now, now.Add(within)).
		Where("rent_remaining > 0").
		Find(&units).Error
	return units, err
}
