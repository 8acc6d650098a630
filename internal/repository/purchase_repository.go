package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quickgpt/internal/model"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return fmt.Errorf("create purchase failed: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id uint) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase failed: %w", err)
	}
	return &purchase, nil
}

// MarkPaid flips an unpaid purchase to paid and credits its buyer in the same
// transaction. It reports false if the purchase is unknown or already paid.
func (r *PurchaseRepository) MarkPaid(ctx context.Context, id uint) (bool, error) {
	var paid bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase model.Purchase
		if err := tx.First(&purchase, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("get purchase failed: %w", err)
		}

		result := tx.Model(&model.Purchase{}).
			Where("id = ? AND is_paid = ?", id, false).
			Updates(map[string]any{"is_paid": true, "updated_at": time.Now()})
		if result.Error != nil {
			return fmt.Errorf("mark purchase paid failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := creditUser(tx, purchase.UserID, purchase.Credits); err != nil {
			return err
		}
		paid = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return paid, nil
}
