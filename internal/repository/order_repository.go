package repository

import (
	"context"

	"campus_essentials/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit("Listing", "Buyer").Create(order).Error, "orderRepo.Create")
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Listing").First(&order, id).Error; err != nil {
		return nil, translate(err, "orderRepo.GetByID")
	}
	return &order, nil
}

func (r *OrderRepository) GetByChargeID(ctx context.Context, chargeID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("provider_charge_id = ?", chargeID).First(&order).Error; err != nil {
		return nil, translate(err, "orderRepo.GetByChargeID")
	}
	return &order, nil
}

func (r *OrderRepository) AttachCharge(ctx context.Context, id uint, chargeID, authorizeURI string) error {
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"provider_charge_id": chargeID,
		"authorize_uri":      authorizeURI,
	}).Error
	return translate(err, "orderRepo.AttachCharge")
}

// Transition moves a created order to paid or failed. Orders that already
// left the created state are not touched and false is returned. A paid
// order marks its listing sold in the same transaction.
func (r *OrderRepository) Transition(ctx context.Context, id uint, to models.OrderStatus, reason string) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "listing_id").First(&order, id).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderCreated).
			Updates(map[string]interface{}{"status": to, "failure_reason": reason})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true

		if to == models.OrderPaid {
			return tx.Model(&models.Listing{}).Where("id = ?", order.ListingID).Update("is_sold", true).Error
		}
		return nil
	})
	if err != nil {
		return false, translate(err, "orderRepo.Transition")
	}
	return changed, nil
}
