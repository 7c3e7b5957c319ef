package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// CreateOrder writes the order and its lines in one transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Scopes(withItems).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.DB.WithContext(ctx).
		Scopes(withItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, q transport.OrderQuery) ([]models.Order, error) {
	db := r.DB.WithContext(ctx).Scopes(withItems)
	if q.Status != "" {
		db = db.Where("order_status = ?", q.Status)
	}
	if q.Query != "" {
		p := likePattern(q.Query)
		db = db.Where(`(LOWER(order_number) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\')`, p, p)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at <= ?", *q.To)
	}

	orders := []models.Order{}
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus applies the new statuses only if the row still holds the
// statuses the caller read; otherwise it returns ErrStale.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, order *models.Order, fromOrder, fromPayment string) error {
	now := r.DB.NowFunc()
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status = ? AND payment_status = ?", order.ID, fromOrder, fromPayment).
		Updates(map[string]any{
			"order_status":   order.OrderStatus,
			"payment_status": order.PaymentStatus,
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	order.UpdatedAt = now
	return nil
}
