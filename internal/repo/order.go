package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

type OrderFilter struct {
	UserID *uint
	Status string
}

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) OrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LockOrder reads the order row FOR UPDATE together with its items.
func (r *GormRepo) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := forUpdate(r.DB.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrderSummaries(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.OrderSummary, error) {
	base := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&models.Order{})
		if f.UserID != nil {
			q = q.Where("orders.user_id = ?", *f.UserID)
		}
		if f.Status != "" {
			q = q.Where("orders.status = ?", f.Status)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var rows []models.OrderSummary
	err := base().
		Select(`orders.id, orders.user_id, orders.total_amount, orders.status, orders.shipping_address,
			orders.created_at, orders.updated_at,
			(SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS items_count`).
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}
	return total, rows, nil
}

// TransitionOrder moves the order to status "to" only while it is in one of
// "from". It reports false when the guard did not match.
func (r *GormRepo) TransitionOrder(ctx context.Context, id uint, from []string, to string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) UpdateOrderFields(ctx context.Context, id uint, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
