package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]models.CartLineView, error) {
	var lines []models.CartLineView
	err := r.DB.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.id, cart_items.product_id, products.name AS product_name,
			products.price AS product_price, cart_items.quantity,
			products.price * cart_items.quantity AS total_price, cart_items.created_at`).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// CheckoutLines loads the cart joined with live product rows, locking both on
// dialects with row locks.
func (r *GormRepo) CheckoutLines(ctx context.Context, userID uint) ([]models.CheckoutLine, error) {
	var lines []models.CheckoutLine
	q := r.DB.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.id AS cart_item_id, cart_items.product_id, products.name AS product_name,
			products.price, products.stock_quantity, products.is_active, cart_items.quantity`).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.product_id ASC")
	if err := forUpdate(q).Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) CartItemByProduct(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := forUpdate(r.DB.WithContext(ctx)).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CartItemByID(ctx context.Context, userID, id uint) (*models.CartItem, error) {
	var item models.CartItem
	err := forUpdate(r.DB.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, item *models.CartItem, qty int64) error {
	if err := r.DB.WithContext(ctx).Model(item).Update("quantity", qty).Error; err != nil {
		return err
	}
	item.Quantity = qty
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, id uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
