package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func (r *GormRepo) CountUsers(ctx context.Context, activeOnly bool, since *time.Time) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *GormRepo) CountUsersWithOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Distinct("user_id").Count(&n).Error
	return n, err
}

func (r *GormRepo) CountProducts(ctx context.Context, activeOnly bool) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *GormRepo) CountOrders(ctx context.Context, status string, since *time.Time) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Revenue sums non-cancelled orders created at or after since (all time when nil).
func (r *GormRepo) Revenue(ctx context.Context, since *time.Time) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status <> ?", models.OrderStatusCancelled)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var sum int64
	err := q.Scan(&sum).Error
	return sum, err
}

func (r *GormRepo) OrdersByStatus(ctx context.Context, since time.Time) ([]models.StatusCount, error) {
	var rows []models.StatusCount
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

// OrdersSince returns the non-cancelled orders in the window without items.
func (r *GormRepo) OrdersSince(ctx context.Context, since time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Select("id", "total_amount", "status", "created_at").
		Where("created_at >= ? AND status <> ?", since, models.OrderStatusCancelled).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// ProductSales ranks products by units sold in non-cancelled orders, best
// sellers first. A nil since covers all time.
func (r *GormRepo) ProductSales(ctx context.Context, since *time.Time, limit int) ([]models.ProductSales, error) {
	q := r.DB.WithContext(ctx).
		Table("order_items").
		Select(`order_items.product_id, MAX(order_items.product_name) AS product_name,
			SUM(order_items.quantity) AS quantity_sold, SUM(order_items.total_price) AS revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", models.OrderStatusCancelled)
	if since != nil {
		q = q.Where("orders.created_at >= ?", *since)
	}

	var rows []models.ProductSales
	err := q.Group("order_items.product_id").
		Order("quantity_sold DESC").
		Order("order_items.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// UnsoldProducts lists active products that no order line has ever referenced.
func (r *GormRepo) UnsoldProducts(ctx context.Context, limit int) ([]models.UnsoldProduct, error) {
	var rows []models.UnsoldProduct
	err := r.DB.WithContext(ctx).
		Table("products").
		Select("products.id AS product_id, products.name AS product_name, products.stock_quantity").
		Joins("LEFT JOIN order_items ON order_items.product_id = products.id").
		Where("products.is_active = ?", true).
		Group("products.id, products.name, products.stock_quantity").
		Having("COUNT(order_items.id) = 0").
		Order("products.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) RevenueByCategory(ctx context.Context, since time.Time) ([]models.CategoryRevenue, error) {
	var rows []models.CategoryRevenue
	err := r.DB.WithContext(ctx).
		Table("order_items").
		Select("categories.id AS category_id, categories.name AS category_name, SUM(order_items.total_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("orders.status <> ? AND orders.created_at >= ?", models.OrderStatusCancelled, since).
		Group("categories.id, categories.name").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) AverageActivePrice(ctx context.Context) (float64, error) {
	var avg float64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("COALESCE(AVG(price), 0)").
		Where("is_active = ?", true).
		Scan(&avg).Error
	return avg, err
}

// StockBetween lists active products with stock in [min, max], lowest stock first.
func (r *GormRepo) StockBetween(ctx context.Context, min, max int64) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where("is_active = ? AND stock_quantity >= ? AND stock_quantity <= ?", true, min, max).
		Order("stock_quantity ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}
