package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

type ProductFilter struct {
	CategoryID *uint
	MinPrice   *int64
	MaxPrice   *int64
	ActiveOnly bool
	// Query matches name or description case-insensitively.
	Query string
}

func (r *GormRepo) productViews(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

func applyProductFilter(q *gorm.DB, f ProductFilter) *gorm.DB {
	if f.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.ProductView, error) {
	var total int64
	if err := applyProductFilter(r.DB.WithContext(ctx).Model(&models.Product{}), f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.ProductView
	q := applyProductFilter(r.productViews(ctx), f)
	if err := q.Order("products.created_at DESC").Order("products.id DESC").Offset(offset).Limit(limit).Scan(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ProductViewsByIDs keeps the order of ids; missing or filtered-out ids are skipped.
func (r *GormRepo) ProductViewsByIDs(ctx context.Context, ids []uint, activeOnly bool) ([]models.ProductView, error) {
	if len(ids) == 0 {
		return []models.ProductView{}, nil
	}

	var rows []models.ProductView
	q := applyProductFilter(r.productViews(ctx), ProductFilter{ActiveOnly: activeOnly}).Where("products.id IN ?", ids)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.ProductView, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]models.ProductView, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *GormRepo) ProductViewByID(ctx context.Context, id uint, activeOnly bool) (*models.ProductView, error) {
	var rows []models.ProductView
	q := applyProductFilter(r.productViews(ctx), ProductFilter{ActiveOnly: activeOnly}).Where("products.id = ?", id).Limit(1)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *GormRepo) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockProduct reads a product row FOR UPDATE; meant to be called inside Transaction.
func (r *GormRepo) LockProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := forUpdate(r.DB.WithContext(ctx)).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Save(prod).Error
}

// UpdateProductFields writes only the given columns, leaving stock_quantity to
// the conditional stock updates unless it is named explicitly.
func (r *GormRepo) UpdateProductFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProductOrdered reports whether any order line points at the product.
func (r *GormRepo) ProductOrdered(ctx context.Context, productID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", productID).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) DeleteCartLinesForProduct(ctx context.Context, productID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock subtracts qty only while the product is active and the
// result stays non-negative. It reports false when no row qualified.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uint, qty int64) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND stock_quantity >= ?", productID, true, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock returns gorm.ErrRecordNotFound when the product row is gone.
func (r *GormRepo) IncrementStock(ctx context.Context, productID uint, qty int64) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Create(cat).Error
}

func (r *GormRepo) SaveCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Save(cat).Error
}

func (r *GormRepo) CountProductsInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
