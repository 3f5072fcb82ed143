package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/search"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

const (
	maxProductNameLen  = 200
	maxCategoryNameLen = 100
)

// ProductIndexer is the search backend behind /products/search.
type ProductIndexer interface {
	Put(ctx context.Context, doc search.Document) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo *repo.GormRepo
	// Index is optional; without it search runs against the database.
	Index  ProductIndexer
	Events *events.Emitter
}

type ProductQuery struct {
	CategoryID *uint
	MinPrice   *int64
	MaxPrice   *int64
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery, offset, limit int) (int64, []models.ProductView, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return 0, nil, fmt.Errorf("%w: min_price is greater than max_price", ErrValidation)
	}
	return s.Repo.ListProducts(ctx, repo.ProductFilter{
		CategoryID: q.CategoryID,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		ActiveOnly: true,
	}, offset, limit)
}

func (s *CatalogService) AdminListProducts(ctx context.Context, offset, limit int) (int64, []models.ProductView, error) {
	return s.Repo.ListProducts(ctx, repo.ProductFilter{}, offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.ProductView, error) {
	p, err := s.Repo.ProductViewByID(ctx, id, true)
	if err != nil {
		return nil, translate(err, "product")
	}
	return p, nil
}

// Search uses the index when one is configured and falls back to a LIKE
// query when there is none or it fails.
func (s *CatalogService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.ProductView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: q required", ErrValidation)
	}
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductViewsByIDs(ctx, ids, true)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		l.Warn("search_index_error", "error", err)
	}

	return s.Repo.ListProducts(ctx, repo.ProductFilter{ActiveOnly: true, Query: query}, offset, limit)
}

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "" || len([]rune(p.Name)) > maxProductNameLen:
		return fmt.Errorf("%w: name must be 1-%d characters", ErrValidation, maxProductNameLen)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be > 0", ErrValidation)
	case p.StockQuantity < 0:
		return fmt.Errorf("%w: stock_quantity must be >= 0", ErrValidation)
	case p.CategoryID == 0:
		return fmt.Errorf("%w: category_id required", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.ProductView, error) {
	p := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
		IsActive:      true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if _, err := s.Repo.CategoryByID(ctx, p.CategoryID); err != nil {
		return nil, translate(err, "category")
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, translate(err, "product name")
	}

	logging.FromContext(ctx).Info("create_product_success", "svc", "catalog.create_product", "product_id", p.ID)
	s.afterUpsert(ctx, p)
	return s.Repo.ProductViewByID(ctx, p.ID, false)
}

// PatchProduct applies only the fields present in req. The row is locked for
// the duration so a concurrent checkout cannot be overwritten.
func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.ProductView, error) {
	var p *models.Product
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProduct(ctx, id)
		if err != nil {
			return translate(err, "product")
		}

		var cols []string
		if req.Name != nil {
			p.Name = *req.Name
			cols = append(cols, "name")
		}
		if req.Description != nil {
			p.Description = *req.Description
			cols = append(cols, "description")
		}
		if req.Price != nil {
			p.Price = *req.Price
			cols = append(cols, "price")
		}
		if req.StockQuantity != nil {
			p.StockQuantity = *req.StockQuantity
			cols = append(cols, "stock_quantity")
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
			cols = append(cols, "is_active")
		}
		if req.CategoryID != nil && *req.CategoryID != p.CategoryID {
			if _, err := tx.CategoryByID(ctx, *req.CategoryID); err != nil {
				return translate(err, "category")
			}
			p.CategoryID = *req.CategoryID
			cols = append(cols, "category_id")
		}
		if err := validateProduct(p); err != nil {
			return err
		}

		values := map[string]any{
			"name":           p.Name,
			"description":    p.Description,
			"price":          p.Price,
			"stock_quantity": p.StockQuantity,
			"is_active":      p.IsActive,
			"category_id":    p.CategoryID,
		}
		fields := make(map[string]any, len(cols))
		for _, c := range cols {
			fields[c] = values[c]
		}
		if err := tx.UpdateProductFields(ctx, p.ID, fields); err != nil {
			return translate(err, "product name")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterUpsert(ctx, p)
	return s.Repo.ProductViewByID(ctx, p.ID, false)
}

// DeleteProduct refuses products that orders still reference; those should be
// deactivated instead. Cart lines for the product are dropped with it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.LockProduct(ctx, id); err != nil {
			return translate(err, "product")
		}
		ordered, err := tx.ProductOrdered(ctx, id)
		if err != nil {
			return err
		}
		if ordered {
			return fmt.Errorf("%w: product has orders, deactivate it instead", ErrConflict)
		}
		if _, err := tx.DeleteCartLinesForProduct(ctx, id); err != nil {
			return err
		}
		return translate(tx.DeleteProduct(ctx, id), "product")
	})
	if err != nil {
		return err
	}

	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_index_delete_error", "error", err)
		}
	}
	l.Info("delete_product_success")
	s.Events.Emit(ctx, events.ProductDeleted, id, events.ProductEvent{ProductID: id})
	return nil
}

func (s *CatalogService) afterUpsert(ctx context.Context, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.Put(ctx, search.DocumentFromProduct(p)); err != nil {
			logging.FromContext(ctx).Warn("search_index_put_error", "product_id", p.ID, "error", err)
		}
	}
	s.Events.Emit(ctx, events.ProductUpserted, p.ID, events.ProductEvent{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	})
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxCategoryNameLen {
		return "", fmt.Errorf("%w: name must be 1-%d characters", ErrValidation, maxCategoryNameLen)
	}
	return name, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	name, err := validateCategoryName(req.Name)
	if err != nil {
		return nil, err
	}
	cat := &models.Category{Name: name, Description: req.Description}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, translate(err, "category name")
	}
	return cat, nil
}

func (s *CatalogService) PatchCategory(ctx context.Context, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	cat, err := s.Repo.CategoryByID(ctx, id)
	if err != nil {
		return nil, translate(err, "category")
	}
	if req.Name != nil {
		name, err := validateCategoryName(*req.Name)
		if err != nil {
			return nil, err
		}
		cat.Name = name
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if err := s.Repo.SaveCategory(ctx, cat); err != nil {
		return nil, translate(err, "category name")
	}
	return cat, nil
}

// DeleteCategory refuses while any product still references the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.Repo.CategoryByID(ctx, id); err != nil {
		return translate(err, "category")
	}
	n, err := s.Repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category has %d products", ErrConflict, n)
	}
	return translate(s.Repo.DeleteCategory(ctx, id), "category")
}
