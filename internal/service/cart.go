package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

type CartService struct {
	Repo *repo.GormRepo
}

// GetCart prices every line at the current product price.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*models.CartView, error) {
	lines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{Items: make([]models.CartLineView, 0, len(lines))}
	for _, ln := range lines {
		view.Items = append(view.Items, ln)
		view.TotalItems += ln.Quantity
		view.TotalAmount += ln.TotalPrice
	}
	return view, nil
}

// AddItem merges with an existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, qty int64) (*models.CartLineView, error) {
	if productID == 0 {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var line *models.CartLineView
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return translate(err, "product")
		}
		if !product.IsActive {
			return fmt.Errorf("product: %w", ErrNotFound)
		}

		item, err := tx.CartItemByProduct(ctx, userID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		total := qty
		if item != nil {
			total += item.Quantity
		}
		if total > product.StockQuantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, total, product.StockQuantity)
		}

		if item != nil {
			if err := tx.SetCartItemQuantity(ctx, item, total); err != nil {
				return err
			}
		} else {
			item = &models.CartItem{UserID: userID, ProductID: productID, Quantity: total}
			if err := tx.CreateCartItem(ctx, item); err != nil {
				return translate(err, "cart line")
			}
		}

		line = lineView(item, product)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("cart_add_success", "svc", "cart.add", "product_id", productID, "quantity", line.Quantity)
	return line, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID, lineID uint, qty int64) (*models.CartLineView, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var line *models.CartLineView
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		item, err := tx.CartItemByID(ctx, userID, lineID)
		if err != nil {
			return translate(err, "cart line")
		}
		product, err := tx.LockProduct(ctx, item.ProductID)
		if err != nil {
			return translate(err, "product")
		}
		if !product.IsActive {
			return fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
		}
		if qty > product.StockQuantity {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, qty, product.StockQuantity)
		}
		if err := tx.SetCartItemQuantity(ctx, item, qty); err != nil {
			return err
		}
		line = lineView(item, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID uint) error {
	return translate(s.Repo.DeleteCartItem(ctx, userID, lineID), "cart line")
}

// Clear refuses to run without an explicit confirmation.
func (s *CartService) Clear(ctx context.Context, userID uint, confirm bool) (int64, error) {
	if !confirm {
		return 0, fmt.Errorf("%w: confirmation required to clear the cart", ErrValidation)
	}
	return s.Repo.ClearCart(ctx, userID)
}

func lineView(item *models.CartItem, product *models.Product) *models.CartLineView {
	return &models.CartLineView{
		ID:           item.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     item.Quantity,
		TotalPrice:   product.Price * item.Quantity,
		CreatedAt:    item.CreatedAt,
	}
}
