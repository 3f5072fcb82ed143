package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

const (
	minAddressLen = 10
	maxAddressLen = 500
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events *events.Emitter
}

func validateAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if n := len([]rune(addr)); n < minAddressLen || n > maxAddressLen {
		return "", fmt.Errorf("%w: shipping_address must be %d-%d characters", ErrValidation, minAddressLen, maxAddressLen)
	}
	return addr, nil
}

// CreateOrder turns the user's cart into a pending order. Validation, the
// order insert, stock decrements and the cart clear share one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, shippingAddress string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	addr, err := validateAddress(shippingAddress)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		lines, err := tx.CheckoutLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		items := make([]models.OrderItem, 0, len(lines))
		var total int64
		for _, ln := range lines {
			if !ln.IsActive {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, ln.ProductName)
			}
			if ln.Quantity > ln.StockQuantity {
				return fmt.Errorf("%w: %s (requested %d, available %d)", ErrInsufficientStock, ln.ProductName, ln.Quantity, ln.StockQuantity)
			}
			lineTotal := ln.Price * ln.Quantity
			total += lineTotal
			items = append(items, models.OrderItem{
				ProductID:   ln.ProductID,
				ProductName: ln.ProductName,
				Quantity:    ln.Quantity,
				UnitPrice:   ln.Price,
				TotalPrice:  lineTotal,
			})
		}

		o := &models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			ShippingAddress: addr,
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}

		for _, it := range items {
			ok, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, it.ProductName)
			}
		}

		if _, err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		l.Warn("create_order_failed", "error", err)
		return nil, err
	}

	l.Info("create_order_success", "order_id", order.ID, "total_amount", order.TotalAmount)
	s.Events.Emit(ctx, events.OrderCreated, order.ID, orderEvent(order, ""))
	return order, nil
}

// GetOrder hides orders of other users behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, translate(err, "order")
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order: %w", ErrNotFound)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.OrderSummary, error) {
	return s.Repo.ListOrderSummaries(ctx, repo.OrderFilter{UserID: &userID}, offset, limit)
}

func (s *OrderService) AdminListOrders(ctx context.Context, status string, offset, limit int) (int64, []models.OrderSummary, error) {
	if status != "" && !models.ValidOrderStatus(status) {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListOrderSummaries(ctx, repo.OrderFilter{Status: status}, offset, limit)
}

func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var prev string
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return translate(err, "order")
		}
		if o.UserID != userID {
			return fmt.Errorf("order: %w", ErrNotFound)
		}
		if !models.UserCancellable(o.Status) {
			return fmt.Errorf("%w: cannot cancel an order in status %s", ErrInvalidTransition, o.Status)
		}
		prev = o.Status
		return cancelLocked(ctx, tx, o, []string{models.OrderStatusPending, models.OrderStatusConfirmed})
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("cancel_order_success", "svc", "order.cancel", "order_id", orderID)
	s.Events.Emit(ctx, events.OrderCancelled, order.ID, orderEvent(order, prev))
	return order, nil
}

// AdminUpdateOrder applies the provided fields. Entering cancelled restores
// stock like a user cancel; leaving cancelled reserves the stock again.
func (s *OrderService) AdminUpdateOrder(ctx context.Context, orderID uint, req transport.AdminUpdateOrderRequest) (*models.Order, error) {
	if req.Status != nil && !models.ValidOrderStatus(*req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if req.ShippingAddress != nil {
		addr, err := validateAddress(*req.ShippingAddress)
		if err != nil {
			return nil, err
		}
		fields["shipping_address"] = addr
	}

	var prev string
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return translate(err, "order")
		}
		prev = o.Status

		if req.Status != nil && *req.Status != o.Status {
			next := *req.Status
			switch {
			case next == models.OrderStatusCancelled:
				if err := cancelLocked(ctx, tx, o, []string{o.Status}); err != nil {
					return err
				}
			case o.Status == models.OrderStatusCancelled:
				if err := reserveLocked(ctx, tx, o, next); err != nil {
					return err
				}
			default:
				ok, err := tx.TransitionOrder(ctx, o.ID, []string{o.Status}, next)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
				}
			}
		}

		return translate(tx.UpdateOrderFields(ctx, o.ID, fields), "order")
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != prev {
		s.Events.Emit(ctx, events.OrderStatusChanged, order.ID, orderEvent(order, prev))
	}
	return order, nil
}

func cancelLocked(ctx context.Context, tx *repo.GormRepo, o *models.Order, from []string) error {
	ok, err := tx.TransitionOrder(ctx, o.ID, from, models.OrderStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order is no longer cancellable", ErrInvalidTransition)
	}
	for _, it := range o.Items {
		if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return translate(err, "product")
		}
	}
	o.Status = models.OrderStatusCancelled
	return nil
}

func reserveLocked(ctx context.Context, tx *repo.GormRepo, o *models.Order, next string) error {
	ok, err := tx.TransitionOrder(ctx, o.ID, []string{models.OrderStatusCancelled}, next)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}
	for _, it := range o.Items {
		ok, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, it.ProductName)
		}
	}
	o.Status = next
	return nil
}

func orderEvent(o *models.Order, prev string) events.OrderEvent {
	ev := events.OrderEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		PrevStatus:  prev,
		TotalAmount: o.TotalAmount,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, events.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return ev
}
