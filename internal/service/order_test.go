package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

func ptr[T any](v T) *T { return &v }

func TestOrderService_CreateOrder(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	book := s.product(t, "Book", 1500, 10)
	pen := s.product(t, "Pen", 250, 4)
	s.addToCart(t, u.ID, book.ID, 2)
	s.addToCart(t, u.ID, pen.ID, 4)

	before, err := s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)

	order, err := s.orders.CreateOrder(ctx, u.ID, "  "+testAddress+"  ")
	require.NoError(t, err)
	assert.Equal(t, before.TotalAmount, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, testAddress, order.ShippingAddress)
	assert.Equal(t, int64(2*1500+4*250), order.TotalAmount)
	require.Len(t, order.Items, 2)

	var sum int64
	for _, it := range order.Items {
		assert.Equal(t, it.UnitPrice*it.Quantity, it.TotalPrice)
		sum += it.TotalPrice
	}
	assert.Equal(t, order.TotalAmount, sum)

	assert.Equal(t, int64(8), s.stock(t, book.ID))
	assert.Equal(t, int64(0), s.stock(t, pen.ID))

	cart, err := s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Contains(t, s.published.topics(), events.OrderCreated)
}

func TestOrderService_CreateOrderSnapshotsPrice(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Lamp", 3000, 5)
	s.addToCart(t, u.ID, p.ID, 1)

	order, err := s.orders.CreateOrder(ctx, u.ID, testAddress)
	require.NoError(t, err)

	p, err = s.repo.ProductByID(ctx, p.ID)
	require.NoError(t, err)
	p.Price = 9000
	p.Name = "Lamp v2"
	require.NoError(t, s.repo.SaveProduct(ctx, p))

	got, err := s.orders.GetOrder(ctx, u.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(3000), got.Items[0].UnitPrice)
	assert.Equal(t, "Lamp", got.Items[0].ProductName)
	assert.Equal(t, int64(3000), got.TotalAmount)
}

func TestOrderService_CreateOrderFailuresChangeNothing(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")

	_, err := s.orders.CreateOrder(ctx, u.ID, testAddress)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = s.orders.CreateOrder(ctx, u.ID, "short")
	assert.ErrorIs(t, err, ErrValidation)

	ok := s.product(t, "Plenty", 100, 10)
	scarce := s.product(t, "Scarce", 100, 5)
	s.addToCart(t, u.ID, ok.ID, 2)
	s.addToCart(t, u.ID, scarce.ID, 5)

	// stock drops under the cart quantity after it was added
	scarce.StockQuantity = 1
	require.NoError(t, s.repo.SaveProduct(ctx, scarce))

	_, err = s.orders.CreateOrder(ctx, u.ID, testAddress)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, int64(10), s.stock(t, ok.ID))
	assert.Equal(t, int64(1), s.stock(t, scarce.ID))
	cart, err := s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	total, _, err := s.orders.ListOrders(ctx, u.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	scarce.StockQuantity = 10
	scarce.IsActive = false
	require.NoError(t, s.repo.SaveProduct(ctx, scarce))
	_, err = s.orders.CreateOrder(ctx, u.ID, testAddress)
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Equal(t, int64(10), s.stock(t, ok.ID))
}

func TestOrderService_ConcurrentCheckoutNeverOversells(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	p := s.product(t, "Limited", 1000, 5)
	a := s.user(t, "a@example.com")
	b := s.user(t, "b@example.com")
	s.addToCart(t, a.ID, p.ID, 3)
	s.addToCart(t, b.ID, p.ID, 3)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uint{a.ID, b.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.orders.CreateOrder(ctx, id, testAddress)
		}()
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, int64(2), s.stock(t, p.ID))
}

func TestOrderService_ConcurrentCheckoutSameUserPlacesOneOrder(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	p := s.product(t, "Limited", 1000, 5)
	u := s.user(t, "twice@example.com")
	s.addToCart(t, u.ID, p.ID, 3)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.orders.CreateOrder(ctx, u.ID, testAddress)
		}()
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(2), s.stock(t, p.ID))

	total, orders, err := s.orders.ListOrders(ctx, u.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)
}

func TestOrderService_GetAndListAreOwnerScoped(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	owner := s.user(t, "owner@example.com")
	other := s.user(t, "other@example.com")
	p := s.product(t, "Mug", 800, 10)

	s.addToCart(t, owner.ID, p.ID, 1)
	first, err := s.orders.CreateOrder(ctx, owner.ID, testAddress)
	require.NoError(t, err)
	s.addToCart(t, owner.ID, p.ID, 2)
	second, err := s.orders.CreateOrder(ctx, owner.ID, testAddress)
	require.NoError(t, err)

	_, err = s.orders.GetOrder(ctx, other.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	total, rows, err := s.orders.ListOrders(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, int64(1), rows[0].ItemsCount)

	total, _, err = s.orders.ListOrders(ctx, other.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestOrderService_CancelRestoresStock(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	other := s.user(t, "other@example.com")
	p := s.product(t, "Chair", 5000, 6)
	s.addToCart(t, u.ID, p.ID, 4)

	order, err := s.orders.CreateOrder(ctx, u.ID, testAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.stock(t, p.ID))

	_, err = s.orders.CancelOrder(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := s.orders.CancelOrder(ctx, u.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(6), s.stock(t, p.ID))
	assert.Contains(t, s.published.topics(), events.OrderCancelled)

	_, err = s.orders.CancelOrder(ctx, u.ID, order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int64(6), s.stock(t, p.ID))
}

func TestOrderService_CancelRejectedAfterShipping(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Desk", 20000, 3)
	s.addToCart(t, u.ID, p.ID, 1)

	order, err := s.orders.CreateOrder(ctx, u.ID, testAddress)
	require.NoError(t, err)

	_, err = s.orders.AdminUpdateOrder(ctx, order.ID, transport.AdminUpdateOrderRequest{Status: ptr(models.OrderStatusShipped)})
	require.NoError(t, err)

	_, err = s.orders.CancelOrder(ctx, u.ID, order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, int64(2), s.stock(t, p.ID))
}

func TestOrderService_AdminUpdateOrder(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Sofa", 90000, 2)
	s.addToCart(t, u.ID, p.ID, 2)

	order, err := s.orders.CreateOrder(ctx, u.ID, testAddress)
	require.NoError(t, err)

	_, err = s.orders.AdminUpdateOrder(ctx, order.ID, transport.AdminUpdateOrderRequest{Status: ptr("lost")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.orders.AdminUpdateOrder(ctx, 9999, transport.AdminUpdateOrderRequest{Status: ptr(models.OrderStatusConfirmed)})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.orders.AdminUpdateOrder(ctx, order.ID, transport.AdminUpdateOrderRequest{
		Status:          ptr(models.OrderStatusConfirmed),
		ShippingAddress: ptr("1 Infinite Loop, Cupertino"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, "1 Infinite Loop, Cupertino", updated.ShippingAddress)
	assert.Contains(t, s.published.topics(), events.OrderStatusChanged)

	cancelled, err := s.orders.AdminUpdateOrder(ctx, order.ID, transport.AdminUpdateOrderRequest{Status: ptr(models.OrderStatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(2), s.stock(t, p.ID))

	// someone else buys one unit, so the cancelled order cannot be revived
	p.StockQuantity = 1
	require.NoError(t, s.repo.SaveProduct(ctx, p))
	_, err = s.orders.AdminUpdateOrder(ctx, order.ID, transport.AdminUpdateOrderRequest{Status: ptr(models.OrderStatusPending)})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := s.repo.OrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	p.StockQuantity = 5
	require.NoError(t, s.repo.SaveProduct(ctx, p))
	revived, err := s.orders.AdminUpdateOrder(ctx, order.ID, transport.AdminUpdateOrderRequest{Status: ptr(models.OrderStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, revived.Status)
	assert.Equal(t, int64(3), s.stock(t, p.ID))
}

func TestOrderService_AdminListFiltersByStatus(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Cable", 500, 10)

	for range 3 {
		s.addToCart(t, u.ID, p.ID, 1)
		_, err := s.orders.CreateOrder(ctx, u.ID, testAddress)
		require.NoError(t, err)
	}
	_, rows, err := s.orders.AdminListOrders(ctx, "", 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	_, err = s.orders.CancelOrder(ctx, u.ID, rows[0].ID)
	require.NoError(t, err)

	total, _, err := s.orders.AdminListOrders(ctx, models.OrderStatusCancelled, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	total, _, err = s.orders.AdminListOrders(ctx, models.OrderStatusPending, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = s.orders.AdminListOrders(ctx, "bogus", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
