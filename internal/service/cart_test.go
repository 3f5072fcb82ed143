package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItemMergesQuantities(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Keyboard", 4999, 10)

	line, err := s.cart.AddItem(ctx, u.ID, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), line.Quantity)

	line, err = s.cart.AddItem(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), line.Quantity)
	assert.Equal(t, int64(7*4999), line.TotalPrice)

	_, err = s.cart.AddItem(ctx, u.ID, p.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	cart, err := s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(7), cart.TotalItems)
	assert.Equal(t, int64(7*4999), cart.TotalAmount)
	assert.Equal(t, int64(10), s.stock(t, p.ID))
}

func TestCartService_AddItemValidation(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Mouse", 1999, 3)

	_, err := s.cart.AddItem(ctx, u.ID, p.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.cart.AddItem(ctx, u.ID, 0, 1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.cart.AddItem(ctx, u.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	p.IsActive = false
	require.NoError(t, s.repo.SaveProduct(ctx, p))
	_, err = s.cart.AddItem(ctx, u.ID, p.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	other := s.user(t, "other@example.com")
	p := s.product(t, "Monitor", 19999, 5)

	line, err := s.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	updated, err := s.cart.UpdateItem(ctx, u.ID, line.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Quantity)

	_, err = s.cart.UpdateItem(ctx, u.ID, line.ID, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	_, err = s.cart.UpdateItem(ctx, u.ID, line.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.cart.UpdateItem(ctx, other.ID, line.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.cart.RemoveItem(ctx, other.ID, line.ID), ErrNotFound)
	require.NoError(t, s.cart.RemoveItem(ctx, u.ID, line.ID))
	assert.ErrorIs(t, s.cart.RemoveItem(ctx, u.ID, line.ID), ErrNotFound)
}

func TestCartService_UpdateInactiveProduct(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	p := s.product(t, "Webcam", 2999, 5)

	line, err := s.cart.AddItem(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	p.IsActive = false
	require.NoError(t, s.repo.SaveProduct(ctx, p))

	_, err = s.cart.UpdateItem(ctx, u.ID, line.ID, 2)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCartService_ClearNeedsConfirmation(t *testing.T) {
	t.Parallel()

	s := newShop(t)
	ctx := context.Background()
	u := s.user(t, "buyer@example.com")
	s.addToCart(t, u.ID, s.product(t, "A", 100, 5).ID, 1)
	s.addToCart(t, u.ID, s.product(t, "B", 200, 5).ID, 2)

	_, err := s.cart.Clear(ctx, u.ID, false)
	assert.ErrorIs(t, err, ErrValidation)

	n, err := s.cart.Clear(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cart, err := s.cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalAmount)
}
