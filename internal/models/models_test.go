package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	t.Parallel()

	for _, s := range OrderStatuses {
		assert.True(t, ValidOrderStatus(s), s)
	}
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("PENDING"))
	assert.False(t, ValidOrderStatus("refunded"))
}

func TestUserCancellable(t *testing.T) {
	t.Parallel()

	assert.True(t, UserCancellable(OrderStatusPending))
	assert.True(t, UserCancellable(OrderStatusConfirmed))
	assert.False(t, UserCancellable(OrderStatusShipped))
	assert.False(t, UserCancellable(OrderStatusDelivered))
	assert.False(t, UserCancellable(OrderStatusCancelled))
}
