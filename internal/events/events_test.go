package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	topic, key string
	event      any
	err        error
	ctxErr     error
}

func (c *capture) PublishEvent(ctx context.Context, topic, key string, event any) error {
	c.topic, c.key, c.event = topic, key, event
	c.ctxErr = ctx.Err()
	return c.err
}

func TestEmitter_Emit_PrefixesTopic(t *testing.T) {
	t.Parallel()

	c := &capture{}
	e := NewEmitter(c, "shop")

	e.Emit(context.Background(), OrderCreated, 42, OrderEvent{OrderID: 42})

	assert.Equal(t, "shop.order.created", c.topic)
	assert.Equal(t, "42", c.key)
	env, ok := c.event.(Envelope)
	require.True(t, ok)
	assert.Equal(t, OrderCreated, env.Type)
	assert.Equal(t, OrderEvent{OrderID: 42}, env.Data)
}

func TestEmitter_Emit_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	c := &capture{}
	e := NewEmitter(c, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e.Emit(ctx, ProductDeleted, 1, ProductEvent{ProductID: 1})

	assert.Equal(t, ProductDeleted, c.topic)
	assert.NoError(t, c.ctxErr)
}

func TestEmitter_Emit_SwallowsErrors(t *testing.T) {
	t.Parallel()

	c := &capture{err: errors.New("down")}
	e := NewEmitter(c, "shop")

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), UserRegistered, 1, UserRegisteredEvent{UserID: 1})
	})
}

func TestEmitter_NilSafe(t *testing.T) {
	t.Parallel()

	var e *Emitter
	assert.NotPanics(t, func() { e.Emit(context.Background(), OrderCreated, 1, nil) })
	assert.NoError(t, NewEmitter(nil, "").Publisher.PublishEvent(context.Background(), "t", "k", nil))
}
