// Package events defines the domain events published after a commit.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

const (
	UserRegistered     = "user.registered"
	OrderCreated       = "order.created"
	OrderCancelled     = "order.cancelled"
	OrderStatusChanged = "order.status_changed"
	ProductUpserted    = "product.upserted"
	ProductDeleted     = "product.deleted"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }

type Emitter struct {
	Publisher Publisher
	Prefix    string
}

func NewEmitter(p Publisher, prefix string) *Emitter {
	if p == nil {
		p = Nop{}
	}
	return &Emitter{Publisher: p, Prefix: prefix}
}

func (e *Emitter) Topic(name string) string {
	if e.Prefix == "" {
		return name
	}
	return e.Prefix + "." + name
}

// Emit publishes best-effort: failures are logged and never returned. The
// caller's cancellation is ignored so a finished request still gets its event out.
func (e *Emitter) Emit(ctx context.Context, name string, id uint, payload any) {
	if e == nil {
		return
	}
	l := logging.FromContext(ctx).With("event", name)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	env := Envelope{Type: name, OccurredAt: time.Now().UTC(), Data: payload}
	if err := e.Publisher.PublishEvent(pubCtx, e.Topic(name), strconv.FormatUint(uint64(id), 10), env); err != nil {
		l.Error("publish_event_error", "error", err)
		return
	}
	l.Debug("publish_event_success")
}

type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type UserRegisteredEvent struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type OrderLine struct {
	ProductID uint  `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type OrderEvent struct {
	OrderID     uint        `json:"order_id"`
	UserID      uint        `json:"user_id"`
	Status      string      `json:"status"`
	PrevStatus  string      `json:"prev_status,omitempty"`
	TotalAmount int64       `json:"total_amount"`
	Items       []OrderLine `json:"items,omitempty"`
}

type ProductEvent struct {
	ProductID     uint   `json:"product_id"`
	Name          string `json:"name,omitempty"`
	Price         int64  `json:"price,omitempty"`
	StockQuantity int64  `json:"stock_quantity,omitempty"`
	IsActive      bool   `json:"is_active"`
}
