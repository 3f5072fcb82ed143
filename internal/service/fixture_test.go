package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/revocation"
	"github.com/Skotchmaster/shop_backend/internal/testdb"
)

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type shop struct {
	repo      *repo.GormRepo
	published *recordingPublisher
	tokens    *TokenService
	auth      *AuthService
	cart      *CartService
	orders    *OrderService
	catalog   *CatalogService
	stats     *StatsService
	category  models.Category
}

func newShop(t *testing.T) *shop {
	t.Helper()

	r := repo.New(testdb.SQLite(t))
	pub := &recordingPublisher{}
	em := events.NewEmitter(pub, "")
	tokens := NewTokenService(r, revocation.NewMemoryStore(), []byte("access-secret"), []byte("refresh-secret"), time.Minute, time.Hour)

	s := &shop{
		repo:      r,
		published: pub,
		tokens:    tokens,
		auth:      &AuthService{Repo: r, Tokens: tokens, Events: em},
		cart:      &CartService{Repo: r},
		orders:    &OrderService{Repo: r, Events: em},
		catalog:   &CatalogService{Repo: r, Events: em},
		stats:     NewStatsService(r),
	}
	s.category = models.Category{Name: "Books"}
	require.NoError(t, r.CreateCategory(context.Background(), &s.category))
	return s
}

func (s *shop) user(t *testing.T, email string) *models.User {
	t.Helper()

	u, err := s.auth.createUser(context.Background(), email, "secret123", false)
	require.NoError(t, err)
	return u
}

func (s *shop) product(t *testing.T, name string, price, stock int64) *models.Product {
	t.Helper()

	p := &models.Product{Name: name, Price: price, StockQuantity: stock, CategoryID: s.category.ID, IsActive: true}
	require.NoError(t, s.repo.CreateProduct(context.Background(), p))
	return p
}

func (s *shop) stock(t *testing.T, productID uint) int64 {
	t.Helper()

	p, err := s.repo.ProductByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func (s *shop) addToCart(t *testing.T, userID, productID uint, qty int64) {
	t.Helper()

	_, err := s.cart.AddItem(context.Background(), userID, productID, qty)
	require.NoError(t, err)
}

const testAddress = "221B Baker Street, London"
