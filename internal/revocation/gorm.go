package revocation

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

// GormStore persists revocations in the revoked_tokens table so that they
// survive restarts and are shared between replicas.
type GormStore struct {
	DB *gorm.DB

	mu        sync.Mutex
	now       func() time.Time
	interval  time.Duration
	lastPurge time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, now: time.Now, interval: 10 * time.Minute}
}

func (s *GormStore) Add(ctx context.Context, key string, expiresAt time.Time) (bool, error) {
	now := s.now().UTC()
	if !now.Before(expiresAt) {
		return true, nil
	}
	if err := s.maybePurge(ctx, now); err != nil {
		return false, err
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{TokenHash: key, ExpiresAt: expiresAt.UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Contains(ctx context.Context, key string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_hash = ? AND expires_at > ?", key, s.now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) maybePurge(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	due := now.Sub(s.lastPurge) >= s.interval
	if due {
		s.lastPurge = now
	}
	s.mu.Unlock()

	if !due {
		return nil
	}
	_, err := s.PurgeExpired(ctx)
	return err
}
