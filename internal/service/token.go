package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/shop_backend/internal/revocation"
	"github.com/Skotchmaster/shop_backend/pkg/hash"
	"github.com/Skotchmaster/shop_backend/pkg/tokens"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type UserLookup interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

type TokenService struct {
	Users   UserLookup
	Revoked revocation.Store

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	now func() time.Time
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AccessExp    time.Time `json:"access_expires_at"`
	RefreshExp   time.Time `json:"refresh_expires_at"`
}

func NewTokenService(users UserLookup, store revocation.Store, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if len(refreshSecret) == 0 {
		refreshSecret = accessSecret
	}
	return &TokenService{
		Users:         users,
		Revoked:       store,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (s *TokenService) IssueAccessToken(userID uint) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.AccessTTL)
	tok, err := tokens.Sign(s.AccessSecret, tokens.KindAccess, subject(userID), "", now, exp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return tok, exp, nil
}

func (s *TokenService) IssueRefreshToken(userID uint) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.RefreshTTL)
	tok, err := tokens.Sign(s.RefreshSecret, tokens.KindRefresh, subject(userID), uuid.NewString(), now, exp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return tok, exp, nil
}

func (s *TokenService) IssuePair(userID uint) (*TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Authenticate resolves an access token to a user id that still exists.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (uint, error) {
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.AccessSecret, jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := s.subjectExists(ctx, claims)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// RotateRefresh consumes a refresh token and issues a new pair. The presented
// token is revoked before the pair is minted, so it stays unusable even when
// the response never reaches the client.
func (s *TokenService) RotateRefresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := s.subjectExists(ctx, claims)
	if err != nil {
		return nil, err
	}

	added, err := s.Revoked.Add(ctx, hash.Sha256Hex(refreshToken), claims.ExpiresAt.Time)
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !added {
		return nil, fmt.Errorf("%w: refresh token already used", ErrUnauthorized)
	}

	return s.IssuePair(userID)
}

// Revoke is idempotent. Tokens that fail verification cannot be exchanged
// anyway and are ignored; a valid token issued to another user is refused.
func (s *TokenService) Revoke(ctx context.Context, userID uint, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil
	}
	if claims.Subject != subject(userID) {
		return fmt.Errorf("%w: refresh token belongs to another user", ErrForbidden)
	}
	if _, err := s.Revoked.Add(ctx, hash.Sha256Hex(refreshToken), claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *TokenService) IsRevoked(ctx context.Context, refreshToken string) (bool, error) {
	return s.Revoked.Contains(ctx, hash.Sha256Hex(refreshToken))
}

func (s *TokenService) subjectExists(ctx context.Context, claims *tokens.Claims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}
	ok, err := s.Users.UserExists(ctx, uint(id))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
	}
	return uint(id), nil
}

func subject(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
