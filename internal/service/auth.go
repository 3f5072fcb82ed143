package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/pkg/hash"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

const (
	MinPasswordLen = 6
	maxPasswordLen = 72 // bcrypt input limit
	maxEmailLen    = 255
)

// dummyPasswordHash gives unknown-email logins the same bcrypt cost as a
// wrong password.
var dummyPasswordHash = sync.OnceValue(func() string {
	h, err := hash.HashPassword("no-such-user-password")
	if err != nil {
		panic(err)
	}
	return h
})

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *TokenService
	Events *events.Emitter
}

type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > maxEmailLen {
		return "", fmt.Errorf("%w: email required", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordLen)
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, email, password string, isAdmin bool) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		IsActive:     true,
		IsAdmin:      isAdmin,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, err
	}

	s.Events.Emit(ctx, events.UserRegistered, user.ID, events.UserRegisteredEvent{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	return user, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	user, err := s.createUser(ctx, email, password, false)
	if err != nil {
		return nil, err
	}

	pair, err := s.Tokens.IssuePair(user.ID)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	l.Info("register_success", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) RegisterAdmin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.createUser(ctx, email, password, true)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("register_admin_success", "svc", "auth.register_admin", "user_id", user.ID)
	return user, nil
}

// Login never tells apart an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	invalid := fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.CheckPassword(dummyPasswordHash(), password)
			l.Warn("login failed", "reason", "unknown email")
			return nil, invalid
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, invalid
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrInactiveAccount)
	}

	pair, err := s.Tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("%w: refresh token required", ErrUnauthorized)
	}
	return s.Tokens.RotateRefresh(ctx, refreshToken)
}

func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return fmt.Errorf("%w: refresh_token required", ErrValidation)
	}
	return s.Tokens.Revoke(ctx, userID, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return translate(err, "user")
	}
	if !hash.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return translate(s.Repo.UpdatePassword(ctx, userID, pwHash), "user")
}

func (s *AuthService) MakeAdmin(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.SetAdmin(ctx, userID, true)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, offset, limit)
}

func (s *AuthService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin && user.IsActive, nil
}

// SeedAdmin makes sure an admin account with this email exists. An existing
// user is promoted; its password is left untouched.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (*models.User, error) {
	norm, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.UserByEmail(ctx, norm)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, nil
		}
		return s.MakeAdmin(ctx, existing.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createUser(ctx, norm, password, true)
	default:
		return nil, err
	}
}
