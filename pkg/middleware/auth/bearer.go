package middleware

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

const UserIDKey = "user_id"

var errNoUser = errors.New("no authenticated user in context")

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (uint, error)
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
}

// BearerAuth guards routes with an access token from the Authorization header.
// Authenticate errors matching Rejected are answered with 401; any other error
// is a server fault.
type BearerAuth struct {
	Tokens   Authenticator
	Admins   AdminChecker
	Rejected error

	jwt echo.MiddlewareFunc
}

func NewBearerAuth(tokens Authenticator, admins AdminChecker, rejected error) *BearerAuth {
	m := &BearerAuth{Tokens: tokens, Admins: admins, Rejected: rejected}
	m.jwt = echojwt.WithConfig(echojwt.Config{
		ContextKey:  UserIDKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return m.Tokens.Authenticate(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context())
			switch {
			case errors.Is(err, echojwt.ErrJWTMissing):
				l.Warn("auth_failed", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			case m.Rejected != nil && errors.Is(err, m.Rejected):
				l.Warn("auth_failed", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			default:
				l.Error("auth_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot verify access token")
			}
		},
	})
	return m
}

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.jwt(func(c echo.Context) error {
		if id, ok := UserID(c); ok {
			req := c.Request()
			l := logging.FromContext(req.Context()).With("user_id", id)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
		}
		return next(c)
	})
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		ctx := c.Request().Context()
		id, ok := UserID(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, errNoUser.Error())
		}

		admin, err := m.Admins.IsAdmin(ctx, id)
		if err != nil {
			logging.FromContext(ctx).Error("admin_check_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot check permissions")
		}
		if !admin {
			logging.FromContext(ctx).Warn("admin_check_failed", "status", 403)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

// UserID returns the id stored by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok && id != 0
}
