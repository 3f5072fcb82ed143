package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/service"
	middleware "github.com/Skotchmaster/shop_backend/pkg/middleware/auth"
)

var badRequest = []error{
	service.ErrValidation,
	service.ErrConflict,
	service.ErrInsufficientStock,
	service.ErrEmptyCart,
	service.ErrInvalidTransition,
	service.ErrProductUnavailable,
	service.ErrInactiveAccount,
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// fail logs err under event and turns it into the HTTP error the client sees.
// Persistence failures never leak their text.
func fail(l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
		return echo.NewHTTPError(code, "internal error")
	}
	l.Warn(event, "status", code, "error", err)
	return echo.NewHTTPError(code, err.Error())
}

func bind(c echo.Context, l *slog.Logger, event string, dst any) error {
	if err := c.Bind(dst); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}

func parseID(c echo.Context, l *slog.Logger, event string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn(event, "status", 400, "reason", "id is not a positive integer", "error", err)
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return id, nil
}

func queryInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return &v, nil
}

func queryUint(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	u := uint(v)
	return &u, nil
}

func message(msg string) echo.Map {
	return echo.Map{"message": msg}
}
