package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

var (
	errBadToken = errors.New("bad token")
	errStore    = errors.New("store down")
)

type fakeTokens map[string]uint

func (f fakeTokens) Authenticate(_ context.Context, tok string) (uint, error) {
	if tok == "broken-store" {
		return 0, errStore
	}
	if id, ok := f[tok]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: unknown", errBadToken)
}

type fakeAdmins map[uint]bool

func (f fakeAdmins) IsAdmin(_ context.Context, id uint) (bool, error) {
	return f[id], nil
}

func newServer() *echo.Echo {
	m := NewBearerAuth(fakeTokens{"user-token": 1, "admin-token": 2}, fakeAdmins{2: true}, errBadToken)

	e := echo.New()
	whoami := func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}
	e.GET("/me", whoami, m.RequireAuth)
	e.GET("/admin", whoami, m.RequireAdmin)
	return e
}

func do(e *echo.Echo, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerAuth_RequireAuth(t *testing.T) {
	t.Parallel()

	e := newServer()

	rec := do(e, "/me", "Bearer user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "user-token").Code)
}

func TestBearerAuth_StoreFailureIsServerError(t *testing.T) {
	t.Parallel()

	e := newServer()

	assert.Equal(t, http.StatusInternalServerError, do(e, "/me", "Bearer broken-store").Code)
	assert.Equal(t, http.StatusInternalServerError, do(e, "/admin", "Bearer broken-store").Code)
}

func TestBearerAuth_RequireAdmin(t *testing.T) {
	t.Parallel()

	e := newServer()

	assert.Equal(t, http.StatusOK, do(e, "/admin", "Bearer admin-token").Code)
	assert.Equal(t, http.StatusForbidden, do(e, "/admin", "Bearer user-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/admin", "").Code)
}
