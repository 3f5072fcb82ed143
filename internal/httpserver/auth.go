package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/util"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) tokenResponse(p *service.TokenPair) transport.TokenResponse {
	return transport.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Svc.Tokens.AccessTTL.Seconds()),
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, l, "register_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "register_error", err)
	}
	return c.JSON(http.StatusOK, h.tokenResponse(res.Tokens))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, l, "login_error", &req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, h.tokenResponse(res.Tokens))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := bind(c, l, "refresh_error", &req); err != nil {
		return err
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh_error", err)
	}
	return c.JSON(http.StatusOK, h.tokenResponse(pair))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.RefreshRequest
	if err := bind(c, l, "logout_error", &req); err != nil {
		return err
	}
	if err := h.Svc.Logout(ctx, uid, req.RefreshToken); err != nil {
		return fail(l, "logout_error", err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, message("logged out"))
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Me(ctx, uid)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.ChangePasswordRequest
	if err := bind(c, l, "change_password_error", &req); err != nil {
		return err
	}
	if err := h.Svc.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(l, "change_password_error", err)
	}

	l.Info("change_password_success")
	return c.JSON(http.StatusOK, message("password changed"))
}

func (h *AuthHTTP) RegisterAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register_admin")

	var req transport.RegisterRequest
	if err := bind(c, l, "register_admin_error", &req); err != nil {
		return err
	}
	user, err := h.Svc.RegisterAdmin(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "register_admin_error", err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) MakeAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.make_admin")

	id, err := parseID(c, l, "make_admin_error")
	if err != nil {
		return err
	}
	user, err := h.Svc.MakeAdmin(ctx, id)
	if err != nil {
		return fail(l, "make_admin_error", err)
	}

	l.Info("make_admin_success", "target_user_id", id)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.list_users")

	page := util.PageFromQuery(c)
	total, users, err := h.Svc.ListUsers(ctx, page.Offset, page.Limit)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, util.Paged(users, page, total))
}
