package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.GetCart(ctx, uid)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := bind(c, l, "add_to_cart_error", &req); err != nil {
		return err
	}

	line, err := h.Svc.AddItem(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "update_cart_item_error")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_cart_item_error", &req); err != nil {
		return err
	}

	line, err := h.Svc.UpdateItem(ctx, uid, id, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, line)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "remove_cart_item_error")
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveItem(ctx, uid, id); err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, message("item removed"))
}

// Clear accepts confirm either in the JSON body or as ?confirm=; it defaults to true.
func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.ClearCartRequest
	if err := bind(c, l, "clear_cart_error", &req); err != nil {
		return err
	}
	confirm := true
	if req.Confirm != nil {
		confirm = *req.Confirm
	} else if raw := c.QueryParam("confirm"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "confirm must be a boolean")
		}
		confirm = v
	}

	n, err := h.Svc.Clear(ctx, uid, confirm)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success", "deleted", n)
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
