package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/util"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := bind(c, l, "create_order_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.CreateOrder(ctx, uid, req.ShippingAddress)
	if err != nil {
		return fail(l, "create_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	page := util.PageFromQuery(c)
	total, rows, err := h.Svc.ListOrders(ctx, uid, page.Offset, page.Limit)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}
	return c.JSON(http.StatusOK, util.Paged(rows, page, total))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "get_order_error")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, uid, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, l, "cancel_order_error")
	if err != nil {
		return err
	}

	order, err := h.Svc.CancelOrder(ctx, uid, id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) AdminGetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_list")

	page := util.PageFromQuery(c)
	total, rows, err := h.Svc.AdminListOrders(ctx, c.QueryParam("status"), page.Offset, page.Limit)
	if err != nil {
		return fail(l, "admin_get_orders_error", err)
	}
	return c.JSON(http.StatusOK, util.Paged(rows, page, total))
}

func (h *OrderHTTP) AdminUpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_update")

	id, err := parseID(c, l, "admin_update_order_error")
	if err != nil {
		return err
	}
	var req transport.AdminUpdateOrderRequest
	if err := bind(c, l, "admin_update_order_error", &req); err != nil {
		return err
	}

	order, err := h.Svc.AdminUpdateOrder(ctx, id, req)
	if err != nil {
		return fail(l, "admin_update_order_error", err)
	}

	l.Info("admin_update_order_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
