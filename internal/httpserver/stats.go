package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/util"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

type StatsHTTP struct {
	Svc *service.StatsService
}

func (h *StatsHTTP) Overview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stats.overview")

	out, err := h.Svc.Overview(ctx)
	if err != nil {
		return fail(l, "stats_overview_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHTTP) Sales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stats.sales")

	days, err := queryInt64(c, "days")
	if err != nil {
		return err
	}
	n := service.DefaultSalesDays
	if days != nil {
		n = int(*days)
	}

	out, err := h.Svc.Sales(ctx, n)
	if err != nil {
		return fail(l, "stats_sales_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHTTP) Users(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stats.users")

	out, err := h.Svc.Users(ctx)
	if err != nil {
		return fail(l, "stats_users_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHTTP) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stats.products")

	threshold := int64(util.ParseIntDefault(c.QueryParam("low_stock_threshold"), service.DefaultLowStockThreshold))
	out, err := h.Svc.Products(ctx, threshold)
	if err != nil {
		return fail(l, "stats_products_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHTTP) InventoryAlerts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "stats.inventory_alerts")

	threshold := int64(util.ParseIntDefault(c.QueryParam("low_stock_threshold"), service.DefaultLowStockThreshold))
	out, err := h.Svc.InventoryAlerts(ctx, threshold)
	if err != nil {
		return fail(l, "stats_inventory_alerts_error", err)
	}
	return c.JSON(http.StatusOK, out)
}
