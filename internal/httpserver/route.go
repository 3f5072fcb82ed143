package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/shop_backend/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	CatalogHandler *CatalogHTTP
	StatsHandler   *StatsHTTP
	AuthMW         *middleware.BearerAuth
	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	requireAuth, requireAdmin := d.AuthMW.RequireAuth, d.AuthMW.RequireAdmin

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout, requireAuth)
	auth.GET("/me", d.AuthHandler.Me, requireAuth)
	auth.POST("/change-password", d.AuthHandler.ChangePassword, requireAuth)
	auth.POST("/register-admin", d.AuthHandler.RegisterAdmin, requireAdmin)
	auth.PUT("/make-admin/:id", d.AuthHandler.MakeAdmin, requireAdmin)
	auth.GET("/users", d.AuthHandler.ListUsers, requireAdmin)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/categories", d.CatalogHandler.GetCategories)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	productsAdmin := products.Group("", requireAdmin)
	productsAdmin.GET("/admin/all", d.CatalogHandler.AdminGetProducts)
	productsAdmin.POST("", d.CatalogHandler.CreateProduct)
	productsAdmin.PATCH("/:id", d.CatalogHandler.PatchProduct)
	productsAdmin.DELETE("/:id", d.CatalogHandler.DeleteProduct)
	productsAdmin.POST("/categories", d.CatalogHandler.CreateCategory)
	productsAdmin.PATCH("/categories/:id", d.CatalogHandler.PatchCategory)
	productsAdmin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)

	cart := e.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.PUT("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)
	cart.DELETE("/clear", d.CartHandler.Clear)

	orders := e.Group("/orders")
	orders.POST("/create", d.OrderHandler.CreateOrder, requireAuth)
	orders.GET("", d.OrderHandler.GetOrders, requireAuth)
	orders.GET("/admin/all", d.OrderHandler.AdminGetOrders, requireAdmin)
	orders.PUT("/admin/:id", d.OrderHandler.AdminUpdateOrder, requireAdmin)
	orders.GET("/:id", d.OrderHandler.GetOrder, requireAuth)
	orders.PUT("/:id/cancel", d.OrderHandler.CancelOrder, requireAuth)

	stats := e.Group("/stats", requireAdmin)
	stats.GET("/overview", d.StatsHandler.Overview)
	stats.GET("/sales", d.StatsHandler.Sales)
	stats.GET("/users", d.StatsHandler.Users)
	stats.GET("/products", d.StatsHandler.Products)
	stats.GET("/inventory/alerts", d.StatsHandler.InventoryAlerts)
}
