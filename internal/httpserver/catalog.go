package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/util"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	var (
		q   service.ProductQuery
		err error
	)
	if q.CategoryID, err = queryUint(c, "category_id"); err != nil {
		return err
	}
	if q.MinPrice, err = queryInt64(c, "min_price"); err != nil {
		return err
	}
	if q.MaxPrice, err = queryInt64(c, "max_price"); err != nil {
		return err
	}

	page := util.PageFromQuery(c)
	total, items, err := h.Svc.ListProducts(ctx, q, page.Offset, page.Limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, util.Paged(items, page, total))
}

func (h *CatalogHTTP) AdminGetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.admin_get_products")

	page := util.PageFromQuery(c)
	total, items, err := h.Svc.AdminListProducts(ctx, page.Offset, page.Limit)
	if err != nil {
		return fail(l, "admin_get_products_error", err)
	}
	return c.JSON(http.StatusOK, util.Paged(items, page, total))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.PageFromQuery(c)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page.Offset, page.Limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, util.Paged(items, page, total))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, l, "get_product_error")
	if err != nil {
		return err
	}
	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := bind(c, l, "product_create_error", &req); err != nil {
		return err
	}
	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := parseID(c, l, "product_patch_error")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bind(c, l, "product_patch_error", &req); err != nil {
		return err
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, l, "product_delete_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "get_categories_error", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CreateCategoryRequest
	if err := bind(c, l, "category_create_error", &req); err != nil {
		return err
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "category_create_error", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.patch")

	id, err := parseID(c, l, "category_patch_error")
	if err != nil {
		return err
	}
	var req transport.PatchCategoryRequest
	if err := bind(c, l, "category_patch_error", &req); err != nil {
		return err
	}
	cat, err := h.Svc.PatchCategory(ctx, id, req)
	if err != nil {
		return fail(l, "category_patch_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := parseID(c, l, "category_delete_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "category_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
