package handler

import (
	"net/http"
	"strings"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(api *echo.Group, _ middleware.Guards) {
	api.GET("/products", h.list)
	api.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, err)
	}
	limit, err := queryInt(c, "limit", pagination.DefaultProductLimit)
	if err != nil {
		return writeError(c, err)
	}
	categoryID, err := queryInt64Ptr(c, "category_id")
	if err != nil {
		return writeError(c, err)
	}
	minPrice, err := queryInt64Ptr(c, "min_price")
	if err != nil {
		return writeError(c, err)
	}
	maxPrice, err := queryInt64Ptr(c, "max_price")
	if err != nil {
		return writeError(c, err)
	}

	// search と q のどちらでも受ける
	q := c.QueryParam("search")
	if q == "" {
		q = c.QueryParam("q")
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          strings.TrimSpace(q),
		CategoryID: categoryID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
