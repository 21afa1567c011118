package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProductRequest は商品作成/更新の入力です。
type ProductRequest struct {
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       int64    `json:"price" validate:"gte=0"`
	Unit        string   `json:"unit" validate:"max=50"`
	Stock       int64    `json:"stock" validate:"gte=0"`
	ImageURL    string   `json:"image_url" validate:"max=500"`
	Images      []string `json:"images" validate:"omitempty,dive,max=500"`
}

func (r ProductRequest) input() usecase.ProductInput {
	return usecase.ProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Unit:        r.Unit,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Images:      r.Images,
	}
}

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock" validate:"required,gte=0"`
	Reason string `json:"reason" validate:"max=255"`
}

// 管理者用の商品と在庫
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.POST("/products", h.createProduct, guards.Admin...)
	api.PUT("/products/:id", h.updateProduct, guards.Admin...)
	api.DELETE("/products/:id", h.deleteProduct, guards.Admin...)

	api.GET("/admin/products/low-stock", h.lowStock, guards.Admin...)
	api.PUT("/admin/inventory/:product_id", h.updateInventory, guards.Admin...)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}

// threshold（default 10）
func (h *AdminProductHandler) lowStock(c echo.Context) error {
	threshold, err := queryInt64Ptr(c, "threshold")
	if err != nil {
		return writeError(c, err)
	}
	var t int64
	if threshold != nil {
		t = *threshold
	}

	items, err := h.uc.AdminListLowStock(c.Request().Context(), t)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, err := pathID(c, "product_id")
	if err != nil {
		return writeError(c, err)
	}

	var req InventoryUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, productID, usecase.AdminUpdateInventoryInput{
		Stock:  *req.Stock,
		Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
