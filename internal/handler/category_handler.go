package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100"`
	Description string `json:"description"`
}

// /api/categories
type CategoryHandler struct {
	uc *usecase.CategoryUsecase
}

func NewCategoryHandler(uc *usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.GET("/categories", h.list)
	api.GET("/categories/:slug", h.detail)

	api.POST("/categories", h.create, guards.Admin...)
	api.PUT("/categories/:id", h.update, guards.Admin...)
	api.DELETE("/categories/:id", h.delete, guards.Admin...)
}

func (h *CategoryHandler) list(c echo.Context) error {
	cs, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": cs})
}

// カテゴリ + 商品のページ
func (h *CategoryHandler) detail(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return writeError(c, err)
	}
	limit, err := queryInt(c, "limit", pagination.DefaultProductLimit)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetBySlug(c.Request().Context(), c.Param("slug"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) create(c echo.Context) error {
	var req CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	cat, err := h.uc.Create(c.Request().Context(), usecase.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	cat, err := h.uc.Update(c.Request().Context(), id, usecase.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "category deleted"})
}
