package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type FavoriteRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// /api/favorites
type FavoriteHandler struct {
	uc *usecase.FavoriteUsecase
}

func NewFavoriteHandler(uc *usecase.FavoriteUsecase) *FavoriteHandler {
	return &FavoriteHandler{uc: uc}
}

func (h *FavoriteHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	g := api.Group("/favorites", guards.User...)

	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("", h.remove)
	g.DELETE("/:product_id", h.remove)
	g.GET("/check", h.check)
}

func (h *FavoriteHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": out})
}

func (h *FavoriteHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req FavoriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Add(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// product_id はpathでもqueryでも可
func (h *FavoriteHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	productID, err := favoriteProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Remove(c.Request().Context(), userID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "favorite removed"})
}

func (h *FavoriteHandler) check(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	productID, err := favoriteProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	fav, err := h.uc.IsFavorite(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_favorite": fav})
}

func favoriteProductID(c echo.Context) (int64, error) {
	if c.Param("product_id") != "" {
		return pathID(c, "product_id")
	}
	id, err := queryInt64Ptr(c, "product_id")
	if err != nil {
		return 0, err
	}
	if id == nil || *id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	return *id, nil
}
