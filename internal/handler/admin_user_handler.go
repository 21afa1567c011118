package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.POST("/admin/users/:id/force-logout", h.ForceLogout, guards.Admin...)
}

// token_versionを進めて既存トークンを全部無効にする
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
