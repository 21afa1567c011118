package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.GET("/admin/orders", h.list, guards.Admin...)
	api.GET("/admin/orders/:id", h.detail, guards.Admin...)
	api.PUT("/orders/:id/status", h.updateStatus, guards.Admin...)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	in, err := listOrdersInput(c)
	if err != nil {
		return writeError(c, err)
	}

	userID, err := queryInt64Ptr(c, "user_id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminListOrdersInput{
		ListOrdersInput: in,
		UserID:          userID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Get(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ロック中の注文は403
func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req OrderStatusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	// 操作した管理者IDを取得（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.UpdateStatus(
		c.Request().Context(),
		adminID,
		orderID,
		usecase.AdminUpdateOrderStatusInput{Status: req.Status},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
