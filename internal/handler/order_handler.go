package handler

import (
	"net/http"
	"strings"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/pagination"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 二重送信防止キーのヘッダー
const (
	HeaderIdempotencyKey       = "Idempotency-Key"
	HeaderLegacyIdempotencyKey = "X-Idempotency-Key"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// 配送先。必須チェックはusecase側
type OrderCreateRequest struct {
	FullName        string `json:"full_name" validate:"max=255"`
	Phone           string `json:"phone" validate:"max=50"`
	ShippingAddress string `json:"shipping_address" validate:"max=1000"`
	City            string `json:"city" validate:"max=100"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.POST("/orders", h.create, guards.User...)
	api.GET("/orders", h.list, guards.User...)
	api.GET("/orders/:id", h.detail, guards.User...)
	api.PUT("/orders/:id/cancel", h.cancel, guards.User...)
	api.PUT("/orders/:id/unlock", h.unlock, guards.User...)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.Request().Header.Get(HeaderLegacyIdempotencyKey))
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		FullName:        req.FullName,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		City:            req.City,
		IdempotencyKey:  idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	in, err := listOrdersInput(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetMyOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// pending/confirmedのみ。在庫を戻してロックする
func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.CancelOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) unlock(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UnlockOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// page（default 1）, limit（default 10）, status
func listOrdersInput(c echo.Context) (usecase.ListOrdersInput, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return usecase.ListOrdersInput{}, err
	}
	limit, err := queryInt(c, "limit", pagination.DefaultOrderLimit)
	if err != nil {
		return usecase.ListOrdersInput{}, err
	}
	return usecase.ListOrdersInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}, nil
}
