package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ダッシュボード用の集計と監査ログ
type AdminHandler struct {
	uc *usecase.AdminStatsUsecase
}

func NewAdminHandler(uc *usecase.AdminStatsUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

func (h *AdminHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.GET("/admin/stats", h.stats, guards.Admin...)
	api.GET("/admin/order-items", h.bestSellers, guards.Admin...)
	api.GET("/admin/audit-logs", h.auditLogs, guards.Admin...)
}

func (h *AdminHandler) stats(c echo.Context) error {
	out, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 売上数量順。limit（default 20）
func (h *AdminHandler) bestSellers(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.BestSellers(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": out})
}

func (h *AdminHandler) auditLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return writeError(c, err)
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return writeError(c, err)
	}
	resourceID, err := queryInt64Ptr(c, "resource_id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AuditLogs(c.Request().Context(), usecase.AuditLogListInput{
		Limit:        limit,
		Offset:       offset,
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   resourceID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": out})
}
