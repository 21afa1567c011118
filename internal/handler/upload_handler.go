package handler

import (
	"net/http"

	"github.com/hamiddiallo/ecommerce/internal/middleware"
	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品画像のアップロード（管理者のみ）
type UploadHandler struct {
	uc *usecase.UploadUsecase
}

func NewUploadHandler(uc *usecase.UploadUsecase) *UploadHandler {
	return &UploadHandler{uc: uc}
}

func (h *UploadHandler) RegisterRoutes(api *echo.Group, guards middleware.Guards) {
	api.POST("/upload", h.upload, guards.Admin...)
}

// multipartの"file"
func (h *UploadHandler) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
	}
	defer f.Close()

	out, err := h.uc.UploadImage(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
