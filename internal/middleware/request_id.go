package middleware

import (
	"github.com/hamiddiallo/ecommerce/internal/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderRequestID  = echo.HeaderXRequestID
	CtxRequestIDKey  = "request_id"
	maxRequestIDSize = 128
)

// X-Request-Idを引き継ぐか採番し、ログのcontextにも積む
func RequestID(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(HeaderRequestID)
			if id == "" || len(id) > maxRequestIDSize {
				id = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, id)
			c.Response().Header().Set(HeaderRequestID, id)

			ctx := log.WithRequestID(req.Context(), id)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
