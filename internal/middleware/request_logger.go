package middleware

import (
	"time"

	"github.com/hamiddiallo/ecommerce/internal/logger"

	"github.com/labstack/echo/v4"
)

// handlerが500の原因を置くキー。ログにだけ出す
const CtxErrorCauseKey = "error_cause"

// RequestObserver はリクエスト単位のメトリクスを受け取る
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// 1リクエスト1行のアクセスログ。ルートはパターン(/api/orders/:id)で集計する
func RequestLogger(log *logger.Logger, obs RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// echoのエラーハンドラでステータスを確定させる
				c.Error(err)
			}
			elapsed := time.Since(start)

			req := c.Request()
			status := c.Response().Status
			route := c.Path()

			if obs != nil {
				obs.ObserveRequest(req.Method, route, status, elapsed)
			}

			fields := map[string]any{
				"method":      req.Method,
				"path":        req.URL.Path,
				"route":       route,
				"status":      status,
				"duration_ms": elapsed.Milliseconds(),
				"bytes_out":   c.Response().Size,
			}
			if uid, ok := UserIDFrom(c); ok {
				fields["user_id"] = uid
			}
			if cause, ok := c.Get(CtxErrorCauseKey).(error); ok && cause != nil {
				log.Error(req.Context(), "request.error", cause)
			}
			log.InfoFields(req.Context(), "request.complete", fields)
			return nil
		}
	}
}
