package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "coupon-server/internal/infrastructure/observability/otel"
)

// MetricsMiddleware リクエスト数・応答時間・エラー数を記録するミドルウェア
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()
			method := c.Request().Method
			route := c.Path()

			err := next(c)

			// 応答時間の記録
			metrics.RecordResponseTime(ctx, method, route, time.Since(start).Seconds())

			// ステータスの確定とリクエスト数の記録
			status := responseStatus(c, err)
			metrics.RecordRequest(ctx, method, route, status)

			if errorType := statusErrorType(status); errorType != "" {
				metrics.RecordError(ctx, errorType)
			}

			return err
		}
	}
}

// responseStatus 応答済みならそのステータス、未応答のエラーならエラーから決まるステータス
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

func statusErrorType(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return ""
	}
}
