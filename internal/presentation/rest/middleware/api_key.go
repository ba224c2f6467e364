package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"coupon-server/internal/infrastructure/config"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
)

// APIKeyHeader 管理APIキーを受け取るヘッダー
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware 管理API用のAPIキー認証ミドルウェア
// 保護が無効な場合はそのまま通す
func APIKeyMiddleware(cfg *config.AdminAPIConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 保護が無効なら検証しない
			if !cfg.Enabled {
				return next(c)
			}
			ctx := c.Request().Context()

			// APIキーの取得
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				logger.Warn(ctx, "Missing X-API-Key header", map[string]interface{}{
					"path": c.Request().URL.Path,
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Missing X-API-Key header",
				})
			}

			// APIキーの検証
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.APIKey)) != 1 {
				logger.Warn(ctx, "Invalid API key", map[string]interface{}{
					"path": c.Request().URL.Path,
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Invalid API key",
				})
			}

			// IPアドレスの制限
			if len(cfg.AllowedIPs) > 0 {
				clientIP := getClientIP(c)
				if !isIPAllowed(clientIP, cfg.AllowedIPs) {
					logger.Warn(ctx, "IP address not allowed", map[string]interface{}{
						"ip": clientIP,
					})
					return c.JSON(http.StatusForbidden, ErrorResponse{
						Error:   "forbidden",
						Message: "IP address not allowed",
					})
				}
			}

			return next(c)
		}
	}
}

// getClientIP クライアントのIPアドレスを取得
func getClientIP(c echo.Context) string {
	// プロキシ経由の場合は先頭のアドレス
	if forwardedFor := c.Request().Header.Get("X-Forwarded-For"); forwardedFor != "" {
		return strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	}
	// X-Real-IPヘッダー
	if realIP := c.Request().Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	// RemoteAddrから取得
	addr := c.Request().RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// isIPAllowed IPアドレスが許可リストに含まれているかチェック
// CIDR表記も受け付ける
func isIPAllowed(ip string, allowedIPs []string) bool {
	parsed := net.ParseIP(ip)
	for _, allowed := range allowedIPs {
		// 完全一致
		if ip == allowed {
			return true
		}
		if !strings.Contains(allowed, "/") || parsed == nil {
			continue
		}
		// CIDR範囲
		if _, network, err := net.ParseCIDR(allowed); err == nil && network.Contains(parsed) {
			return true
		}
	}
	return false
}
