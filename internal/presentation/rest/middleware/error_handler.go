package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"coupon-server/internal/domain/coupon"
	"coupon-server/internal/domain/import_batch"
	otelinfra "coupon-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// エラー種別
const (
	kindValidation = "validation_error"
	kindNotFound   = "not_found"
	kindConflict   = "conflict"
	kindCorrupt    = "corrupt_artifact"
	kindStorage    = "storage_error"
)

// errorMapping ドメインエラーとHTTPステータスの対応
type errorMapping struct {
	target error
	status int
	kind   string
	code   string
}

// errorMappings 先頭から順に照合する
// コミット失敗は行単位の原因を包むため最初に判定する
var errorMappings = []errorMapping{
	{import_batch.ErrCommitFailed, http.StatusInternalServerError, kindStorage, "commit_failed"},
	{import_batch.ErrStagingFailed, http.StatusInternalServerError, kindStorage, "staging_failed"},

	{coupon.ErrMissingCode, http.StatusBadRequest, kindValidation, "missing_code"},
	{coupon.ErrInvalidIssuedAt, http.StatusBadRequest, kindValidation, "invalid_issued_at"},
	{coupon.ErrInvalidValidityValue, http.StatusBadRequest, kindValidation, "invalid_validity_value"},
	{coupon.ErrInvalidValidityUnit, http.StatusBadRequest, kindValidation, "invalid_validity_unit"},
	{coupon.ErrInvalidMaxRedemptions, http.StatusBadRequest, kindValidation, "invalid_max_redemptions"},
	{coupon.ErrValidToOutOfRange, http.StatusBadRequest, kindValidation, "valid_to_out_of_range"},
	{coupon.ErrInvalidCoupon, http.StatusBadRequest, kindValidation, "invalid_coupon"},
	{import_batch.ErrUnsupportedFileType, http.StatusBadRequest, kindValidation, "unsupported_file_type"},
	{import_batch.ErrUnreadableFile, http.StatusBadRequest, kindValidation, "unreadable_file"},
	{import_batch.ErrMissingColumns, http.StatusBadRequest, kindValidation, "missing_columns"},
	{import_batch.ErrBatchEmpty, http.StatusBadRequest, kindValidation, "batch_empty"},

	{coupon.ErrCodeNotFound, http.StatusNotFound, kindNotFound, "coupon_not_found"},
	{import_batch.ErrBatchNotFound, http.StatusNotFound, kindNotFound, "batch_not_found"},
	{import_batch.ErrReportNotFound, http.StatusNotFound, kindNotFound, "report_not_found"},

	{coupon.ErrCodeAlreadyExists, http.StatusConflict, kindConflict, "duplicate_code"},
	{coupon.ErrRedemptionCeilingReached, http.StatusConflict, kindConflict, "redemption_ceiling_reached"},
	{coupon.ErrCouponExpired, http.StatusConflict, kindConflict, "coupon_expired"},
	{coupon.ErrCouponNotYetActive, http.StatusConflict, kindConflict, "coupon_not_active"},

	{import_batch.ErrBatchCorrupt, http.StatusUnprocessableEntity, kindCorrupt, "batch_corrupt"},
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := ErrorResponse{
			Error:   m.kind,
			Message: err.Error(),
			Code:    m.code,
		}
		var missing *import_batch.MissingColumnsError
		if errors.As(err, &missing) {
			resp.Details = map[string]interface{}{"missing_columns": missing.Columns}
		}

		if m.status >= http.StatusInternalServerError {
			logger.Error(ctx, "Request failed", err, map[string]interface{}{
				"path": c.Request().URL.Path,
				"code": m.code,
			})
		} else {
			logger.Warn(ctx, "Request rejected", map[string]interface{}{
				"path":  c.Request().URL.Path,
				"code":  m.code,
				"error": err.Error(),
			})
		}
		return c.JSON(m.status, resp)
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
