package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	auditapp "coupon-server/internal/application/audit"
)

// AuditHandler 監査ログ関連ハンドラー
type AuditHandler struct {
	auditService *auditapp.AuditApplicationService
}

// NewAuditHandler 新しいAuditHandlerを作成
func NewAuditHandler(auditService *auditapp.AuditApplicationService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListLogs 監査ログ一覧ハンドラー
// @Summary 監査ログを新しい順に取得
// @Tags logs
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Param limit query int false "取得件数（デフォルト: 50, 最大: 500)" default(50)
// @Param offset query int false "オフセット（デフォルト: 0)" default(0)
// @Success 200 {object} audit.ListLogsResponse "取得成功"
// @Failure 400 {object} ErrorResponse "不正なクエリ"
// @Router /logs [get]
func (h *AuditHandler) ListLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit parameter")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offset parameter")
	}

	resp, err := h.auditService.ListLogs(c.Request().Context(), &auditapp.ListLogsRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// queryInt 整数のクエリパラメータを取得。未指定は0
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
