package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	importapp "coupon-server/internal/application/coupon_import"
)

// ImportHandler 一括取り込み関連ハンドラー
type ImportHandler struct {
	importService *importapp.CouponImportApplicationService
}

// NewImportHandler 新しいImportHandlerを作成
func NewImportHandler(importService *importapp.CouponImportApplicationService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// Stage 取り込みファイルのアップロードハンドラー
// @Summary 取り込みファイルを検証して一時保存
// @Description 受理行は一時バッチとして保存され、確定するまで登録されません
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Param file formData file true "取り込みファイル（.csv, .xlsx, .xlsm）"
// @Success 200 {object} ImportPreviewResponse "プレビュー"
// @Failure 400 {object} ErrorResponse "ファイル形式・必須列の不備"
// @Failure 500 {object} ErrorResponse "一時保存に失敗"
// @Router /imports [post]
func (h *ImportHandler) Stage(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to open uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
	}

	preview, err := h.importService.StageImport(c.Request().Context(), &importapp.StageImportRequest{
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toImportPreviewResponse(preview))
}

// Confirm 取り込み確定ハンドラー
// @Summary 一時バッチを登録
// @Description バッチ内の全行を1トランザクションで登録します。失敗した場合はバッチを残します
// @Tags imports
// @Accept json
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Param request body ConfirmImportRequest true "確定対象"
// @Success 200 {object} ConfirmImportResponse "登録件数"
// @Failure 404 {object} ErrorResponse "バッチが存在しない"
// @Failure 422 {object} ErrorResponse "バッチが壊れている"
// @Failure 500 {object} ErrorResponse "登録に失敗"
// @Router /imports/confirm [post]
func (h *ImportHandler) Confirm(c echo.Context) error {
	var reqBody ConfirmImportRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.BatchID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "batch_id is required")
	}

	resp, err := h.importService.ConfirmImport(c.Request().Context(), &importapp.ConfirmImportRequest{
		BatchID: reqBody.BatchID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ConfirmImportResponse{
		BatchID:  resp.BatchID,
		Inserted: resp.Inserted,
	})
}

// GetBatch 一時バッチ取得ハンドラー
// @Summary 一時バッチのJSONを取得
// @Tags imports
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Param id path string true "バッチID"
// @Success 200 {file} file "一時バッチ"
// @Failure 404 {object} ErrorResponse "バッチが存在しない"
// @Router /imports/batches/{id} [get]
func (h *ImportHandler) GetBatch(c echo.Context) error {
	artifact, err := h.importService.GetStagedBatch(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return sendArtifact(c, artifact, echo.MIMEApplicationJSON)
}

// GetErrorReport エラーレポート取得ハンドラー
// @Summary エラーレポートのCSVを取得
// @Tags imports
// @Produce text/csv
// @Param X-API-Key header string false "APIキー"
// @Param id path string true "レポートID"
// @Success 200 {file} file "エラーレポート"
// @Failure 404 {object} ErrorResponse "レポートが存在しない"
// @Router /imports/errors/{id} [get]
func (h *ImportHandler) GetErrorReport(c echo.Context) error {
	artifact, err := h.importService.GetErrorReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return sendArtifact(c, artifact, "text/csv; charset=utf-8")
}

func sendArtifact(c echo.Context, artifact *importapp.Artifact, contentType string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", artifact.Name))
	return c.Blob(http.StatusOK, contentType, artifact.Content)
}

func toImportPreviewResponse(p *importapp.ImportPreview) ImportPreviewResponse {
	resp := ImportPreviewResponse{
		AcceptedCount: p.AcceptedCount,
		SkippedCount:  p.SkippedCount,
		RejectedCount: p.RejectedCount,
		Accepted:      make([]AcceptedRowItem, 0, len(p.Accepted)),
		Skipped:       make([]SkippedRowItem, 0, len(p.Skipped)),
		Rejected:      make([]RejectedRowItem, 0, len(p.Rejected)),
	}
	for _, e := range p.Accepted {
		resp.Accepted = append(resp.Accepted, AcceptedRowItem{
			Row:            e.Row,
			Code:           e.Data.Code,
			Description:    e.Data.Description,
			ValidFrom:      e.Data.ValidFrom,
			ValidTo:        e.Data.ValidTo,
			ValidityValue:  e.Data.ValidityValue,
			ValidityUnit:   e.Data.ValidityUnit,
			IssuedTo:       e.Data.IssuedTo,
			Tags:           e.Data.Tags,
			MaxRedemptions: e.Data.MaxRedemptions,
		})
	}
	for _, s := range p.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedRowItem{Row: s.Row, Code: s.Code, Reason: s.Reason.String()})
	}
	for _, r := range p.Rejected {
		resp.Rejected = append(resp.Rejected, RejectedRowItem{Row: r.Row, Reason: r.Reason, Message: r.Message})
	}
	if p.BatchID != "" {
		resp.BatchID = &p.BatchID
	}
	if p.ErrorReportID != "" {
		resp.ErrorReportID = &p.ErrorReportID
	}
	return resp
}
