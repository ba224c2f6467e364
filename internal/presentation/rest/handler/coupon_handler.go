package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	couponapp "coupon-server/internal/application/coupon"
	exportapp "coupon-server/internal/application/export"
	"coupon-server/internal/domain/coupon"
)

// MIMEXLSX xlsxワークブックのContent-Type
const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CouponHandler クーポン関連ハンドラー
type CouponHandler struct {
	couponService *couponapp.CouponApplicationService
	exportService *exportapp.ExportApplicationService
}

// NewCouponHandler 新しいCouponHandlerを作成
func NewCouponHandler(couponService *couponapp.CouponApplicationService, exportService *exportapp.ExportApplicationService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		exportService: exportService,
	}
}

// Register クーポン登録ハンドラー
// @Summary クーポンを登録
// @Description 空欄の項目は既定値で補います。コードが重複している場合は409を返します
// @Tags coupons
// @Accept json
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Param request body RegisterCouponRequest true "登録内容"
// @Success 201 {object} CouponResponse "登録成功"
// @Failure 400 {object} ErrorResponse "入力値が不正"
// @Failure 409 {object} ErrorResponse "コードが重複"
// @Router /coupons [post]
func (h *CouponHandler) Register(c echo.Context) error {
	var reqBody RegisterCouponRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	dto, err := h.couponService.Register(c.Request().Context(), &couponapp.RegisterCouponRequest{
		Code:           reqBody.Code.String(),
		Description:    reqBody.Description.String(),
		IssuedAt:       reqBody.IssuedAt.String(),
		ValidityValue:  reqBody.ValidityValue.String(),
		ValidityUnit:   reqBody.ValidityUnit.String(),
		IssuedTo:       reqBody.IssuedTo.String(),
		Tags:           reqBody.Tags.String(),
		MaxRedemptions: reqBody.MaxRedemptions.String(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toCouponResponse(dto))
}

// List クーポン一覧ハンドラー
// @Summary クーポン一覧を取得
// @Tags coupons
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Success 200 {object} ListCouponsResponse "取得成功"
// @Router /coupons [get]
func (h *CouponHandler) List(c echo.Context) error {
	resp, err := h.couponService.List(c.Request().Context())
	if err != nil {
		return err
	}

	coupons := make([]CouponResponse, 0, len(resp.Coupons))
	for _, dto := range resp.Coupons {
		coupons = append(coupons, toCouponResponse(dto))
	}
	return c.JSON(http.StatusOK, ListCouponsResponse{
		Coupons: coupons,
		Total:   resp.Total,
	})
}

// Check 登録前チェックハンドラー
// @Summary 登録前にコードの重複と有効期間を確認
// @Description 解釈できない発行日時は現在時刻として扱います
// @Tags coupons
// @Accept json
// @Produce json
// @Param request body CheckCouponRequest true "確認内容"
// @Success 200 {object} CheckCouponResponse "確認結果"
// @Failure 400 {object} CheckCouponResponse "コードが空"
// @Router /coupons/check [post]
func (h *CouponHandler) Check(c echo.Context) error {
	var reqBody CheckCouponRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.couponService.Check(c.Request().Context(), &couponapp.CheckCouponRequest{
		Code:          reqBody.Code.String(),
		IssuedAt:      reqBody.IssuedAt.String(),
		ValidityValue: reqBody.ValidityValue.String(),
		ValidityUnit:  reqBody.ValidityUnit.String(),
	})
	if errors.Is(err, coupon.ErrMissingCode) {
		return c.JSON(http.StatusBadRequest, CheckCouponResponse{
			OK:      false,
			Message: "Missing coupon code.",
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CheckCouponResponse{
		OK:         !resp.CodeExists,
		CodeExists: resp.CodeExists,
		Message:    resp.Message,
		Status:     &resp.Status,
		ValidFrom:  formatWindow(&resp.ValidFrom),
		ValidTo:    formatWindow(&resp.ValidTo),
	})
}

// Export エクスポートハンドラー
// @Summary 全クーポンをxlsxで出力
// @Tags coupons
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param X-API-Key header string false "APIキー"
// @Success 200 {file} file "ワークブック"
// @Router /coupons/export [get]
func (h *CouponHandler) Export(c echo.Context) error {
	file, err := h.exportService.Export(c.Request().Context())
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Blob(http.StatusOK, MIMEXLSX, file.Content)
}

// Dashboard ダッシュボード集計ハンドラー
// @Summary ダッシュボードの集計値を取得
// @Tags dashboard
// @Produce json
// @Param X-API-Key header string false "APIキー"
// @Success 200 {object} DashboardResponse "集計結果"
// @Router /dashboard [get]
func (h *CouponHandler) Dashboard(c echo.Context) error {
	stats, err := h.couponService.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		Active:        stats.Active,
		RedeemedToday: stats.RedeemedToday,
		Expiring24h:   stats.Expiring24h,
		GeneratedAt:   stats.GeneratedAt.Format(time.RFC3339),
	})
}

func toCouponResponse(dto *couponapp.CouponDTO) CouponResponse {
	return CouponResponse{
		ID:             dto.ID,
		Code:           dto.Code,
		Description:    dto.Description,
		IssuedAt:       formatWindow(dto.IssuedAt),
		ValidFrom:      formatWindow(dto.ValidFrom),
		ValidTo:        formatWindow(dto.ValidTo),
		ValidityValue:  dto.ValidityValue,
		ValidityUnit:   dto.ValidityUnit,
		IssuedTo:       dto.IssuedTo,
		Tags:           dto.Tags,
		MaxRedemptions: dto.MaxRedemptions,
		RedeemedCount:  dto.RedeemedCount,
		Status:         dto.Status,
		CreatedAt:      dto.CreatedAt.Format(time.RFC3339),
	}
}
