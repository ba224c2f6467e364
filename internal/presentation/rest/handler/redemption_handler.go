package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	redemptionapp "coupon-server/internal/application/redemption"
	"coupon-server/internal/domain/coupon"
)

// 利用確定の失敗メッセージ
var markFailureMessages = []struct {
	target  error
	status  int
	message string
}{
	{coupon.ErrMissingCode, http.StatusBadRequest, "Missing coupon code"},
	{coupon.ErrCodeNotFound, http.StatusNotFound, "Coupon not found"},
	{coupon.ErrCouponExpired, http.StatusBadRequest, "Coupon is expired"},
	{coupon.ErrCouponNotYetActive, http.StatusBadRequest, "Coupon is not active yet"},
	{coupon.ErrRedemptionCeilingReached, http.StatusBadRequest, "Maximum redemptions reached for this coupon"},
}

// RedemptionHandler クーポン利用関連ハンドラー
type RedemptionHandler struct {
	redemptionService *redemptionapp.RedemptionApplicationService
}

// NewRedemptionHandler 新しいRedemptionHandlerを作成
func NewRedemptionHandler(redemptionService *redemptionapp.RedemptionApplicationService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
	}
}

// Validate 利用判定ハンドラー
// @Summary クーポンが現在利用可能か判定
// @Description 状態は変更しません。期限切れ・開始前・上限到達の場合もok=falseで200を返します
// @Tags redemptions
// @Accept json
// @Produce json
// @Param request body RedemptionRequest true "判定対象"
// @Success 200 {object} ValidateRedemptionResponse "判定結果"
// @Failure 400 {object} RedemptionErrorResponse "コードが空"
// @Failure 404 {object} ValidateRedemptionResponse "クーポンが存在しない"
// @Router /redemptions/validate [post]
func (h *RedemptionHandler) Validate(c echo.Context) error {
	var reqBody RedemptionRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.redemptionService.Check(c.Request().Context(), &redemptionapp.CheckRedemptionRequest{
		Code: reqBody.Code.String(),
	})
	switch {
	case errors.Is(err, coupon.ErrMissingCode):
		return c.JSON(http.StatusBadRequest, RedemptionErrorResponse{OK: false, Message: "Missing coupon code"})
	case errors.Is(err, coupon.ErrCodeNotFound):
		return c.JSON(http.StatusNotFound, ValidateRedemptionResponse{
			OK:      false,
			Status:  "Invalid",
			Message: "Coupon does not exist",
		})
	case err != nil:
		return err
	}

	body := ValidateRedemptionResponse{
		OK:        resp.OK,
		Status:    resp.Status,
		Message:   resp.Message,
		ValidFrom: formatWindow(resp.ValidFrom),
		ValidTo:   formatWindow(resp.ValidTo),
	}
	if resp.Status == coupon.CouponStatusActive.String() || resp.Status == coupon.CouponStatusMaxed.String() {
		body.RedeemedCount = &resp.RedeemedCount
		body.MaxRedemptions = &resp.MaxRedemptions
	}
	return c.JSON(http.StatusOK, body)
}

// Mark 利用確定ハンドラー
// @Summary クーポンの利用を1回記録
// @Description 期間と利用上限を再確認したうえで利用回数を加算します
// @Tags redemptions
// @Accept json
// @Produce json
// @Param request body RedemptionRequest true "確定対象"
// @Success 200 {object} MarkRedemptionResponse "利用確定"
// @Failure 400 {object} RedemptionErrorResponse "利用不可"
// @Failure 404 {object} RedemptionErrorResponse "クーポンが存在しない"
// @Router /redemptions/mark [post]
func (h *RedemptionHandler) Mark(c echo.Context) error {
	var reqBody RedemptionRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.redemptionService.Mark(c.Request().Context(), &redemptionapp.MarkRedemptionRequest{
		Code: reqBody.Code.String(),
	})
	if err != nil {
		for _, f := range markFailureMessages {
			if errors.Is(err, f.target) {
				return c.JSON(f.status, RedemptionErrorResponse{OK: false, Message: f.message})
			}
		}
		return err
	}

	return c.JSON(http.StatusOK, MarkRedemptionResponse{
		OK:             true,
		Message:        "Coupon redeemed successfully",
		RedeemedCount:  &resp.RedeemedCount,
		MaxRedemptions: &resp.MaxRedemptions,
	})
}
