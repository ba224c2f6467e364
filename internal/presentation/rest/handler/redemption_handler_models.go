package handler

// RedemptionRequest 利用判定・利用確定リクエスト
// @Description 利用判定・利用確定リクエスト
type RedemptionRequest struct {
	Code FlexString `json:"code" form:"code" example:"SPRING10"`
}

// ValidateRedemptionResponse 利用判定レスポンス
// 利用回数は状態がActiveまたはMaxedの場合のみ含む
// @Description 利用判定レスポンス
type ValidateRedemptionResponse struct {
	OK             bool    `json:"ok" example:"true"`
	Status         string  `json:"status,omitempty" example:"Active" enums:"Active,Upcoming,Expired,Maxed,Invalid"`
	Message        string  `json:"message" example:"Coupon is valid for redemption"`
	ValidFrom      *string `json:"valid_from" example:"2026-10-01 09:00"`
	ValidTo        *string `json:"valid_to" example:"2026-10-08 09:00"`
	RedeemedCount  *int    `json:"redeemed_count,omitempty" example:"0"`
	MaxRedemptions *int    `json:"max_redemptions,omitempty" example:"1"`
}

// MarkRedemptionResponse 利用確定レスポンス
// @Description 利用確定レスポンス
type MarkRedemptionResponse struct {
	OK             bool   `json:"ok" example:"true"`
	Message        string `json:"message" example:"Coupon redeemed successfully"`
	RedeemedCount  *int   `json:"redeemed_count,omitempty" example:"1"`
	MaxRedemptions *int   `json:"max_redemptions,omitempty" example:"1"`
}

// RedemptionErrorResponse 判定・確定の失敗レスポンス
// @Description 判定・確定の失敗レスポンス
type RedemptionErrorResponse struct {
	OK      bool   `json:"ok" example:"false"`
	Message string `json:"message" example:"Missing coupon code"`
}
