package coupon

import (
	"time"

	"coupon-server/internal/domain/coupon"
)

// RegisterCouponRequest クーポン登録リクエスト
// 数値項目も入力のまま文字列で受け取り、サービス内で解釈する
type RegisterCouponRequest struct {
	Code           string
	Description    string
	IssuedAt       string
	ValidityValue  string
	ValidityUnit   string
	IssuedTo       string
	Tags           string
	MaxRedemptions string
}

// CouponDTO クーポン情報
type CouponDTO struct {
	ID             int64
	Code           string
	Description    string
	IssuedAt       *time.Time
	ValidFrom      *time.Time
	ValidTo        *time.Time
	ValidityValue  int
	ValidityUnit   string
	IssuedTo       string
	Tags           string
	MaxRedemptions int
	RedeemedCount  int
	Status         string
	CreatedAt      time.Time
}

// CheckCouponRequest 登録前チェックリクエスト
type CheckCouponRequest struct {
	Code          string
	IssuedAt      string
	ValidityValue string
	ValidityUnit  string
}

// CheckCouponResponse 登録前チェックレスポンス
type CheckCouponResponse struct {
	Code       string
	CodeExists bool
	Message    string
	Status     string
	ValidFrom  time.Time
	ValidTo    time.Time
}

// ListCouponsResponse クーポン一覧レスポンス
type ListCouponsResponse struct {
	Coupons []*CouponDTO
	Total   int
}

// StatsResponse ダッシュボード集計レスポンス
type StatsResponse struct {
	Active        int
	RedeemedToday int
	Expiring24h   int
	GeneratedAt   time.Time
}

func toCouponDTO(c *coupon.Coupon, at time.Time) *CouponDTO {
	return &CouponDTO{
		ID:             c.ID(),
		Code:           c.Code(),
		Description:    c.Description(),
		IssuedAt:       c.IssuedAt(),
		ValidFrom:      c.ValidFrom(),
		ValidTo:        c.ValidTo(),
		ValidityValue:  c.ValidityValue(),
		ValidityUnit:   c.ValidityUnit().String(),
		IssuedTo:       c.IssuedTo(),
		Tags:           c.Tags(),
		MaxRedemptions: c.MaxRedemptions(),
		RedeemedCount:  c.RedeemedCount(),
		Status:         c.StatusAt(at).String(),
		CreatedAt:      c.CreatedAt(),
	}
}
