package coupon

import (
	"fmt"
)

// CouponStatus クーポンのライフサイクル状態を表す値オブジェクト
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "Active"   // 利用可能
	CouponStatusUpcoming CouponStatus = "Upcoming" // 有効開始前
	CouponStatusExpired  CouponStatus = "Expired"  // 期限切れ
	CouponStatusMaxed    CouponStatus = "Maxed"    // 利用上限到達
)

// NewCouponStatus 新しいCouponStatusを作成
func NewCouponStatus(s string) (CouponStatus, error) {
	switch s {
	case "Active", "Upcoming", "Expired", "Maxed":
		return CouponStatus(s), nil
	default:
		return "", fmt.Errorf("invalid coupon status: %s", s)
	}
}

// String 文字列表現を返す
func (cs CouponStatus) String() string {
	return string(cs)
}

// Valid 有効なクーポンステータスかどうかを返す
func (cs CouponStatus) Valid() bool {
	switch cs {
	case CouponStatusActive, CouponStatusUpcoming, CouponStatusExpired, CouponStatusMaxed:
		return true
	default:
		return false
	}
}

// IsActive 利用可能状態かどうかを返す
func (cs CouponStatus) IsActive() bool {
	return cs == CouponStatusActive
}

// Message 利用者向けのメッセージを返す
func (cs CouponStatus) Message() string {
	switch cs {
	case CouponStatusActive:
		return "Coupon is valid and can be redeemed."
	case CouponStatusUpcoming:
		return "Coupon is not active yet."
	case CouponStatusExpired:
		return "Coupon has expired."
	case CouponStatusMaxed:
		return "Coupon has reached its maximum redemptions."
	default:
		return "Coupon is invalid."
	}
}
