package handler

// RegisterCouponRequest クーポン登録リクエスト
// @Description クーポン登録リクエスト
type RegisterCouponRequest struct {
	Code           FlexString `json:"code" form:"code" example:"SPRING10"`
	Description    FlexString `json:"description" form:"description" example:"Spring sale"`
	IssuedAt       FlexString `json:"issued_at" form:"issued_at" example:"2026-10-01 09:00"`
	ValidityValue  FlexString `json:"validity_value" form:"validity_value" example:"7"`
	ValidityUnit   FlexString `json:"validity_unit" form:"validity_unit" example:"days" enums:"days,hours"`
	IssuedTo       FlexString `json:"issued_to" form:"issued_to" example:"alice"`
	Tags           FlexString `json:"tags" form:"tags" example:"vip"`
	MaxRedemptions FlexString `json:"max_redemptions" form:"max_redemptions" example:"1"`
}

// CouponResponse クーポン情報
// @Description クーポン情報
type CouponResponse struct {
	ID             int64   `json:"id" example:"1"`
	Code           string  `json:"code" example:"SPRING10"`
	Description    string  `json:"description" example:"Spring sale"`
	IssuedAt       *string `json:"issued_at" example:"2026-10-01 09:00"`
	ValidFrom      *string `json:"valid_from" example:"2026-10-01 09:00"`
	ValidTo        *string `json:"valid_to" example:"2026-10-08 09:00"`
	ValidityValue  int     `json:"validity_value" example:"7"`
	ValidityUnit   string  `json:"validity_unit" example:"days"`
	IssuedTo       string  `json:"issued_to" example:"alice"`
	Tags           string  `json:"tags" example:"vip"`
	MaxRedemptions int     `json:"max_redemptions" example:"1"`
	RedeemedCount  int     `json:"redeemed_count" example:"0"`
	Status         string  `json:"status" example:"Active" enums:"Active,Upcoming,Expired,Maxed"`
	CreatedAt      string  `json:"created_at" example:"2026-10-01T09:00:00Z"`
}

// ListCouponsResponse クーポン一覧レスポンス
// @Description クーポン一覧レスポンス
type ListCouponsResponse struct {
	Coupons []CouponResponse `json:"coupons"`
	Total   int              `json:"total" example:"1"`
}

// CheckCouponRequest 登録前チェックリクエスト
// @Description 登録前チェックリクエスト
type CheckCouponRequest struct {
	Code          FlexString `json:"code" form:"code" example:"SPRING10"`
	IssuedAt      FlexString `json:"issued_at" form:"issued_at" example:"2026-10-01 09:00"`
	ValidityValue FlexString `json:"validity_value" form:"validity_value" example:"7"`
	ValidityUnit  FlexString `json:"validity_unit" form:"validity_unit" example:"days"`
}

// CheckCouponResponse 登録前チェックレスポンス
// @Description 登録前チェックレスポンス
type CheckCouponResponse struct {
	OK         bool    `json:"ok" example:"true"`
	CodeExists bool    `json:"code_exists" example:"false"`
	Message    string  `json:"message" example:""`
	Status     *string `json:"status" example:"Active"`
	ValidFrom  *string `json:"valid_from" example:"2026-10-01 09:00"`
	ValidTo    *string `json:"valid_to" example:"2026-10-08 09:00"`
}

// DashboardResponse ダッシュボード集計レスポンス
// @Description ダッシュボード集計レスポンス
type DashboardResponse struct {
	Active        int    `json:"active" example:"12"`
	RedeemedToday int    `json:"redeemed_today" example:"3"`
	Expiring24h   int    `json:"expiring_24h" example:"1"`
	GeneratedAt   string `json:"generated_at" example:"2026-10-14T12:00:00Z"`
}
