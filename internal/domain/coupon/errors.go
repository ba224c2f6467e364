package coupon

import "errors"

var (
	// ErrCodeNotFound クーポンが見つからないエラー
	ErrCodeNotFound = errors.New("coupon not found")
	// ErrCodeAlreadyExists クーポンコードが既に存在するエラー
	ErrCodeAlreadyExists = errors.New("coupon code already exists")
	// ErrInvalidCoupon クーポンの入力値が不正なエラー
	ErrInvalidCoupon = errors.New("invalid coupon")
	// ErrMissingCode クーポンコードが空のエラー
	ErrMissingCode = errors.New("missing coupon code")
	// ErrInvalidIssuedAt 発行日時が不正なエラー
	ErrInvalidIssuedAt = errors.New("invalid issued_at")
	// ErrInvalidValidityValue 有効期間の数量が不正なエラー
	ErrInvalidValidityValue = errors.New("invalid validity_value")
	// ErrInvalidValidityUnit 有効期間の単位が不正なエラー
	ErrInvalidValidityUnit = errors.New("invalid validity_unit")
	// ErrInvalidMaxRedemptions 利用上限回数が不正なエラー
	ErrInvalidMaxRedemptions = errors.New("invalid max_redemptions")
	// ErrValidToOutOfRange valid_toが保存可能な範囲外のエラー
	ErrValidToOutOfRange = errors.New("valid_to out of range")
	// ErrCouponExpired クーポンが期限切れのエラー
	ErrCouponExpired = errors.New("coupon is expired")
	// ErrCouponNotYetActive クーポンが有効開始前のエラー
	ErrCouponNotYetActive = errors.New("coupon is not active yet")
	// ErrRedemptionCeilingReached 利用上限に達しているエラー
	ErrRedemptionCeilingReached = errors.New("maximum redemptions reached for this coupon")
)
