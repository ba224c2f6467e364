package coupon

import (
	"fmt"
	"strings"
	"time"
)

// Attributes クーポン作成時に指定する属性
type Attributes struct {
	Code           string
	Description    string
	ValidFrom      *time.Time
	ValidTo        *time.Time
	ValidityValue  int
	ValidityUnit   ValidityUnit
	IssuedTo       string
	Tags           string
	MaxRedemptions int
}

// Coupon クーポンエンティティ
type Coupon struct {
	id             int64
	code           string
	description    string
	validFrom      *time.Time // issued_atと同一の値
	validTo        *time.Time // nilは無期限
	validityValue  int
	validityUnit   ValidityUnit
	issuedTo       string
	tags           string
	maxRedemptions int
	redeemedCount  int
	createdAt      time.Time
}

// NewCoupon 新しいCouponエンティティを作成
func NewCoupon(attrs Attributes) (*Coupon, error) {
	code := strings.TrimSpace(attrs.Code)
	if code == "" {
		return nil, ErrMissingCode
	}
	if attrs.ValidityValue < 0 {
		return nil, fmt.Errorf("%w: must be >= 0", ErrInvalidValidityValue)
	}
	if !attrs.ValidityUnit.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidValidityUnit, attrs.ValidityUnit)
	}
	if attrs.MaxRedemptions < 1 {
		return nil, fmt.Errorf("%w: must be >= 1", ErrInvalidMaxRedemptions)
	}
	if attrs.ValidFrom != nil && attrs.ValidTo != nil && attrs.ValidTo.Before(*attrs.ValidFrom) {
		return nil, fmt.Errorf("%w: valid_to before valid_from", ErrInvalidCoupon)
	}

	attrs.Code = code
	return Reconstruct(0, attrs, 0, time.Now()), nil
}

// Reconstruct 保存済みの値からCouponを復元する（検証は行わない）
func Reconstruct(id int64, attrs Attributes, redeemedCount int, createdAt time.Time) *Coupon {
	return &Coupon{
		id:             id,
		code:           attrs.Code,
		description:    attrs.Description,
		validFrom:      attrs.ValidFrom,
		validTo:        attrs.ValidTo,
		validityValue:  attrs.ValidityValue,
		validityUnit:   attrs.ValidityUnit,
		issuedTo:       attrs.IssuedTo,
		tags:           attrs.Tags,
		maxRedemptions: attrs.MaxRedemptions,
		redeemedCount:  redeemedCount,
		createdAt:      createdAt,
	}
}

// ID IDを返す
func (c *Coupon) ID() int64 {
	return c.id
}

// Code コードを返す
func (c *Coupon) Code() string {
	return c.code
}

// Description 説明を返す
func (c *Coupon) Description() string {
	return c.description
}

// ValidFrom 有効開始日時を返す
func (c *Coupon) ValidFrom() *time.Time {
	return c.validFrom
}

// IssuedAt 発行日時を返す（ValidFromと同じ）
func (c *Coupon) IssuedAt() *time.Time {
	return c.validFrom
}

// ValidTo 有効期限を返す
func (c *Coupon) ValidTo() *time.Time {
	return c.validTo
}

// ValidityValue 有効期間の数量を返す
func (c *Coupon) ValidityValue() int {
	return c.validityValue
}

// ValidityUnit 有効期間の単位を返す
func (c *Coupon) ValidityUnit() ValidityUnit {
	return c.validityUnit
}

// IssuedTo 配布先を返す
func (c *Coupon) IssuedTo() string {
	return c.issuedTo
}

// Tags タグを返す
func (c *Coupon) Tags() string {
	return c.tags
}

// MaxRedemptions 利用上限回数を返す
func (c *Coupon) MaxRedemptions() int {
	return c.maxRedemptions
}

// RedeemedCount 利用済み回数を返す
func (c *Coupon) RedeemedCount() int {
	return c.redeemedCount
}

// CreatedAt 作成日時を返す
func (c *Coupon) CreatedAt() time.Time {
	return c.createdAt
}

// SetID IDを設定（リポジトリで採番した際に使用）
func (c *Coupon) SetID(id int64) {
	c.id = id
}

// SetRedeemedCount 利用済み回数を設定（リポジトリで更新した際に使用）
func (c *Coupon) SetRedeemedCount(n int) {
	c.redeemedCount = n
}

func (c *Coupon) isUpcoming(at time.Time) bool {
	return c.validFrom != nil && at.Before(*c.validFrom)
}

func (c *Coupon) isExpired(at time.Time) bool {
	return c.validTo != nil && at.After(*c.validTo)
}

func (c *Coupon) isMaxed() bool {
	return c.redeemedCount >= c.maxRedemptions
}

// StatusAt 指定時刻のライフサイクル状態を返す
// 判定順: Upcoming -> Expired -> Maxed -> Active
func (c *Coupon) StatusAt(at time.Time) CouponStatus {
	switch {
	case c.isUpcoming(at):
		return CouponStatusUpcoming
	case c.isExpired(at):
		return CouponStatusExpired
	case c.isMaxed():
		return CouponStatusMaxed
	default:
		return CouponStatusActive
	}
}

// RedemptionStatusAt 利用可否判定用の状態を返す
// 判定順: Expired -> Upcoming -> Maxed -> Active
func (c *Coupon) RedemptionStatusAt(at time.Time) CouponStatus {
	switch {
	case c.isExpired(at):
		return CouponStatusExpired
	case c.isUpcoming(at):
		return CouponStatusUpcoming
	case c.isMaxed():
		return CouponStatusMaxed
	default:
		return CouponStatusActive
	}
}

// CheckRedeemableAt 指定時刻に利用可能かをチェックし、不可の場合は理由のエラーを返す
func (c *Coupon) CheckRedeemableAt(at time.Time) error {
	switch c.RedemptionStatusAt(at) {
	case CouponStatusExpired:
		return ErrCouponExpired
	case CouponStatusUpcoming:
		return ErrCouponNotYetActive
	case CouponStatusMaxed:
		return ErrRedemptionCeilingReached
	default:
		return nil
	}
}

// MustNewCoupon テスト用ヘルパー: NewCouponを呼び出し、エラーが発生した場合はpanicする
func MustNewCoupon(attrs Attributes) *Coupon {
	c, err := NewCoupon(attrs)
	if err != nil {
		panic(err)
	}
	return c
}
