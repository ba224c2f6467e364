package coupon

import (
	"fmt"
	"strings"
)

// ValidityUnit 有効期間の単位を表す値オブジェクト
type ValidityUnit string

const (
	ValidityUnitDays  ValidityUnit = "days"  // 日
	ValidityUnitHours ValidityUnit = "hours" // 時間
)

// NewValidityUnit 入力値を正規化してValidityUnitを作成する
// 空文字はdaysとして扱い、別名以外の値はエラーとする
func NewValidityUnit(s string) (ValidityUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "days", "day", "d":
		return ValidityUnitDays, nil
	case "hours", "hour", "h":
		return ValidityUnitHours, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidValidityUnit, s)
	}
}

// ResolveValidityUnit 入力値を寛容に解釈する
// hoursの別名以外はすべてdaysになる
func ResolveValidityUnit(s string) ValidityUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hours", "hour", "h":
		return ValidityUnitHours
	default:
		return ValidityUnitDays
	}
}

// String 文字列表現を返す
func (u ValidityUnit) String() string {
	return string(u)
}

// Valid 有効な単位かどうかを返す
func (u ValidityUnit) Valid() bool {
	switch u {
	case ValidityUnitDays, ValidityUnitHours:
		return true
	default:
		return false
	}
}
