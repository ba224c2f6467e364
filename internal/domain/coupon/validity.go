package coupon

import (
	"fmt"
	"time"
)

// maxValidToYear 保存可能なvalid_toの上限年
const maxValidToYear = 9999

// ComputeValidTo valid_fromに期間を加算してvalid_toを求める
// validFromがnilの場合はnowを起点にする。quantityが数値でなければ0として扱う。
func ComputeValidTo(validFrom *time.Time, quantity string, unit string, now time.Time) time.Time {
	start := now
	if validFrom != nil {
		start = *validFrom
	}
	n, err := ParseInt(quantity)
	if err != nil {
		n = 0
	}
	return addValidity(start, n, ResolveValidityUnit(unit))
}

// DeriveValidTo 検証済みの値からvalid_toを求める
// 結果が保存可能な範囲を超える場合はエラーを返す
func DeriveValidTo(validFrom time.Time, quantity int, unit ValidityUnit) (time.Time, error) {
	if quantity < 0 {
		return time.Time{}, fmt.Errorf("%w: negative quantity %d", ErrInvalidValidityValue, quantity)
	}
	if !unit.Valid() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidValidityUnit, unit)
	}
	// 日数換算で上限年を超えないか先に確認する
	days := quantity
	if unit == ValidityUnitHours {
		days = quantity / 24
	}
	if days > (maxValidToYear-validFrom.Year()+1)*366 {
		return time.Time{}, fmt.Errorf("%w: %d %s", ErrValidToOutOfRange, quantity, unit)
	}
	validTo := addValidity(validFrom, quantity, unit)
	if validTo.Year() > maxValidToYear {
		return time.Time{}, fmt.Errorf("%w: %d %s", ErrValidToOutOfRange, quantity, unit)
	}
	return validTo, nil
}

func addValidity(start time.Time, quantity int, unit ValidityUnit) time.Time {
	if unit == ValidityUnitHours {
		// time.Durationのオーバーフローを避けるため日と時間に分けて加算する
		return start.AddDate(0, 0, quantity/24).Add(time.Duration(quantity%24) * time.Hour)
	}
	return start.AddDate(0, 0, quantity)
}
