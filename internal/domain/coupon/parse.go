package coupon

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrNotAnInteger 整数として解釈できない値
var ErrNotAnInteger = errors.New("not an integer")

// ParseInt 数値文字列を整数に変換する
// 小数点付きの値は切り捨てる ("5.9" -> 5)
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrNotAnInteger)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotAnInteger, s)
	}
	// DBのINT列に収まる範囲に限定する
	f = math.Trunc(f)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q out of range", ErrNotAnInteger, s)
	}
	return int(f), nil
}

// ParseValidityValue 有効期間の数量を解釈する。0以上の整数のみ許可
func ParseValidityValue(s string) (int, error) {
	n, err := ParseInt(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidValidityValue, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidValidityValue, n)
	}
	return n, nil
}

// ParseMaxRedemptions 利用上限回数を解釈する
// 空文字は1、数値でない値や1未満はエラー
func ParseMaxRedemptions(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 1, nil
	}
	n, err := ParseInt(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxRedemptions, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: must be >= 1, got %d", ErrInvalidMaxRedemptions, n)
	}
	return n, nil
}

// ParseIssuedAt 発行日時を寛容な形式で解釈する
// オフセット付きの値も同じ時刻のままlocの表現に揃える
func ParseIssuedAt(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidIssuedAt)
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidIssuedAt, s)
	}
	return t.In(loc).Truncate(time.Second), nil
}
