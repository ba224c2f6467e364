package coupon

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeValidTo(t *testing.T) {
	from := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		validFrom *time.Time
		quantity  string
		unit      string
		want      time.Time
	}{
		{name: "正常系: 日数", validFrom: &from, quantity: "5", unit: "days", want: from.AddDate(0, 0, 5)},
		{name: "正常系: 時間", validFrom: &from, quantity: "3", unit: "hours", want: from.Add(3 * time.Hour)},
		{name: "正常系: 小数は切り捨て", validFrom: &from, quantity: "2.9", unit: "d", want: from.AddDate(0, 0, 2)},
		{name: "正常系: 数値でない数量は0", validFrom: &from, quantity: "abc", unit: "days", want: from},
		{name: "正常系: 未知の単位は日数扱い", validFrom: &from, quantity: "1", unit: "weeks", want: from.AddDate(0, 0, 1)},
		{name: "正常系: valid_fromがない場合は現在時刻", validFrom: nil, quantity: "1", unit: "H", want: now.Add(time.Hour)},
		{name: "正常系: 24時間を超える時間指定", validFrom: &from, quantity: "50", unit: "hours", want: from.Add(50 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeValidTo(tt.validFrom, tt.quantity, tt.unit, now)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestComputeValidTo_UnitAliasesAgree(t *testing.T) {
	from := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	want := ComputeValidTo(&from, "7", "hours", from)
	for _, alias := range []string{"Hours", "hour", "h", " H ", "HOURS"} {
		assert.True(t, want.Equal(ComputeValidTo(&from, "7", alias, from)), alias)
	}
}

func TestComputeValidTo_Monotonic(t *testing.T) {
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	for _, unit := range []string{"days", "hours"} {
		prev := ComputeValidTo(&from, "0", unit, from)
		for q := 1; q <= 400; q++ {
			got := ComputeValidTo(&from, strconv.Itoa(q), unit, from)
			assert.False(t, got.Before(prev), "unit=%s quantity=%d", unit, q)
			prev = got
		}
	}
}

func TestDeriveValidTo(t *testing.T) {
	from := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		quantity int
		unit     ValidityUnit
		want     time.Time
		wantErr  error
	}{
		{name: "正常系: 0日はvalid_fromと同じ", quantity: 0, unit: ValidityUnitDays, want: from},
		{name: "正常系: 5日", quantity: 5, unit: ValidityUnitDays, want: from.AddDate(0, 0, 5)},
		{name: "正常系: 36時間", quantity: 36, unit: ValidityUnitHours, want: from.Add(36 * time.Hour)},
		{name: "異常系: 負数", quantity: -1, unit: ValidityUnitDays, wantErr: ErrInvalidValidityValue},
		{name: "異常系: 不正な単位", quantity: 1, unit: "weeks", wantErr: ErrInvalidValidityUnit},
		{name: "異常系: 保存可能範囲を超える", quantity: 2_000_000_000, unit: ValidityUnitDays, wantErr: ErrValidToOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveValidTo(from, tt.quantity, tt.unit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}
