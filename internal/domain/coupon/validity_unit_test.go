package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidityUnit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ValidityUnit
		wantErr bool
	}{
		{name: "正常系: 空文字はdays", input: "", want: ValidityUnitDays},
		{name: "正常系: days", input: "days", want: ValidityUnitDays},
		{name: "正常系: Day", input: "Day", want: ValidityUnitDays},
		{name: "正常系: d", input: " d ", want: ValidityUnitDays},
		{name: "正常系: Hours", input: "Hours", want: ValidityUnitHours},
		{name: "正常系: hour", input: "hour", want: ValidityUnitHours},
		{name: "正常系: h", input: "h", want: ValidityUnitHours},
		{name: "異常系: weeks", input: "weeks", wantErr: true},
		{name: "異常系: 数値", input: "5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewValidityUnit(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValidityUnit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// 正規化済みの値を再度正規化しても変わらない
			again, err := NewValidityUnit(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestResolveValidityUnit(t *testing.T) {
	assert.Equal(t, ValidityUnitHours, ResolveValidityUnit("H"))
	assert.Equal(t, ValidityUnitDays, ResolveValidityUnit("weeks"))
	assert.Equal(t, ValidityUnitDays, ResolveValidityUnit(""))
}

func TestCouponStatus(t *testing.T) {
	for _, s := range []string{"Active", "Upcoming", "Expired", "Maxed"} {
		cs, err := NewCouponStatus(s)
		require.NoError(t, err)
		assert.True(t, cs.Valid())
		assert.Equal(t, s, cs.String())
		assert.NotEmpty(t, cs.Message())
	}
	_, err := NewCouponStatus("active")
	assert.Error(t, err)
	assert.True(t, CouponStatusActive.IsActive())
	assert.False(t, CouponStatusMaxed.IsActive())
}
