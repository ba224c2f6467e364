package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "正常系: 文字列", input: `{"v":" 5 "}`, want: "5"},
		{name: "正常系: 整数", input: `{"v":5}`, want: "5"},
		{name: "正常系: 小数", input: `{"v":2.5}`, want: "2.5"},
		{name: "正常系: null", input: `{"v":null}`, want: ""},
		{name: "正常系: 未指定", input: `{}`, want: ""},
		{name: "異常系: 不正な文字列", input: `{"v":"\x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				V FlexString `json:"v"`
			}
			err := json.Unmarshal([]byte(tt.input), &body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body.V.String())
		})
	}
}

func TestFormatWindow(t *testing.T) {
	ts := time.Date(2026, 10, 1, 9, 30, 45, 0, time.UTC)
	got := formatWindow(&ts)
	require.NotNil(t, got)
	assert.Equal(t, "2026-10-01 09:30", *got)
	assert.Nil(t, formatWindow(nil))
}
