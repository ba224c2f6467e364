package handler

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// WindowLayout レスポンスに含める有効期間の表示形式
const WindowLayout = "2006-01-02 15:04"

// FlexString 文字列と数値のどちらでも受け付けるJSON値
// 数値はJSON上の表記のまま文字列として保持する
type FlexString string

// UnmarshalJSON JSONの文字列・数値・nullを受け付ける
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(data)
	return nil
}

// UnmarshalParam フォーム・クエリの値を受け付ける
func (s *FlexString) UnmarshalParam(param string) error {
	*s = FlexString(param)
	return nil
}

// String 前後の空白を除いた文字列を返す
func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// formatWindow 日時を表示形式に変換する。未設定はnull
func formatWindow(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(WindowLayout)
	return &s
}
