package import_batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coupon-server/internal/domain/coupon"
)

// TimestampLayout 一時バッチ内の日時表現
const TimestampLayout = "2006-01-02 15:04:05"

// RequiredColumns 取り込みファイルの必須列
var RequiredColumns = []string{
	"code",
	"description",
	"issued_at",
	"validity_value",
	"validity_unit",
	"issued_to",
	"tags",
	"max_redemptions",
}

// StagedCoupon 一時バッチに保存するクーポン属性
type StagedCoupon struct {
	Code           string  `json:"code"`
	Description    *string `json:"description"`
	IssuedAt       *string `json:"issued_at"`
	ValidFrom      *string `json:"valid_from"`
	ValidTo        *string `json:"valid_to"`
	ValidityValue  int     `json:"validity_value"`
	ValidityUnit   string  `json:"validity_unit"`
	IssuedTo       *string `json:"issued_to"`
	Tags           *string `json:"tags"`
	MaxRedemptions int     `json:"max_redemptions"`
	RedeemedCount  int     `json:"redeemed_count"`
}

// StagedEntry 一時バッチの1行
type StagedEntry struct {
	Row  int          `json:"row"`
	Data StagedCoupon `json:"data"`
}

// NewStagedEntry 検証済みのクーポン属性から一時バッチの行を作成する
// 日時は確定時に同じlocで読み戻すため、locの壁時計で書き出す
func NewStagedEntry(row int, attrs coupon.Attributes, loc *time.Location) StagedEntry {
	validFrom := formatTimestamp(attrs.ValidFrom, loc)
	return StagedEntry{
		Row: row,
		Data: StagedCoupon{
			Code:           attrs.Code,
			Description:    optional(attrs.Description),
			IssuedAt:       validFrom,
			ValidFrom:      validFrom,
			ValidTo:        formatTimestamp(attrs.ValidTo, loc),
			ValidityValue:  attrs.ValidityValue,
			ValidityUnit:   attrs.ValidityUnit.String(),
			IssuedTo:       optional(attrs.IssuedTo),
			Tags:           optional(attrs.Tags),
			MaxRedemptions: attrs.MaxRedemptions,
			RedeemedCount:  0,
		},
	}
}

// Attributes 保存された値からクーポン属性を復元する
// 日時の解釈に失敗した項目はnilになる
func (e StagedEntry) Attributes(loc *time.Location) coupon.Attributes {
	d := e.Data
	validFrom := parseTimestamp(d.ValidFrom, loc)
	if validFrom == nil {
		validFrom = parseTimestamp(d.IssuedAt, loc)
	}
	return coupon.Attributes{
		Code:           d.Code,
		Description:    deref(d.Description),
		ValidFrom:      validFrom,
		ValidTo:        parseTimestamp(d.ValidTo, loc),
		ValidityValue:  d.ValidityValue,
		ValidityUnit:   coupon.ValidityUnit(d.ValidityUnit),
		IssuedTo:       deref(d.IssuedTo),
		Tags:           deref(d.Tags),
		MaxRedemptions: d.MaxRedemptions,
	}
}

// EncodeBatch 一時バッチをJSONに変換する
func EncodeBatch(entries []StagedEntry) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode import batch: %w", err)
	}
	return data, nil
}

// DecodeBatch JSONから一時バッチを復元する
// 行が0件の場合はErrBatchEmpty、構造が不正な場合はErrBatchCorruptを返す
func DecodeBatch(data []byte) ([]StagedEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBatchCorrupt, err)
	}
	if len(raw) == 0 {
		return nil, ErrBatchEmpty
	}

	entries := make([]StagedEntry, 0, len(raw))
	for i, item := range raw {
		var envelope struct {
			Row  int             `json:"row"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(item, &envelope); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrBatchCorrupt, i, err)
		}
		if !isObject(envelope.Data) {
			return nil, fmt.Errorf("%w: entry %d has no data object", ErrBatchCorrupt, i)
		}
		var data StagedCoupon
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrBatchCorrupt, i, err)
		}
		if strings.TrimSpace(data.Code) == "" {
			return nil, fmt.Errorf("%w: entry %d has no code", ErrBatchCorrupt, i)
		}
		entries = append(entries, StagedEntry{Row: envelope.Row, Data: data})
	}
	return entries, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func formatTimestamp(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	s := t.In(loc).Format(TimestampLayout)
	return &s
}

func parseTimestamp(s *string, loc *time.Location) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(TimestampLayout, *s, loc); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
