package coupon_import

import (
	"time"

	"coupon-server/internal/domain/coupon"
	"coupon-server/internal/domain/import_batch"
	"coupon-server/internal/infrastructure/spreadsheet"
)

// rowOutcome 1行分の検証結果
type rowOutcome int

const (
	outcomeAccepted rowOutcome = iota
	outcomeSkipped
	outcomeRejected
)

// rowResult 検証結果と理由
type rowResult struct {
	outcome rowOutcome
	attrs   coupon.Attributes
	code    string
	reason  import_batch.Reason
	err     error
}

// rowValidator 取り込みファイルの各行を検証する
// 登録済みコードとファイル内で受理済みのコードを重複として扱う
type rowValidator struct {
	known    map[string]struct{}
	location *time.Location
}

func newRowValidator(existing []string, loc *time.Location) *rowValidator {
	known := make(map[string]struct{}, len(existing))
	for _, code := range existing {
		known[code] = struct{}{}
	}
	return &rowValidator{known: known, location: loc}
}

func (v *rowValidator) validate(row spreadsheet.Row) rowResult {
	code := row.Value("code")
	if code == "" {
		return rejected(import_batch.ReasonMissingCode, coupon.ErrMissingCode)
	}
	if _, dup := v.known[code]; dup {
		return rowResult{outcome: outcomeSkipped, code: code, reason: import_batch.ReasonDuplicateCode}
	}

	issuedAt, err := coupon.ParseIssuedAt(row.Value("issued_at"), v.location)
	if err != nil {
		return rejected(import_batch.ReasonInvalidIssuedAt, err)
	}

	quantity, err := coupon.ParseValidityValue(row.Value("validity_value"))
	if err != nil {
		return rejected(import_batch.ReasonInvalidValidityValue, err)
	}

	unit, err := coupon.NewValidityUnit(row.Value("validity_unit"))
	if err != nil {
		return rejected(import_batch.ReasonInvalidValidityUnit, err)
	}

	maxRedemptions, err := coupon.ParseMaxRedemptions(row.Value("max_redemptions"))
	if err != nil {
		return rejected(import_batch.ReasonInvalidMaxRedemptions, err)
	}

	validTo, err := coupon.DeriveValidTo(issuedAt, quantity, unit)
	if err != nil {
		return rejected(import_batch.ReasonValidToComputationFailed, err)
	}

	v.known[code] = struct{}{}
	return rowResult{
		outcome: outcomeAccepted,
		code:    code,
		attrs: coupon.Attributes{
			Code:           code,
			Description:    row.Value("description"),
			ValidFrom:      &issuedAt,
			ValidTo:        &validTo,
			ValidityValue:  quantity,
			ValidityUnit:   unit,
			IssuedTo:       row.Value("issued_to"),
			Tags:           row.Value("tags"),
			MaxRedemptions: maxRedemptions,
		},
	}
}

func rejected(reason import_batch.Reason, err error) rowResult {
	return rowResult{outcome: outcomeRejected, reason: reason, err: err}
}

// detail ログとレポート用のエラー詳細
func (r rowResult) detail() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}
