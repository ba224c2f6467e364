package import_batch

// Reason 行を取り込まなかった理由
type Reason string

const (
	ReasonMissingCode              Reason = "missing_code"
	ReasonDuplicateCode            Reason = "duplicate_code"
	ReasonInvalidIssuedAt          Reason = "invalid_issued_at"
	ReasonInvalidValidityValue     Reason = "invalid_validity_value"
	ReasonInvalidValidityUnit      Reason = "invalid_validity_unit"
	ReasonInvalidMaxRedemptions    Reason = "invalid_max_redemptions"
	ReasonValidToComputationFailed Reason = "valid_to_computation_failed"
)

// String 文字列表現を返す
func (r Reason) String() string {
	return string(r)
}

// Message レポートに出力するメッセージを返す
func (r Reason) Message() string {
	switch r {
	case ReasonMissingCode:
		return "Missing code"
	case ReasonDuplicateCode:
		return "Duplicate code"
	case ReasonInvalidIssuedAt:
		return "Invalid issued_at"
	case ReasonInvalidValidityValue:
		return "Invalid validity_value"
	case ReasonInvalidValidityUnit:
		return "Invalid validity_unit"
	case ReasonInvalidMaxRedemptions:
		return "Invalid max_redemptions"
	case ReasonValidToComputationFailed:
		return "Failed to compute valid_to"
	default:
		return string(r)
	}
}
