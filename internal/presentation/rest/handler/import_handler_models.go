package handler

// ImportPreviewResponse 取り込みプレビューレスポンス
// @Description 取り込みプレビューレスポンス
type ImportPreviewResponse struct {
	AcceptedCount int               `json:"accepted_count" example:"1"`
	SkippedCount  int               `json:"skipped_count" example:"1"`
	RejectedCount int               `json:"rejected_count" example:"1"`
	Accepted      []AcceptedRowItem `json:"accepted"`
	Skipped       []SkippedRowItem  `json:"skipped"`
	Rejected      []RejectedRowItem `json:"rejected"`
	BatchID       *string           `json:"batch_id" example:"01jab3c4d5e6f7g8h9j0k1m2n3"`
	ErrorReportID *string           `json:"error_report_id" example:"01jab3c4d5e6f7g8h9j0k1m2n4"`
}

// AcceptedRowItem 受理された行
// @Description 受理された行
type AcceptedRowItem struct {
	Row            int     `json:"row" example:"2"`
	Code           string  `json:"code" example:"A10"`
	Description    *string `json:"description"`
	ValidFrom      *string `json:"valid_from" example:"2026-10-01 09:00:00"`
	ValidTo        *string `json:"valid_to" example:"2026-10-06 09:00:00"`
	ValidityValue  int     `json:"validity_value" example:"5"`
	ValidityUnit   string  `json:"validity_unit" example:"days"`
	IssuedTo       *string `json:"issued_to"`
	Tags           *string `json:"tags"`
	MaxRedemptions int     `json:"max_redemptions" example:"1"`
}

// SkippedRowItem スキップされた行
// @Description スキップされた行
type SkippedRowItem struct {
	Row    int    `json:"row" example:"4"`
	Code   string `json:"code" example:"EXIST"`
	Reason string `json:"reason" example:"duplicate_code"`
}

// RejectedRowItem 拒否された行
// @Description 拒否された行
type RejectedRowItem struct {
	Row     int    `json:"row" example:"3"`
	Reason  string `json:"reason" example:"missing_code"`
	Message string `json:"message" example:"Missing code"`
}

// ConfirmImportRequest 取り込み確定リクエスト
// @Description 取り込み確定リクエスト
type ConfirmImportRequest struct {
	BatchID string `json:"batch_id" form:"batch_id" example:"01jab3c4d5e6f7g8h9j0k1m2n3"`
}

// ConfirmImportResponse 取り込み確定レスポンス
// @Description 取り込み確定レスポンス
type ConfirmImportResponse struct {
	BatchID  string `json:"batch_id" example:"01jab3c4d5e6f7g8h9j0k1m2n3"`
	Inserted int    `json:"inserted" example:"1"`
}
