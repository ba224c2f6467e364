package coupon_import

import "coupon-server/internal/domain/import_batch"

// PreviewLimit プレビューに含める各区分の最大行数
const PreviewLimit = 10

// StageImportRequest 取り込みファイルのアップロードリクエスト
type StageImportRequest struct {
	Filename string
	Content  []byte
}

// RejectedPreview 拒否行のプレビュー
type RejectedPreview struct {
	Row     int
	Reason  string
	Message string
}

// ImportPreview 取り込み前の検証結果
type ImportPreview struct {
	AcceptedCount int
	SkippedCount  int
	RejectedCount int
	Accepted      []import_batch.StagedEntry
	Skipped       []import_batch.SkippedRow
	Rejected      []RejectedPreview
	BatchID       string // 受理行がない場合は空
	ErrorReportID string // 拒否行がない場合、またはレポートを保存できなかった場合は空
}

// ConfirmImportRequest 取り込み確定リクエスト
type ConfirmImportRequest struct {
	BatchID string
}

// ConfirmImportResponse 取り込み確定レスポンス
type ConfirmImportResponse struct {
	BatchID  string
	Inserted int
}

// Artifact ダウンロード用の成果物
type Artifact struct {
	Name    string
	Content []byte
}
