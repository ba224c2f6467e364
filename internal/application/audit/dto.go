package audit

import "time"

const (
	// DefaultLimit 件数指定がない場合の取得件数
	DefaultLimit = 50
	// MaxLimit 一度に取得できる最大件数
	MaxLimit = 500
)

// ListLogsRequest 監査ログ取得リクエスト
type ListLogsRequest struct {
	Limit  int
	Offset int
}

// AuditLogDTO 監査ログDTO
type AuditLogDTO struct {
	ID         int64     `json:"id"`
	LoggedAt   time.Time `json:"timestamp"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	CouponCode string    `json:"coupon_code"`
	Details    string    `json:"details"`
}

// ListLogsResponse 監査ログ取得レスポンス
type ListLogsResponse struct {
	Logs   []*AuditLogDTO `json:"logs"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
