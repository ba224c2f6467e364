package audit_log

import (
	"time"
)

// DefaultActor 認証を持たない操作の実行者ラベル
const DefaultActor = "admin"

// AuditLog 監査ログエンティティ（追記のみ）
type AuditLog struct {
	id         int64
	loggedAt   time.Time
	actor      string
	action     Action
	couponCode string
	details    string
}

// NewAuditLog 新しいAuditLogエンティティを作成
func NewAuditLog(loggedAt time.Time, actor string, action Action, couponCode, details string) *AuditLog {
	if actor == "" {
		actor = DefaultActor
	}
	return &AuditLog{
		loggedAt:   loggedAt,
		actor:      actor,
		action:     action,
		couponCode: couponCode,
		details:    details,
	}
}

// Reconstruct 保存済みの値からAuditLogを復元する
func Reconstruct(id int64, loggedAt time.Time, actor string, action Action, couponCode, details string) *AuditLog {
	return &AuditLog{
		id:         id,
		loggedAt:   loggedAt,
		actor:      actor,
		action:     action,
		couponCode: couponCode,
		details:    details,
	}
}

// ID IDを返す
func (l *AuditLog) ID() int64 {
	return l.id
}

// LoggedAt 記録日時を返す
func (l *AuditLog) LoggedAt() time.Time {
	return l.loggedAt
}

// Actor 実行者を返す
func (l *AuditLog) Actor() string {
	return l.actor
}

// Action 操作種別を返す
func (l *AuditLog) Action() Action {
	return l.action
}

// CouponCode 対象のクーポンコードを返す
func (l *AuditLog) CouponCode() string {
	return l.couponCode
}

// Details 詳細を返す
func (l *AuditLog) Details() string {
	return l.details
}
