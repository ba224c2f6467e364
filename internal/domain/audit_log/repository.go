package audit_log

import (
	"context"
	"database/sql"
	"time"
)

// AuditLogRepository 監査ログリポジトリインターフェース
type AuditLogRepository interface {
	// Save 監査ログを追記。txがnilの場合はトランザクション外で実行する
	Save(ctx context.Context, tx *sql.Tx, log *AuditLog) error

	// FindRecent 新しい順に監査ログを取得
	FindRecent(ctx context.Context, limit, offset int) ([]*AuditLog, error)

	// CountByActionSince 指定日時以降の操作件数を返す
	CountByActionSince(ctx context.Context, action Action, since time.Time) (int, error)
}
