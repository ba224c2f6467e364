package transaction

import (
	"context"
	"database/sql"
)

// TransactionManager 記録ストアへの複数の書き込みを1単位で確定させる
type TransactionManager interface {
	// WithTransaction fnがnilを返した場合のみコミットし、それ以外はロールバックする
	// コミット失敗もエラーとして返す
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}
