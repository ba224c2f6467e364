package coupon

import (
	"context"
	"database/sql"
)

// CouponRepository クーポンリポジトリインターフェース
type CouponRepository interface {
	// FindByCode コードでクーポンを取得
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// ExistsByCode コードが登録済みかどうかを返す
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// ListCodes 登録済みの全コードを取得
	ListCodes(ctx context.Context) ([]string, error)

	// FindAll 全クーポンをID昇順で取得
	FindAll(ctx context.Context) ([]*Coupon, error)

	// Create クーポンを作成。txがnilの場合はトランザクション外で実行する
	Create(ctx context.Context, tx *sql.Tx, c *Coupon) error

	// IncrementRedeemedCount 利用上限未満の場合のみ利用回数を1増やし、更新後の回数を返す
	// 上限に達している場合はErrRedemptionCeilingReachedを返す
	IncrementRedeemedCount(ctx context.Context, tx *sql.Tx, code string) (int, error)
}
