package audit_log

import "fmt"

// Action 監査ログの操作種別
type Action string

const (
	ActionCreate Action = "create" // 登録
	ActionImport Action = "import" // 一括取り込み
	ActionRedeem Action = "redeem" // 利用
)

// NewAction 新しいActionを作成
func NewAction(s string) (Action, error) {
	switch s {
	case "create", "import", "redeem":
		return Action(s), nil
	default:
		return "", fmt.Errorf("invalid audit action: %s", s)
	}
}

// String 文字列表現を返す
func (a Action) String() string {
	return string(a)
}
