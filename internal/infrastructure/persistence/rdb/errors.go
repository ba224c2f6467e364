package rdb

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// mysqlErrDuplicateEntry MySQLの一意制約違反エラー番号
const mysqlErrDuplicateEntry = 1062

// isDuplicateKeyError 一意制約違反かどうかを判定する
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDuplicateEntry
	}
	// go-sqlite3はcgo無効時にエラー型を公開しないためメッセージで判定する
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
