package import_batch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFileType 取り込み対象外のファイル形式エラー
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrUnreadableFile ファイルを表として読み込めないエラー
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrMissingColumns 必須列が不足しているエラー
	ErrMissingColumns = errors.New("missing required columns")
	// ErrBatchNotFound 一時バッチが見つからないエラー
	ErrBatchNotFound = errors.New("import batch not found")
	// ErrBatchEmpty 一時バッチに行が含まれていないエラー
	ErrBatchEmpty = errors.New("import batch is empty")
	// ErrBatchCorrupt 一時バッチの構造が壊れているエラー
	ErrBatchCorrupt = errors.New("import batch is corrupt")
	// ErrCommitFailed 取り込みのコミットに失敗したエラー
	ErrCommitFailed = errors.New("import commit failed")
	// ErrReportNotFound エラーレポートが見つからないエラー
	ErrReportNotFound = errors.New("error report not found")
	// ErrStagingFailed 一時バッチの保存に失敗したエラー
	ErrStagingFailed = errors.New("failed to stage import batch")
	// ErrArtifactNotFound 保存領域に成果物が存在しないエラー
	ErrArtifactNotFound = errors.New("artifact not found")
)

// MissingColumnsError 不足している列名を保持するエラー
type MissingColumnsError struct {
	Columns []string
}

// Error エラーメッセージを返す
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(e.Columns, ", "))
}

// Is ErrMissingColumnsとの比較を可能にする
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
