package spreadsheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"coupon-server/internal/domain/import_batch"
)

// FileKind 取り込み可能なファイル形式
type FileKind string

const (
	FileKindCSV  FileKind = "csv"
	FileKindXLSX FileKind = "xlsx"
)

// KindFromFilename ファイル名の拡張子から形式を判定する
func KindFromFilename(filename string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".csv":
		return FileKindCSV, nil
	case ".xlsx", ".xlsm":
		return FileKindXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", import_batch.ErrUnsupportedFileType, filename)
	}
}

// String 文字列表現を返す
func (k FileKind) String() string {
	return string(k)
}
