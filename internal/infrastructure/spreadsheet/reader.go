package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"coupon-server/internal/domain/import_batch"
)

// Read ファイル内容を形式に応じて表として読み込む
func Read(kind FileKind, content []byte) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch kind {
	case FileKindCSV:
		records, err = readCSV(content)
	case FileKindXLSX:
		records, err = readWorkbook(content)
	default:
		return nil, fmt.Errorf("%w: %q", import_batch.ErrUnsupportedFileType, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", import_batch.ErrUnreadableFile, err)
	}
	if len(records) == 0 || isBlank(records[0]) {
		return nil, fmt.Errorf("%w: header row is missing", import_batch.ErrUnreadableFile)
	}
	return newTable(records), nil
}

func readCSV(content []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// readWorkbook 先頭シートの全行を読み込む
// 日付書式の数値セルは表示文字列ではなく日時文字列に変換する
func readWorkbook(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	// 書式を適用しない値で読み込む
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dates := dateStyles{f: f, known: make(map[int]bool)}
	for r, rec := range rows {
		for c, cell := range rec {
			serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if !dates.isDate(sheet, name) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rec[c] = t.Format(workbookTimestampLayout)
		}
	}
	return rows, nil
}

// workbookTimestampLayout 日付セルを文字列に変換するときの書式
const workbookTimestampLayout = "2006-01-02 15:04:05"

// dateStyles スタイルごとに日付書式かどうかを記録する
type dateStyles struct {
	f     *excelize.File
	known map[int]bool
}

func (d dateStyles) isDate(sheet, cell string) bool {
	idx, err := d.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if v, ok := d.known[idx]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		v = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	d.known[idx] = v
	return v
}

// isDateNumFmt 組み込み書式IDまたはユーザー定義書式が日付・時刻を表すか
func isDateNumFmt(id int, custom *string) bool {
	if custom != nil {
		return isDateFormatCode(*custom)
	}
	switch {
	case id >= 14 && id <= 22, id >= 45 && id <= 47:
		return true
	case id >= 27 && id <= 36, id >= 50 && id <= 58:
		// 東アジア向けの日付書式
		return true
	default:
		return false
	}
}

// isDateFormatCode 書式文字列に日付・時刻の記号が含まれるか
// 引用符内の文字列とエスケープ文字、角括弧の色・条件指定は無視する
func isDateFormatCode(code string) bool {
	var (
		inQuote   bool
		inBracket bool
		escaped   bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == ';':
			// 先頭の区画だけで判定する
			return false
		case strings.ContainsRune("ymdhs", r):
			return true
		}
	}
	return false
}
