package spreadsheet

import "strings"

// Table ヘッダー行とデータ行からなる表
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// Row 表のデータ行
type Row struct {
	number int
	cells  []string
	table  *Table
}

const utf8BOM = "\ufeff"

// NormalizeHeader 列名を前後空白除去と小文字化で正規化する
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
}

// newTable 読み込んだレコードから表を組み立てる
// 先頭レコードをヘッダーとし、空行は除外する。行番号はヘッダーを1行目として2から振る
func newTable(records [][]string) *Table {
	t := &Table{index: make(map[string]int)}
	if len(records) == 0 {
		return t
	}

	for i, name := range records[0] {
		col := NormalizeHeader(name)
		if col == "" {
			continue
		}
		if _, ok := t.index[col]; !ok {
			t.index[col] = i
			t.columns = append(t.columns, col)
		}
	}

	number := 2
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		t.rows = append(t.rows, Row{number: number, cells: rec, table: t})
		number++
	}
	return t
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Columns 正規化済みの列名をファイル上の順序で返す。空の列名と重複は除く
func (t *Table) Columns() []string {
	return t.columns
}

// HasColumn 列が存在するかを返す
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns requiredのうち存在しない列をrequiredの順序で返す
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Rows データ行を返す
func (t *Table) Rows() []Row {
	return t.rows
}

// Number ヘッダーを1行目とした行番号
func (r Row) Number() int {
	return r.number
}

// Raw 列の値をそのまま返す。列やセルがなければ空文字
func (r Row) Raw(col string) string {
	i, ok := r.table.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Value 列の値を前後空白を除いて返す
func (r Row) Value(col string) string {
	return strings.TrimSpace(r.Raw(col))
}

// Record 行の元データを列名をキーにして返す
func (r Row) Record() map[string]string {
	rec := make(map[string]string, len(r.table.index))
	for col := range r.table.index {
		rec[col] = r.Raw(col)
	}
	return rec
}
