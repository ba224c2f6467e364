package spreadsheet

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coupon-server/internal/domain/import_batch"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     FileKind
		wantErr  bool
	}{
		{name: "正常系: csv", filename: "coupons.csv", want: FileKindCSV},
		{name: "正常系: 大文字の拡張子", filename: "COUPONS.CSV", want: FileKindCSV},
		{name: "正常系: xlsx", filename: "coupons.xlsx", want: FileKindXLSX},
		{name: "正常系: xlsm", filename: "coupons.xlsm", want: FileKindXLSX},
		{name: "異常系: xls", filename: "coupons.xls", wantErr: true},
		{name: "異常系: 拡張子なし", filename: "coupons", wantErr: true},
		{name: "異常系: txt", filename: "coupons.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindFromFilename(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, import_batch.ErrUnsupportedFileType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead_CSV(t *testing.T) {
	content := "\ufeff Code ,Description,ISSUED_AT,validity_value,validity_unit,issued_to,tags,max_redemptions,code\n" +
		"A10,Spring,2026-10-01 09:00,5,days,,,1,IGNORED\n" +
		",,,,,,,,\n" +
		"\n" +
		"B20,\"Quoted, desc\",2026-10-02,2,h\n"

	table, err := Read(FileKindCSV, []byte(content))
	require.NoError(t, err)

	assert.Equal(t, import_batch.RequiredColumns, table.Columns())
	assert.Empty(t, table.MissingColumns(import_batch.RequiredColumns))

	rows := table.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number())
	// 重複した列名は先頭の列が優先される
	assert.Equal(t, "A10", rows[0].Value("code"))
	assert.Equal(t, "2026-10-01 09:00", rows[0].Value("issued_at"))

	assert.Equal(t, 3, rows[1].Number())
	assert.Equal(t, "Quoted, desc", rows[1].Value("description"))
	// 短い行の不足セルは空文字
	assert.Equal(t, "", rows[1].Value("max_redemptions"))

	rec := rows[1].Record()
	assert.Equal(t, "B20", rec["code"])
	assert.Equal(t, "", rec["tags"])
	assert.Len(t, rec, 8)
}

func TestRead_MissingColumns(t *testing.T) {
	table, err := Read(FileKindCSV, []byte("code,description\nA10,x\n"))
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"issued_at", "validity_value", "validity_unit", "issued_to", "tags", "max_redemptions"},
		table.MissingColumns(import_batch.RequiredColumns),
	)
}

func TestRead_Unreadable(t *testing.T) {
	tests := []struct {
		name    string
		kind    FileKind
		content []byte
	}{
		{name: "異常系: 空のCSV", kind: FileKindCSV, content: []byte("")},
		{name: "異常系: 壊れたワークブック", kind: FileKindXLSX, content: []byte("not a zip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.kind, tt.content)
			assert.ErrorIs(t, err, import_batch.ErrUnreadableFile)
		})
	}
}

func TestWorkbook_RoundTrip(t *testing.T) {
	header := []string{"code", "description", "max_redemptions", "valid_to"}
	rows := [][]any{
		{"A10", "Spring", 1, "2026-10-06 09:00:00"},
		{"B20", nil, 3, nil},
	}

	content, err := WriteWorkbook("coupons", header, rows)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	table, err := Read(FileKindXLSX, content)
	require.NoError(t, err)
	assert.Equal(t, header, table.Columns())

	got := table.Rows()
	require.Len(t, got, 2)
	assert.Equal(t, "A10", got[0].Value("code"))
	assert.Equal(t, "1", got[0].Value("max_redemptions"))
	assert.Equal(t, "2026-10-06 09:00:00", got[0].Value("valid_to"))
	assert.Equal(t, "", got[1].Value("description"))
	assert.Equal(t, "3", got[1].Value("max_redemptions"))
}

// newDateWorkbook issued_atに日付セルを持つワークブックを作成する
func newDateWorkbook(t *testing.T, issuedAt time.Time, style *excelize.Style) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow(defaultSheet, "A1", &[]any{"code", "issued_at", "validity_value"}))
	require.NoError(t, f.SetCellValue(defaultSheet, "A2", "D1"))
	require.NoError(t, f.SetCellValue(defaultSheet, "B2", issuedAt))
	require.NoError(t, f.SetCellValue(defaultSheet, "C2", 5))
	if style != nil {
		id, err := f.NewStyle(style)
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle(defaultSheet, "B2", "B2", id))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestRead_WorkbookDateCells(t *testing.T) {
	issuedAt := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	customDate := "yyyy/mm/dd"
	customText := `0 "pcs"`

	tests := []struct {
		name     string
		style    *excelize.Style
		wantDate bool
	}{
		{name: "正常系: 既定の日時書式", wantDate: true},
		{name: "正常系: 短い日付書式(14)", style: &excelize.Style{NumFmt: 14}, wantDate: true},
		{name: "正常系: ユーザー定義の日付書式", style: &excelize.Style{CustomNumFmt: &customDate}, wantDate: true},
		{name: "正常系: 日付でない書式は数値のまま", style: &excelize.Style{CustomNumFmt: &customText}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Read(FileKindXLSX, newDateWorkbook(t, issuedAt, tt.style))
			require.NoError(t, err)

			rows := table.Rows()
			require.Len(t, rows, 1)
			assert.Equal(t, "D1", rows[0].Value("code"))
			assert.Equal(t, "5", rows[0].Value("validity_value"))

			got := rows[0].Value("issued_at")
			if tt.wantDate {
				assert.Equal(t, "2026-10-15 09:30:00", got)
				return
			}
			serial, err := strconv.ParseFloat(got, 64)
			require.NoError(t, err)
			assert.InDelta(t, 46310.3958, serial, 0.001)
		})
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{code: "yyyy-mm-dd hh:mm", want: true},
		{code: "[$-409]m/d/yy", want: true},
		{code: "[h]:mm:ss", want: true},
		{code: "General", want: false},
		{code: "#,##0.00", want: false},
		{code: `0 "days"`, want: false},
		{code: `0.0\h`, want: false},
		{code: "[Red]0.00;0.00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}
