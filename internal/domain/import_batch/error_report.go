package import_batch

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// RejectedRow 取り込みを拒否した行
type RejectedRow struct {
	Row    int
	Reason Reason
	Detail string
	Data   map[string]string
}

// SkippedRow 重複のためスキップした行
type SkippedRow struct {
	Row    int
	Code   string
	Reason Reason
}

// EncodeErrorReport 拒否した行を元の列と_row/_errorを付けたCSVに変換する
func EncodeErrorReport(columns []string, rows []RejectedRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(columns)+2)
	header = append(header, columns...)
	header = append(header, "_row", "_error")
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write error report header: %w", err)
	}

	for _, r := range rows {
		record := make([]string, 0, len(header))
		for _, col := range columns {
			record = append(record, r.Data[col])
		}
		record = append(record, strconv.Itoa(r.Row), r.Reason.Message())
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write error report row %d: %w", r.Row, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush error report: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeMinimalErrorReport 行番号・理由・コードのみのCSVに変換する
func EncodeMinimalErrorReport(rows []RejectedRow) []byte {
	var buf bytes.Buffer
	buf.WriteString("row,error,code\n")
	for _, r := range rows {
		fmt.Fprintf(&buf, "%d,%s,%s\n", r.Row, csvField(r.Reason.Message()), csvField(r.Data["code"]))
	}
	return buf.Bytes()
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
