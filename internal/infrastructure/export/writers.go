package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// table はCSV/XLSXに共通する表形式データ
type table struct {
	sheet   string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

// FileName は "prefix_<ISO8601>.ext" 形式のファイル名を作る（: と . は - に置換）
func FileName(prefix, ext string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("%s_%s.%s", prefix, stamp, ext)
}

func writeCSV(w io.Writer, t table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.headers); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗: %w", err)
	}
	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, t table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		return fmt.Errorf("シート名の設定に失敗: %w", err)
	}

	header := make([]interface{}, len(t.headers))
	for i, h := range t.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
		return fmt.Errorf("ヘッダー行の書き込みに失敗: %w", err)
	}

	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(t.sheet, cell, &values); err != nil {
			return fmt.Errorf("%d行目の書き込みに失敗: %w", i+2, err)
		}
	}

	for i, width := range t.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.sheet, col, col, width); err != nil {
			return fmt.Errorf("列幅の設定に失敗: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("XLSXの書き出しに失敗: %w", err)
	}
	return nil
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
