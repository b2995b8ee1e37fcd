// Package xlsx renders ledgers as downloadable workbooks and CSV files.
package xlsx

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"fintrack/internal/core"
	"fintrack/internal/sheets"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

var columnWidths = map[string]float64{"A": 8, "B": 12, "C": 10, "D": 16, "E": 12, "F": 40}

// WriteWorkbook encodes txs as a single sheet named sheet, header first.
// Amounts are numeric cells so spreadsheet formulas work on them.
func WriteWorkbook(w io.Writer, sheet string, txs []core.Transaction) error {
	if sheet == "" {
		return errors.New("sheet name is required")
	}
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	header := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, t := range txs {
		row := []any{
			t.ID,
			t.Date.String(),
			t.Kind.String(),
			t.CategoryName,
			t.Amount.InexactFloat64(),
			t.Note,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV encodes txs with the same columns as the workbook.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(sheets.Rows(txs)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
