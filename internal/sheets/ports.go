// Package sheets defines the outbound port for mirroring ledgers into a
// spreadsheet. Adapters live in the google and memory subpackages.
package sheets

import (
	"context"
	"strconv"

	"fintrack/internal/core"
)

// Header is the first row of every exported tab.
var Header = []string{"ID", "Date", "Kind", "Category", "Amount", "Note"}

// Ports for outbound adapters.
type (
	// LedgerExporter replaces the contents of a named tab with the rows.
	LedgerExporter interface {
		ExportLedger(ctx context.Context, tab string, txs []core.Transaction) error
	}
)

// Rows converts transactions to spreadsheet rows, header first.
func Rows(txs []core.Transaction) [][]string {
	out := make([][]string, 0, len(txs)+1)
	out = append(out, append([]string(nil), Header...))
	for _, t := range txs {
		out = append(out, []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.String(),
			string(t.Kind),
			t.CategoryName,
			core.FormatAmount(t.Amount),
			t.Note,
		})
	}
	return out
}
