package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Exporter keeps exported tabs in memory. It backs tests and the worker's
// dry-run mode when no spreadsheet is configured.
type Exporter struct {
	mu    sync.Mutex
	tabs  map[string][][]string
	calls int
}

func New() *Exporter {
	return &Exporter{tabs: make(map[string][][]string)}
}

// ExportLedger replaces tab with the ledger rows.
func (e *Exporter) ExportLedger(_ context.Context, tab string, txs []core.Transaction) error {
	tab = strings.TrimSpace(tab)
	if tab == "" {
		return fmt.Errorf("empty tab name")
	}
	rows := sheets.Rows(txs)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tabs[tab] = rows
	e.calls++
	return nil
}

// Tab returns a copy of the rows stored under tab, header included.
func (e *Exporter) Tab(tab string) ([][]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, ok := e.tabs[tab]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, true
}

// Tabs lists tab names in sorted order.
func (e *Exporter) Tabs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.tabs))
	for name := range e.tabs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calls returns the number of successful exports.
func (e *Exporter) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
