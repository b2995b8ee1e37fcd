// Package worker turns ledger events into spreadsheet exports.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// UserExporter exports one user's ledger.
type UserExporter interface {
	ExportUser(ctx context.Context, userID int64) error
}

// ExportWorker handles ledger events delivered over AMQP.
type ExportWorker struct {
	exporter UserExporter
}

func NewExportWorker(exporter UserExporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// HandleLedgerEvent re-exports the owner's whole ledger. Created, updated and
// deleted events are handled alike since the tab is rewritten each time.
// A user deleted since the event was published is acknowledged and skipped.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"action", msg.Action,
		"user_id", msg.UserID,
		"transaction_id", msg.TransactionID)

	if err := w.exporter.ExportUser(ctx, msg.UserID); err != nil {
		if core.IsNotFound(err) {
			slog.WarnContext(ctx, "Skipping event for unknown user", "user_id", msg.UserID)
			return nil
		}
		return fmt.Errorf("export user %d: %w", msg.UserID, err)
	}
	return nil
}
