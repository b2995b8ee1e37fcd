package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportProcessorConfig holds configuration for the export processor
type ExportProcessorConfig struct {
	// Interval between full exports of every ledger (default: 1h)
	Interval time.Duration
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{Interval: time.Hour}
}

// ExportProcessor mirrors ledgers into a spreadsheet: one user on demand,
// or every user on a timer as a backstop for lost events.
type ExportProcessor struct {
	users    UserStore
	store    TransactionStore
	exporter sheets.LedgerExporter
	config   ExportProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportProcessor(users UserStore, store TransactionStore, exporter sheets.LedgerExporter, config ExportProcessorConfig) *ExportProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultExportProcessorConfig().Interval
	}
	return &ExportProcessor{
		users:    users,
		store:    store,
		exporter: exporter,
		config:   config,
	}
}

// ExportUser writes one user's full ledger to the tab named after them.
func (p *ExportProcessor) ExportUser(ctx context.Context, userID int64) error {
	u, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	txs, err := p.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("load ledger %d: %w", userID, err)
	}
	if err := p.exporter.ExportLedger(ctx, u.Username, txs); err != nil {
		return fmt.Errorf("export ledger %d: %w", userID, err)
	}
	return nil
}

// ExportAll exports every user. Failures are logged and counted; the run
// continues with the next user.
func (p *ExportProcessor) ExportAll(ctx context.Context) (exported, failed int, err error) {
	users, err := p.users.ListUsers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if ctx.Err() != nil {
			return exported, failed, ctx.Err()
		}
		if err := p.ExportUser(ctx, u.ID); err != nil {
			slog.ErrorContext(ctx, "Ledger export failed", "user_id", u.ID, "error", err)
			failed++
			continue
		}
		exported++
	}
	slog.InfoContext(ctx, "Full export finished", "exported", exported, "failed", failed)
	return exported, failed, nil
}

// Start begins the periodic export loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Export processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Export immediately on startup
	p.runOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *ExportProcessor) runOnce(ctx context.Context) {
	if _, _, err := p.ExportAll(ctx); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Full export failed", "error", err)
	}
}
