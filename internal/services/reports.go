package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"

	"golang.org/x/sync/errgroup"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 10

// ReportService computes aggregates from ledger rows. Nothing is cached.
type ReportService struct {
	store TransactionStore
	now   func() time.Time
}

func NewReportService(store TransactionStore) *ReportService {
	return &ReportService{store: store, now: time.Now}
}

// SumByCategory sums the owner's rows of one kind per category, optionally
// restricted to a month. Categories without rows are omitted.
func (s *ReportService) SumByCategory(ctx context.Context, owner int64, kind core.Kind, rng *core.MonthRange) ([]core.CategoryTotal, error) {
	if !kind.Valid() {
		return nil, &core.ValidationError{Field: "kind", Message: "kind must be Income or Expense"}
	}
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return nil, err
		}
	}
	txs, err := s.store.ListTransactions(ctx, owner, storage.TransactionFilter{Kind: kind, Range: rng})
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	return core.SumByCategory(txs, kind), nil
}

// MonthlyReport lists and aggregates one calendar month. A zero year or month
// defaults to the current one.
func (s *ReportService) MonthlyReport(ctx context.Context, owner int64, year, month int) (core.MonthlyReport, error) {
	today := s.now()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	rng := core.MonthRange{Year: year, Month: month}
	if err := rng.Validate(); err != nil {
		return core.MonthlyReport{}, err
	}

	txs, err := s.store.ListTransactions(ctx, owner, storage.TransactionFilter{Range: &rng})
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("monthly report: %w", err)
	}

	return core.MonthlyReport{
		Year:         year,
		Month:        month,
		Transactions: txs,
		Totals:       core.TotalsOf(txs),
		ByCategory:   core.SumByCategory(txs, core.Expense),
	}, nil
}

// LifetimeReport aggregates the owner's full history.
func (s *ReportService) LifetimeReport(ctx context.Context, owner int64) (core.LifetimeReport, error) {
	txs, err := s.store.ListTransactions(ctx, owner, storage.TransactionFilter{})
	if err != nil {
		return core.LifetimeReport{}, fmt.Errorf("lifetime report: %w", err)
	}
	return core.LifetimeReport{
		Transactions: txs,
		Totals:       core.TotalsOf(txs),
		ByCategory:   core.SumByCategory(txs, core.Expense),
	}, nil
}

// Dashboard loads lifetime totals, recent rows and the current month's totals
// concurrently.
func (s *ReportService) Dashboard(ctx context.Context, owner int64) (core.Dashboard, error) {
	today := core.DateOf(s.now())
	rng := core.RangeOf(today)

	var (
		all, recent, month []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.store.ListTransactions(gctx, owner, storage.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.ListTransactions(gctx, owner, storage.TransactionFilter{Limit: RecentLimit})
		return err
	})
	g.Go(func() error {
		var err error
		month, err = s.store.ListTransactions(gctx, owner, storage.TransactionFilter{Range: &rng})
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	return core.Dashboard{
		Totals:       core.TotalsOf(all),
		Recent:       recent,
		MonthIncome:  core.SumByKind(month, core.Income),
		MonthExpense: core.SumByKind(month, core.Expense),
		Year:         rng.Year,
		Month:        rng.Month,
	}, nil
}
