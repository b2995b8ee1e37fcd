package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(kind Kind, amount string, catID int64, cat string) Transaction {
	return Transaction{
		Kind:         kind,
		Amount:       decimal.RequireFromString(amount),
		CategoryID:   catID,
		CategoryName: cat,
		Date:         NewDate(2024, 3, 1),
	}
}

func TestSumByKindEmpty(t *testing.T) {
	if !SumByKind(nil, Income).IsZero() {
		t.Fatalf("expected zero income for empty input")
	}
	if !Balance(nil).IsZero() {
		t.Fatalf("expected zero balance for empty input")
	}
}

func TestBalance(t *testing.T) {
	txs := []Transaction{
		tx(Income, "100", 7, "Salary"),
		tx(Expense, "30", 1, "Food"),
		tx(Expense, "20", 2, "Transport"),
	}
	if got := Balance(txs); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance = %s, want 50", got)
	}
	if got := SumByKind(txs, Expense); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expense = %s, want 50", got)
	}
	totals := TotalsOf(txs)
	if !totals.Income.Equal(decimal.NewFromInt(100)) || !totals.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestBalanceIsExact(t *testing.T) {
	txs := []Transaction{
		tx(Income, "0.1", 1, "Salary"),
		tx(Income, "0.2", 1, "Salary"),
	}
	if got := SumByKind(txs, Income); got.String() != "0.3" {
		t.Fatalf("sum = %s, want 0.3", got)
	}
}

func TestSumByCategory(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "10", 2, "Transport"),
		tx(Expense, "5.5", 1, "Food"),
		tx(Expense, "4.5", 1, "Food"),
		tx(Income, "1000", 7, "Salary"),
	}
	got := SumByCategory(txs, Expense)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Food" || !got[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected first group %+v", got[0])
	}
	if got[1].Name != "Transport" {
		t.Fatalf("unexpected second group %+v", got[1])
	}
	if len(SumByCategory(txs[:3], Income)) != 0 {
		t.Fatalf("income groups should be empty")
	}
}

func TestMonthRange(t *testing.T) {
	r := MonthRange{Year: 2024, Month: 12}
	if r.Start().String() != "2024-12-01" || r.End().String() != "2025-01-01" {
		t.Fatalf("unexpected bounds %s..%s", r.Start(), r.End())
	}
	if r.Last().String() != "2024-12-31" {
		t.Fatalf("last = %s", r.Last())
	}
	if got := (MonthRange{Year: 2024, Month: 2}).Last().String(); got != "2024-02-29" {
		t.Fatalf("february last = %s", got)
	}
	if got := (MonthRange{Year: 9999, Month: 12}).Last().String(); got != "9999-12-31" {
		t.Fatalf("last month of 9999 = %s", got)
	}
	if !r.Contains(NewDate(2024, 12, 31)) || r.Contains(NewDate(2025, 1, 1)) {
		t.Fatalf("contains mismatch")
	}
	if r.Label() != "December 2024" {
		t.Fatalf("label = %s", r.Label())
	}
	if err := (MonthRange{Year: 2024, Month: 13}).Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error for month 13")
	}
	if got := RangeOf(NewDate(2024, 3, 9)); got != (MonthRange{Year: 2024, Month: 3}) {
		t.Fatalf("RangeOf = %+v", got)
	}
}
