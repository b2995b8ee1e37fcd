package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// CategoryTotal is an amount aggregated by category name.
	CategoryTotal struct {
		CategoryID int64           `json:"category_id"`
		Name       string          `json:"name"`
		Amount     decimal.Decimal `json:"amount"`
	}

	// MonthRange selects a single calendar month.
	MonthRange struct {
		Year  int
		Month int // 1-12
	}

	// Totals holds income, expense and their difference.
	Totals struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Balance decimal.Decimal `json:"balance"`
	}

	MonthlyReport struct {
		Year         int             `json:"year"`
		Month        int             `json:"month"`
		Transactions []Transaction   `json:"transactions"`
		Totals       Totals          `json:"totals"`
		ByCategory   []CategoryTotal `json:"by_category"`
	}

	LifetimeReport struct {
		Transactions []Transaction   `json:"transactions"`
		Totals       Totals          `json:"totals"`
		ByCategory   []CategoryTotal `json:"by_category"`
	}

	// Dashboard is the landing page summary.
	Dashboard struct {
		Totals       Totals          `json:"totals"`
		Recent       []Transaction   `json:"recent"`
		MonthIncome  decimal.Decimal `json:"month_income"`
		MonthExpense decimal.Decimal `json:"month_expense"`
		Year         int             `json:"year"`
		Month        int             `json:"month"`
	}
)

// RangeOf returns the month containing d.
func RangeOf(d Date) MonthRange {
	return MonthRange{Year: d.Year(), Month: d.Month()}
}

func (r MonthRange) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return &ValidationError{Field: "month", Message: "month must be between 1 and 12"}
	}
	if r.Year < 1 || r.Year > 9999 {
		return &ValidationError{Field: "year", Message: "invalid year"}
	}
	return nil
}

// Start is the first day of the month.
func (r MonthRange) Start() Date {
	return NewDate(r.Year, r.Month, 1)
}

// End is the first day of the following month (exclusive bound).
func (r MonthRange) End() Date {
	return Date{Time: r.Start().AddDate(0, 1, 0)}
}

// Last is the final day of the month. Stored dates compare as strings, so
// range filters use this inclusive bound rather than End.
func (r MonthRange) Last() Date {
	return Date{Time: r.Start().AddDate(0, 1, -1)}
}

func (r MonthRange) Contains(d Date) bool {
	return !d.Before(r.Start().Time) && d.Before(r.End().Time)
}

// Label formats the range as "March 2024".
func (r MonthRange) Label() string {
	return time.Month(r.Month).String() + " " + r.Start().Format("2006")
}

// SumByKind adds the amounts of all transactions of the given kind.
func SumByKind(txs []Transaction, kind Kind) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Kind == kind {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// Balance is total income minus total expense.
func Balance(txs []Transaction) decimal.Decimal {
	return SumByKind(txs, Income).Sub(SumByKind(txs, Expense))
}

func TotalsOf(txs []Transaction) Totals {
	income := SumByKind(txs, Income)
	expense := SumByKind(txs, Expense)
	return Totals{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// SumByCategory groups transactions of one kind by category. Categories
// without matching rows do not appear. The result is sorted by name.
func SumByCategory(txs []Transaction, kind Kind) []CategoryTotal {
	byID := make(map[int64]*CategoryTotal)
	for _, t := range txs {
		if t.Kind != kind {
			continue
		}
		ct, ok := byID[t.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: t.CategoryID, Name: t.CategoryName, Amount: decimal.Zero}
			byID[t.CategoryID] = ct
		}
		ct.Amount = ct.Amount.Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
