package core

import "time"

// Summary is the all-time income/expense rollup. Balance is always
// TotalIncome - TotalExpense; an empty ledger yields all zeros.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
}

// CategorySpend is an expense total aggregated by category name.
type CategorySpend struct {
	Category string
	Total    Money
}

// MonthlyFlow is the income/expense total for one calendar month.
type MonthlyFlow struct {
	Year    int
	Month   int // 1-12
	Income  Money
	Expense Money
}

// BudgetLine pairs a spending category's budget with its actual spending
// for one month. Categories without a budget or spending carry zeros.
type BudgetLine struct {
	Category string
	Budget   Money
	Spent    Money
}

// TrendMonths is the length of the monthly trend series.
const TrendMonths = 12

// ZeroFillTrend expands a sparse month series into a continuous
// TrendMonths-point series ending at the month of now. The store only
// reports months that have transactions; callers fill the gaps with zero
// flows before rendering.
func ZeroFillTrend(flows []MonthlyFlow, now time.Time) []MonthlyFlow {
	byMonth := make(map[[2]int]MonthlyFlow, len(flows))
	for _, f := range flows {
		byMonth[[2]int{f.Year, f.Month}] = f
	}

	out := make([]MonthlyFlow, 0, TrendMonths)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(TrendMonths - 1), 0)
	for i := 0; i < TrendMonths; i++ {
		m := start.AddDate(0, i, 0)
		key := [2]int{m.Year(), int(m.Month())}
		if f, ok := byMonth[key]; ok {
			out = append(out, f)
			continue
		}
		out = append(out, MonthlyFlow{Year: m.Year(), Month: int(m.Month())})
	}
	return out
}
