package storage

import (
	"context"
	"fmt"

	"budgetbook/internal/core"
)

// Summary sums all transactions partitioned by type. An empty ledger
// yields zeros, never an error.
func (s *Store) Summary(ctx context.Context) (core.Summary, error) {
	var sum core.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions`).
		Scan(&sum.TotalIncome.Cents, &sum.TotalExpense.Cents)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary: %w", err)
	}
	sum.Balance.Cents = sum.TotalIncome.Cents - sum.TotalExpense.Cents
	return sum, nil
}

// SpendingByCategory rolls up expenses per category, highest total first.
// Only categories with a positive total appear.
func (s *Store) SpendingByCategory(ctx context.Context) ([]core.CategorySpend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, SUM(t.amount_cents) AS total
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.type = 'expense'
		GROUP BY c.name
		HAVING total > 0
		ORDER BY total DESC`)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategorySpend
	for rows.Next() {
		var cs core.CategorySpend
		if err := rows.Scan(&cs.Category, &cs.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category spend: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// MonthlyTrend returns income/expense sums per (year, month) for
// transactions dated on or after since. Months without activity are
// absent; core.ZeroFillTrend produces the continuous series.
func (s *Store) MonthlyTrend(ctx context.Context, since core.Date) ([]core.MonthlyFlow, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.monthlyTrend, since.String())
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyFlow
	for rows.Next() {
		var f core.MonthlyFlow
		if err := rows.Scan(&f.Year, &f.Month, &f.Income.Cents, &f.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly flow: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
