package storage

import (
	"context"
	"fmt"

	"budgetbook/internal/core"
)

// SetBudget inserts or overwrites the budget for (category, month, year).
// The category is resolved by name first; an unknown name writes nothing.
func (s *Store) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	categoryID, err := s.ResolveCategoryID(ctx, b.Category)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.queries.upsertBudget,
		categoryID, b.Amount.Cents, b.Month, b.Year); err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// BudgetsForMonth returns one line per spending category, left-joined
// against the month's budget and expense sums. Categories with neither a
// budget nor spending appear with zeros; income and transfer categories
// never appear.
func (s *Store) BudgetsForMonth(ctx context.Context, month, year int) ([]core.BudgetLine, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	rows, err := s.db.QueryContext(ctx, s.queries.budgetsForMonth,
		month, year, month, year)
	if err != nil {
		return nil, fmt.Errorf("budgets for %d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	var out []core.BudgetLine
	for rows.Next() {
		var l core.BudgetLine
		if err := rows.Scan(&l.Category, &l.Budget.Cents, &l.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
