package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetbook/internal/core"
)

// AddSavingsGoal creates a goal with a zero current amount.
func (s *Store) AddSavingsGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO savings_goals (name, target_cents) VALUES (?, ?)`,
		g.Name, g.Target.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert savings goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListSavingsGoals returns all goals in alphabetical order.
func (s *Store) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents
		FROM savings_goals ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		if err := rows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetSavingsGoal fetches one goal by id.
func (s *Store) GetSavingsGoal(ctx context.Context, id int64) (*core.SavingsGoal, error) {
	var g core.SavingsGoal
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, target_cents, current_cents
		FROM savings_goals WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("savings goal %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get savings goal %d: %w", id, err)
	}
	return &g, nil
}

// ContributeToGoal books a contribution: one expense transaction under the
// Savings category plus the goal increment, committed as a single database
// transaction. Any failure rolls back both writes.
func (s *Store) ContributeToGoal(ctx context.Context, goalID int64, amount core.Money) (int64, error) {
	if err := amount.Validate(); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin contribution: %w", err)
	}
	defer tx.Rollback()

	var goalName string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM savings_goals WHERE id = ?`, goalID).Scan(&goalName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("savings goal %d: %w", goalID, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("load savings goal %d: %w", goalID, err)
	}

	categoryID, err := resolveCategoryIDTx(ctx, tx, core.SavingsCategory)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (transaction_date, amount_cents, type, category_id, description)
		VALUES (?, ?, ?, ?, ?)`,
		core.Today().String(), amount.Cents, string(core.Expense), categoryID,
		core.ContributionDescription(goalName))
	if err != nil {
		return 0, fmt.Errorf("insert contribution transaction: %w", err)
	}
	txID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE savings_goals SET current_cents = current_cents + ? WHERE id = ?`,
		amount.Cents, goalID); err != nil {
		return 0, fmt.Errorf("increment savings goal %d: %w", goalID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit contribution: %w", err)
	}
	return txID, nil
}
