package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"budgetbook/internal/core"
)

// TransactionFilter holds the optional, conjunctive search criteria.
// Zero values mean "no filter". Date bounds are inclusive.
type TransactionFilter struct {
	Description string // substring match anywhere in the description
	Category    string // exact category name
	Type        core.TransactionType
	From        core.Date
	To          core.Date
}

const transactionColumns = `t.id, t.transaction_date, t.amount_cents, t.type, c.name, t.description`

// RecordTransaction resolves the category and inserts the transaction,
// returning the generated id. An unresolved category fails before any
// write. A zero date defaults to today.
func (s *Store) RecordTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	categoryID, err := s.ResolveCategoryID(ctx, t.Category)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (transaction_date, amount_cents, type, category_id, description)
		VALUES (?, ?, ?, ?, ?)`,
		t.Date.String(), t.Amount.Cents, string(t.Type), categoryID, t.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit transactions joined with their category
// name, most recent first (date descending, id descending on ties).
func (s *Store) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		ORDER BY t.transaction_date DESC, t.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// Search applies the filter's present criteria conjunctively. No criteria
// returns the full set in the same most-recent-first order as ListRecent.
func (s *Store) Search(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN categories c ON t.category_id = c.id`

	var conds []string
	var args []any
	if f.Description != "" {
		conds = append(conds, "t.description LIKE ?")
		args = append(args, "%"+f.Description+"%")
	}
	if f.Category != "" {
		conds = append(conds, "c.name = ?")
		args = append(args, f.Category)
	}
	if f.Type != "" {
		conds = append(conds, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		conds = append(conds, "t.transaction_date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		conds = append(conds, "t.transaction_date <= ?")
		args = append(args, f.To.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.transaction_date DESC, t.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// GetTransaction fetches a single transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.id = ?`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// UpdateTransaction rewrites every field of an existing transaction,
// re-resolving the category by name. Updating a missing id returns
// core.ErrNotFound. The row is marked pending again so the exporter
// replaces the previously exported copy.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	categoryID, err := s.ResolveCategoryID(ctx, t.Category)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET transaction_date = ?, amount_cents = ?, type = ?, category_id = ?, description = ?,
		    export_status = 'pending'
		WHERE id = ?`,
		t.Date.String(), t.Amount.Cents, string(t.Type), categoryID, t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteTransaction physically removes a transaction. It never cascades:
// deleting a Savings-tagged contribution does not adjust any goal.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(r rowScanner) (*core.Transaction, error) {
	var t core.Transaction
	var date string
	var txType string
	if err := r.Scan(&t.ID, &date, &t.Amount.Cents, &txType, &t.Category, &t.Description); err != nil {
		return nil, err
	}
	d, err := parseStoredDate(date)
	if err != nil {
		return nil, err
	}
	t.Date = d
	t.Type = core.TransactionType(txType)
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// parseStoredDate accepts the YYYY-MM-DD form both backends return,
// tolerating a trailing time component from DATE columns.
func parseStoredDate(s string) (core.Date, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return d, nil
}
