package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetbook/internal/core"
)

// Export status values tracked per transaction.
const (
	ExportPending  = "pending"
	ExportExported = "exported"
	ExportError    = "error"
)

// ExportRow is a transaction together with its spreadsheet bookkeeping.
type ExportRow struct {
	Transaction core.Transaction
	Status      string
	Ref         string // spreadsheet row reference, empty until first export
}

// GetExportRow loads a transaction with its export status and reference.
func (s *Store) GetExportRow(ctx context.Context, id int64) (*ExportRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.transaction_date, t.amount_cents, t.type, c.name, t.description,
		       t.export_status, t.export_ref
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.id = ?`, id)

	var r ExportRow
	var date, txType string
	err := row.Scan(&r.Transaction.ID, &date, &r.Transaction.Amount.Cents, &txType,
		&r.Transaction.Category, &r.Transaction.Description, &r.Status, &r.Ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get export row %d: %w", id, err)
	}
	d, err := parseStoredDate(date)
	if err != nil {
		return nil, err
	}
	r.Transaction.Date = d
	r.Transaction.Type = core.TransactionType(txType)
	return &r, nil
}

// PendingExport returns ids of transactions still waiting for export,
// oldest first. Used by the worker's periodic sweep to recover rows whose
// queue messages were lost.
func (s *Store) PendingExport(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM transactions
		WHERE export_status = ?
		ORDER BY id ASC
		LIMIT ?`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pending export: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkExported records a successful export and its row reference.
func (s *Store) MarkExported(ctx context.Context, id int64, ref string) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET export_status = ?, export_ref = ? WHERE id = ?`,
		ExportExported, ref, id); err != nil {
		return fmt.Errorf("mark exported %d: %w", id, err)
	}
	return nil
}

// MarkExportError flags a transaction whose export failed.
func (s *Store) MarkExportError(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET export_status = ? WHERE id = ?`,
		ExportError, id); err != nil {
		return fmt.Errorf("mark export error %d: %w", id, err)
	}
	return nil
}
