// Package worker exports ledger transactions to a spreadsheet. Messages
// from the queue drive the normal path; a periodic sweep over pending rows
// recovers from lost messages and worker downtime.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/amqp"
	"budgetbook/internal/sheets"
	"budgetbook/internal/storage"
)

type ExportWorker struct {
	store     *storage.Store
	exporter  sheets.Exporter
	batchSize int
}

func NewExportWorker(store *storage.Store, exporter sheets.Exporter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches one queue message.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	switch msg.Action {
	case amqp.ActionSync:
		return w.HandleSync(ctx, msg.ID)
	case amqp.ActionDelete:
		return w.HandleDelete(ctx, msg.ID, msg.ExportRef)
	default:
		return fmt.Errorf("unknown export action: %q", msg.Action)
	}
}

// HandleSync exports one transaction. The row is re-read from the database
// so the spreadsheet always receives the latest state, and a previously
// exported copy is cleared before the new row is appended.
func (w *ExportWorker) HandleSync(ctx context.Context, id int64) error {
	row, err := w.store.GetExportRow(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}
	if row.Status == storage.ExportExported {
		slog.InfoContext(ctx, "transaction already exported, skipping", "id", id)
		return nil
	}

	if row.Ref != "" {
		if err := w.exporter.Clear(ctx, row.Ref); err != nil {
			return fmt.Errorf("clear previous row %s: %w", row.Ref, err)
		}
	}

	ref, err := w.exporter.Append(ctx, row.Transaction)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append transaction %d: %w", id, err)
	}

	if err := w.store.MarkExported(ctx, id, ref); err != nil {
		// The spreadsheet write succeeded; the sweep will retry the
		// bookkeeping via re-export, which is idempotent per row.
		slog.ErrorContext(ctx, "failed to mark exported", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "exported transaction", "id", id, "ref", ref)
	return nil
}

// HandleDelete clears the spreadsheet row of a transaction that was
// deleted from the database. An empty reference means the row was never
// exported and there is nothing to clear.
func (w *ExportWorker) HandleDelete(ctx context.Context, id int64, exportRef string) error {
	if exportRef == "" {
		slog.InfoContext(ctx, "deleted transaction was never exported", "id", id)
		return nil
	}
	if err := w.exporter.Clear(ctx, exportRef); err != nil {
		return fmt.Errorf("clear row %s for deleted transaction %d: %w", exportRef, id, err)
	}
	slog.InfoContext(ctx, "cleared exported row", "id", id, "ref", exportRef)
	return nil
}

// ProcessPending exports one batch of rows still marked pending.
// Individual failures are logged and do not stop the batch.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.store.PendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "processing pending exports", "count", len(ids))

	// A small bound keeps concurrent spreadsheet calls within API quota.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range ids {
		g.Go(func() error {
			if err := w.HandleSync(gctx, id); err != nil {
				slog.ErrorContext(gctx, "pending export failed", "id", id, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// StartupCheck drains the pending backlog once at worker start.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	for {
		ids, err := w.store.PendingExport(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("startup check: %w", err)
		}
		if len(ids) == 0 {
			slog.InfoContext(ctx, "no pending exports on startup")
			return nil
		}
		if err := w.ProcessPending(ctx); err != nil {
			return err
		}
		// Rows that failed stay pending or move to error; stop once the
		// batch no longer shrinks to avoid spinning on a broken exporter.
		after, err := w.store.PendingExport(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("startup check: %w", err)
		}
		if len(after) >= len(ids) {
			slog.WarnContext(ctx, "pending exports not draining, deferring to sweep",
				"remaining", len(after))
			return nil
		}
	}
}

// RunSweep periodically retries pending exports until the context is done.
func (w *ExportWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "pending sweep failed", "error", err)
			}
		}
	}
}
