// Package services orchestrates ledger operations across storage and the
// export queue. Writes always land in the database first; queue publishes
// are best-effort and never fail the request.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// Publisher is the queue surface the service needs. *amqp.Client
// implements it; tests substitute a recorder.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
	PublishTransactionDelete(ctx context.Context, id int64, exportRef string) error
}

type LedgerService struct {
	store     *storage.Store
	publisher Publisher
}

func NewLedgerService(store *storage.Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// RecordTransaction persists the transaction and schedules its export.
func (s *LedgerService) RecordTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.store.RecordTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("record transaction: %w", err)
	}
	s.publishSync(ctx, id)
	return id, nil
}

// UpdateTransaction rewrites a transaction and schedules a re-export that
// replaces the previously exported row.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publishSync(ctx, t.ID)
	return nil
}

// DeleteTransaction removes a transaction. Its spreadsheet reference is
// read before the delete so the worker can clear the exported row.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	var exportRef string
	if row, err := s.store.GetExportRow(ctx, id); err == nil {
		exportRef = row.Ref
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "queue not available, skipping delete message", "id", id)
		return nil
	}
	if err := s.publisher.PublishTransactionDelete(ctx, id, exportRef); err != nil {
		slog.ErrorContext(ctx, "failed to publish delete message",
			"id", id, "error", err)
	}
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *LedgerService) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.store.ListRecent(ctx, limit)
}

func (s *LedgerService) SearchTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.Search(ctx, f)
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) Summary(ctx context.Context) (core.Summary, error) {
	return s.store.Summary(ctx)
}

func (s *LedgerService) SpendingByCategory(ctx context.Context) ([]core.CategorySpend, error) {
	return s.store.SpendingByCategory(ctx)
}

// MonthlyTrend returns the last twelve months ending at now, zero-filled
// so months without activity appear explicitly.
func (s *LedgerService) MonthlyTrend(ctx context.Context, now time.Time) ([]core.MonthlyFlow, error) {
	// Step back from the first of the current month, not from now itself:
	// AddDate on a day-31 date normalizes into the following month and
	// would push the cutoff one month late.
	since := core.NewDate(now.Year(), int(now.Month())-(core.TrendMonths-1), 1)
	flows, err := s.store.MonthlyTrend(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	return core.ZeroFillTrend(flows, now), nil
}

func (s *LedgerService) SetBudget(ctx context.Context, b core.Budget) error {
	return s.store.SetBudget(ctx, b)
}

func (s *LedgerService) BudgetsForMonth(ctx context.Context, month, year int) ([]core.BudgetLine, error) {
	return s.store.BudgetsForMonth(ctx, month, year)
}

func (s *LedgerService) AddSavingsGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	return s.store.AddSavingsGoal(ctx, g)
}

func (s *LedgerService) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	return s.store.ListSavingsGoals(ctx)
}

func (s *LedgerService) GetSavingsGoal(ctx context.Context, id int64) (*core.SavingsGoal, error) {
	return s.store.GetSavingsGoal(ctx, id)
}

// ContributeToGoal books a goal contribution and schedules export of the
// generated transaction.
func (s *LedgerService) ContributeToGoal(ctx context.Context, goalID int64, amount core.Money) (int64, error) {
	txID, err := s.store.ContributeToGoal(ctx, goalID, amount)
	if err != nil {
		return 0, fmt.Errorf("contribute to goal: %w", err)
	}
	s.publishSync(ctx, txID)
	return txID, nil
}

func (s *LedgerService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "queue not available, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish sync message",
			"id", id, "error", err)
	}
}
