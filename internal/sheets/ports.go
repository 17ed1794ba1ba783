// Package sheets defines the outbound ports for spreadsheet export.
package sheets

import (
	"context"

	"budgetbook/internal/core"
)

type (
	// TransactionAppender writes one transaction as a spreadsheet row and
	// returns a reference to the written row.
	TransactionAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionClearer blanks a previously written row. Clearing instead
	// of deleting keeps every other row reference stable.
	TransactionClearer interface {
		Clear(ctx context.Context, rowRef string) error
	}

	// Exporter is the full surface the export worker needs.
	Exporter interface {
		TransactionAppender
		TransactionClearer
	}
)
