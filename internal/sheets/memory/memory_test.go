package memory

import (
	"context"
	"testing"

	"budgetbook/internal/core"
)

func sample(desc string) core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2026, 1, 15),
		Amount:      core.Money{Cents: 1200},
		Type:        core.Expense,
		Category:    "Transport",
		Description: desc,
	}
}

func TestAppendAndRow(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref1, err := s.Append(ctx, sample("first"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	ref2, err := s.Append(ctx, sample("second"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref1 == ref2 {
		t.Fatalf("references must be unique, both %q", ref1)
	}

	got, ok := s.Row(ref2)
	if !ok {
		t.Fatalf("row %q missing", ref2)
	}
	if got.Description != "second" {
		t.Errorf("description = %q, want second", got.Description)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()

	bad := sample("")
	bad.Amount.Cents = 0
	if _, err := s.Append(context.Background(), bad); err == nil {
		t.Fatal("invalid transaction should not be appended")
	}
	if s.Len() != 0 {
		t.Errorf("len = %d after rejected append", s.Len())
	}
}

func TestClear(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, sample("to clear"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Clear(ctx, ref); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Row(ref); ok {
		t.Error("row should be gone after clear")
	}

	// Clearing a missing reference behaves like blanking an empty row.
	if err := s.Clear(ctx, "mem:999"); err != nil {
		t.Errorf("clear unknown ref: %v", err)
	}
}
