package core

import (
	"testing"
	"time"
)

func TestZeroFillTrendEmpty(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	out := ZeroFillTrend(nil, now)
	if len(out) != TrendMonths {
		t.Fatalf("expected %d entries, got %d", TrendMonths, len(out))
	}
	if out[0].Year != 2023 || out[0].Month != 7 {
		t.Fatalf("expected series to start at 2023-07, got %d-%02d", out[0].Year, out[0].Month)
	}
	last := out[len(out)-1]
	if last.Year != 2024 || last.Month != 6 {
		t.Fatalf("expected series to end at 2024-06, got %d-%02d", last.Year, last.Month)
	}
	for i, f := range out {
		if f.Income.Cents != 0 || f.Expense.Cents != 0 {
			t.Fatalf("entry %d not zeroed: %+v", i, f)
		}
	}
}

func TestZeroFillTrendKeepsActivity(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	flows := []MonthlyFlow{
		{Year: 2024, Month: 1, Income: Money{Cents: 100000}, Expense: Money{Cents: 25000}},
		{Year: 2024, Month: 6, Expense: Money{Cents: 500}},
	}
	out := ZeroFillTrend(flows, now)
	if len(out) != TrendMonths {
		t.Fatalf("expected %d entries, got %d", TrendMonths, len(out))
	}

	var jan, jun MonthlyFlow
	for _, f := range out {
		if f.Year == 2024 && f.Month == 1 {
			jan = f
		}
		if f.Year == 2024 && f.Month == 6 {
			jun = f
		}
	}
	if jan.Income.Cents != 100000 || jan.Expense.Cents != 25000 {
		t.Fatalf("january flow lost: %+v", jan)
	}
	if jun.Expense.Cents != 500 {
		t.Fatalf("june flow lost: %+v", jun)
	}

	// Months spanning a year boundary stay in calendar order.
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Month != prev.Month+1) {
			if !(cur.Year == prev.Year+1 && prev.Month == 12 && cur.Month == 1) {
				t.Fatalf("series out of order at %d: %+v -> %+v", i, prev, cur)
			}
		}
	}
}
