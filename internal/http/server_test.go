package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"budgetbook/internal/services"
	"budgetbook/internal/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.Open(storage.Options{
		Backend:    storage.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s := NewServer(":0", services.NewLedgerService(store, nil))
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return v
}

func createTransaction(t *testing.T, s *Server, payload map[string]any) transactionResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	return decode[transactionResponse](t, rec)
}

func TestHealthEndpoints(t *testing.T) {
	s := testServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rec.Code)
		}
	}
}

func TestCreateTransaction(t *testing.T) {
	s := testServer(t)

	got := createTransaction(t, s, map[string]any{
		"date":        "2026-05-10",
		"amount":      "7.50",
		"type":        "expense",
		"category":    "Transport",
		"description": "bus ticket",
	})
	if got.ID == 0 {
		t.Error("expected non-zero id")
	}
	if got.Amount != "7.50" || got.Category != "Transport" || got.Date != "2026-05-10" {
		t.Errorf("response = %+v", got)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"zero amount", map[string]any{
			"amount": "0", "type": "expense", "category": "Transport",
		}, http.StatusUnprocessableEntity},
		{"bad amount", map[string]any{
			"amount": "abc", "type": "expense", "category": "Transport",
		}, http.StatusUnprocessableEntity},
		{"bad type", map[string]any{
			"amount": "5.00", "type": "refund", "category": "Transport",
		}, http.StatusUnprocessableEntity},
		{"unknown category", map[string]any{
			"amount": "5.00", "type": "expense", "category": "Rocketry",
		}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{
			"date": "05/10/2026", "amount": "5.00", "type": "expense", "category": "Transport",
		}, http.StatusUnprocessableEntity},
		{"unknown field", map[string]any{
			"amount": "5.00", "type": "expense", "category": "Transport", "color": "red",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.payload)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestListAndGetTransactions(t *testing.T) {
	s := testServer(t)

	first := createTransaction(t, s, map[string]any{
		"date": "2026-05-01", "amount": "3.00", "type": "expense", "category": "Transport",
	})
	second := createTransaction(t, s, map[string]any{
		"date": "2026-05-02", "amount": "4.00", "type": "expense", "category": "Transport",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	list := decode[[]transactionResponse](t, rec)
	if len(list) != 2 {
		t.Fatalf("list has %d entries, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list order = %d, %d; want most recent first", list[0].ID, list[1].ID)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/%d", first.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}
	got := decode[transactionResponse](t, rec)
	if got.ID != first.ID || got.Amount != "3.00" {
		t.Errorf("get = %+v", got)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing transaction returned %d, want 404", rec.Code)
	}
}

func TestSearchTransactions(t *testing.T) {
	s := testServer(t)

	createTransaction(t, s, map[string]any{
		"date": "2026-05-01", "amount": "3.00", "type": "expense",
		"category": "Canteen/Food", "description": "school lunch",
	})
	createTransaction(t, s, map[string]any{
		"date": "2026-05-02", "amount": "50.00", "type": "income",
		"category": "Parental Allowance", "description": "may allowance",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/transactions/search?description=lunch", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search returned %d", rec.Code)
	}
	results := decode[[]transactionResponse](t, rec)
	if len(results) != 1 || results[0].Description != "school lunch" {
		t.Errorf("results = %+v", results)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/search?type=refund", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type returned %d, want 422", rec.Code)
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := testServer(t)

	created := createTransaction(t, s, map[string]any{
		"date": "2026-05-01", "amount": "3.00", "type": "expense", "category": "Transport",
	})

	rec := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/transactions/%d", created.ID), map[string]any{
		"date": "2026-05-03", "amount": "4.50", "type": "expense",
		"category": "Gifts", "description": "present",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[transactionResponse](t, rec)
	if got.Category != "Gifts" || got.Amount != "4.50" {
		t.Errorf("update response = %+v", got)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/transactions/9999", map[string]any{
		"date": "2026-05-03", "amount": "4.50", "type": "expense", "category": "Gifts",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing update returned %d, want 404", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := testServer(t)

	created := createTransaction(t, s, map[string]any{
		"date": "2026-05-01", "amount": "3.00", "type": "expense", "category": "Transport",
	})

	rec := doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete returned %d, want 404", rec.Code)
	}
}

func TestSummaryReflectsWrites(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary returned %d", rec.Code)
	}
	empty := decode[summaryResponse](t, rec)
	if empty.Balance != "0.00" {
		t.Errorf("empty balance = %s, want 0.00", empty.Balance)
	}

	createTransaction(t, s, map[string]any{
		"amount": "100.00", "type": "income", "category": "Parental Allowance",
	})
	createTransaction(t, s, map[string]any{
		"amount": "30.00", "type": "expense", "category": "Clothing",
	})

	// The write must have invalidated the cached summary.
	rec = doJSON(t, s, http.MethodGet, "/api/summary", nil)
	got := decode[summaryResponse](t, rec)
	if got.TotalIncome != "100.00" || got.TotalExpense != "30.00" || got.Balance != "70.00" {
		t.Errorf("summary = %+v", got)
	}
}

func TestSpendingReport(t *testing.T) {
	s := testServer(t)

	createTransaction(t, s, map[string]any{
		"amount": "10.00", "type": "expense", "category": "Transport",
	})
	createTransaction(t, s, map[string]any{
		"amount": "25.00", "type": "expense", "category": "Entertainment",
	})

	rec := doJSON(t, s, http.MethodGet, "/api/reports/spending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("spending returned %d", rec.Code)
	}
	got := decode[[]categorySpendResponse](t, rec)
	if len(got) != 2 {
		t.Fatalf("spending has %d entries, want 2", len(got))
	}
	if got[0].Category != "Entertainment" || got[0].Total != "25.00" {
		t.Errorf("highest spend = %+v, want Entertainment 25.00", got[0])
	}
}

func TestTrendReport(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/reports/trend", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trend returned %d", rec.Code)
	}
	got := decode[[]monthlyFlowResponse](t, rec)
	if len(got) != 12 {
		t.Errorf("trend has %d months, want 12", len(got))
	}
	for _, f := range got {
		if f.Income != "0.00" || f.Expense != "0.00" {
			t.Errorf("empty ledger month %d-%d = %+v, want zeros", f.Year, f.Month, f)
		}
	}
}

func TestBudgets(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
		"category": "Transport", "amount": "50.00", "month": 6, "year": 2026,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("set budget returned %d: %s", rec.Code, rec.Body.String())
	}

	createTransaction(t, s, map[string]any{
		"date": "2026-06-10", "amount": "12.00", "type": "expense", "category": "Transport",
	})

	rec = doJSON(t, s, http.MethodGet, "/api/budgets?month=6&year=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("budgets returned %d", rec.Code)
	}
	lines := decode[[]budgetLineResponse](t, rec)

	var transport *budgetLineResponse
	for i := range lines {
		if lines[i].Category == "Transport" {
			transport = &lines[i]
		}
		if lines[i].Category == "Savings" || lines[i].Category == "Parental Allowance" {
			t.Errorf("%s must not appear in the budget view", lines[i].Category)
		}
	}
	if transport == nil {
		t.Fatal("Transport missing from budget view")
	}
	if transport.Budget != "50.00" || transport.Spent != "12.00" || transport.Remaining != "38.00" {
		t.Errorf("transport line = %+v", transport)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/budgets?month=13&year=2026", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("month 13 returned %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
		"category": "Nope", "amount": "50.00", "month": 6, "year": 2026,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown category returned %d, want 422", rec.Code)
	}
}

func TestGoals(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/goals", map[string]any{
		"name": "New Phone", "target": "300.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal returned %d: %s", rec.Code, rec.Body.String())
	}
	goal := decode[goalResponse](t, rec)
	if goal.Target != "300.00" || goal.Current != "0.00" {
		t.Errorf("goal = %+v", goal)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/goals/%d/contributions", goal.ID), map[string]any{
		"amount": "45.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute returned %d: %s", rec.Code, rec.Body.String())
	}
	contrib := decode[contributionResponse](t, rec)
	if contrib.Goal.Current != "45.00" {
		t.Errorf("goal current = %s, want 45.00", contrib.Goal.Current)
	}
	if contrib.TransactionID == 0 {
		t.Error("expected a contribution transaction id")
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/%d", contrib.TransactionID), nil)
	tx := decode[transactionResponse](t, rec)
	if tx.Category != "Savings" || tx.Type != "expense" {
		t.Errorf("contribution transaction = %+v", tx)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/goals/9999/contributions", map[string]any{
		"amount": "1.00",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing goal returned %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/goals", nil)
	goals := decode[[]goalResponse](t, rec)
	if len(goals) != 1 || goals[0].Current != "45.00" {
		t.Errorf("goals = %+v", goals)
	}
}

func TestListCategories(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories returned %d", rec.Code)
	}
	cats := decode[[]categoryResponse](t, rec)
	if len(cats) == 0 {
		t.Fatal("no categories returned")
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Fatalf("categories not sorted: %s before %s", cats[i-1].Name, cats[i].Name)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := testServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/summary", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
