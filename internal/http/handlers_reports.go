package http

import (
	"net/http"
	"time"
)

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)})
	}
	writeJSON(w, http.StatusOK, out)
}

type summaryResponse struct {
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, ok := s.summaryCache.Get("summary")
	if !ok {
		var err error
		sum, err = s.ledger.Summary(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.summaryCache.Set("summary", sum)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:  sum.TotalIncome.String(),
		TotalExpense: sum.TotalExpense.String(),
		Balance:      sum.Balance.String(),
	})
}

type categorySpendResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	spends, ok := s.spendingCache.Get("spending")
	if !ok {
		var err error
		spends, err = s.ledger.SpendingByCategory(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.spendingCache.Set("spending", spends)
	}

	out := make([]categorySpendResponse, 0, len(spends))
	for _, cs := range spends {
		out = append(out, categorySpendResponse{Category: cs.Category, Total: cs.Total.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

type monthlyFlowResponse struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	flows, ok := s.trendCache.Get("trend")
	if !ok {
		var err error
		flows, err = s.ledger.MonthlyTrend(r.Context(), time.Now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.trendCache.Set("trend", flows)
	}

	out := make([]monthlyFlowResponse, 0, len(flows))
	for _, f := range flows {
		out = append(out, monthlyFlowResponse{
			Year:    f.Year,
			Month:   f.Month,
			Income:  f.Income.String(),
			Expense: f.Expense.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
