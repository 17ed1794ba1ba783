package http

import (
	"fmt"
	"net/http"
	"time"

	"budgetbook/internal/core"
)

type budgetPayload struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
}

type budgetLineResponse struct {
	Category  string `json:"category"`
	Budget    string `json:"budget"`
	Spent     string `json:"spent"`
	Remaining string `json:"remaining"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	amount, err := core.ParseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount: "+err.Error())
		return
	}

	b := core.Budget{
		Category: payload.Category,
		Amount:   amount,
		Month:    payload.Month,
		Year:     payload.Year,
	}
	if err := s.ledger.SetBudget(r.Context(), b); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetsForMonth returns one line per spending category for the
// requested month, defaulting to the current one.
func (s *Server) handleBudgetsForMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	key := fmt.Sprintf("%d-%02d", year, month)
	lines, ok := s.budgetCache.Get(key)
	if !ok {
		lines, err = s.ledger.BudgetsForMonth(r.Context(), month, year)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.budgetCache.Set(key, lines)
	}

	out := make([]budgetLineResponse, 0, len(lines))
	for _, l := range lines {
		remaining := core.Money{Cents: l.Budget.Cents - l.Spent.Cents}
		out = append(out, budgetLineResponse{
			Category:  l.Category,
			Budget:    l.Budget.String(),
			Spent:     l.Spent.String(),
			Remaining: remaining.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
