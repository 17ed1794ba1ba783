package http

import (
	"fmt"
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// transactionPayload is the write-side body. The amount is a decimal
// string ("12.34"); dates are YYYY-MM-DD and default to today on create.
type transactionPayload struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Date:        t.Date.String(),
		Amount:      t.Amount.String(),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
	}
}

func toTransactionResponses(ts []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

// toTransaction validates and converts the payload. Field errors come back
// as 422s via writeDomainError.
func (p transactionPayload) toTransaction() (core.Transaction, error) {
	var t core.Transaction

	if p.Date != "" {
		d, err := core.ParseDate(p.Date)
		if err != nil {
			return t, fmt.Errorf("date: %w", err)
		}
		t.Date = d
	}

	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return t, fmt.Errorf("amount: %w", err)
	}
	t.Amount = amount
	t.Type = core.TransactionType(p.Type)
	t.Category = p.Category
	t.Description = p.Description
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	t, err := payload.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.RecordTransaction(r.Context(), t)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()

	t.ID = id
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(w, http.StatusUnprocessableEntity, "limit must be between 1 and 500")
		return
	}

	transactions, err := s.ledger.ListRecent(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(transactions))
}

func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		Description: q.Get("description"),
		Category:    q.Get("category"),
	}

	if raw := q.Get("type"); raw != "" {
		t := core.TransactionType(raw)
		if !t.IsValid() {
			writeError(w, http.StatusUnprocessableEntity, "type must be 'income' or 'expense'")
			return
		}
		filter.Type = t
	}
	if raw := q.Get("from"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "from: "+err.Error())
			return
		}
		filter.From = d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "to: "+err.Error())
			return
		}
		filter.To = d
	}

	transactions, err := s.ledger.SearchTransactions(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(transactions))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(*t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var payload transactionPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	t, err := payload.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if t.Date.IsZero() {
		writeError(w, http.StatusUnprocessableEntity, "date is required on update")
		return
	}
	t.ID = id

	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
