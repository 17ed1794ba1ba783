package http

import (
	"net/http"

	"budgetbook/internal/core"
)

type goalPayload struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

type goalResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Target  string `json:"target"`
	Current string `json:"current"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	return goalResponse{
		ID:      g.ID,
		Name:    g.Name,
		Target:  g.Target.String(),
		Current: g.Current.String(),
	}
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var payload goalPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	target, err := core.ParseAmount(payload.Target)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "target: "+err.Error())
		return
	}

	g := core.SavingsGoal{Name: payload.Name, Target: target}
	id, err := s.ledger.AddSavingsGoal(r.Context(), g)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	g.ID = id
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.ListSavingsGoals(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	g, err := s.ledger.GetSavingsGoal(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(*g))
}

type contributionPayload struct {
	Amount string `json:"amount"`
}

type contributionResponse struct {
	TransactionID int64        `json:"transaction_id"`
	Goal          goalResponse `json:"goal"`
}

// handleContribute books a contribution against the goal: one savings
// expense plus the goal increment, atomically.
func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var payload contributionPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	amount, err := core.ParseAmount(payload.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount: "+err.Error())
		return
	}

	txID, err := s.ledger.ContributeToGoal(r.Context(), id, amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()

	g, err := s.ledger.GetSavingsGoal(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contributionResponse{
		TransactionID: txID,
		Goal:          toGoalResponse(*g),
	})
}
