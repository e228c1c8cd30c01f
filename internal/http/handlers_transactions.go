package http

import (
	"net/http"

	"kesho/internal/core"
	"kesho/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.State(r.Context())
	if err != nil {
		s.fail(w, r, "list_transactions", err)
		return
	}
	NewJSONResponse().JSON(state.Transactions()).Write(w)
}

// handleAddTransaction records a manual entry. A missing date means today.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpAddTransaction, err)
		return
	}
	date := req.Date
	if date.IsZero() {
		date = core.DateOf(s.clock.Now())
	}
	category := sanitizeInput(req.Category)
	tx, err := s.service.AddTransaction(r.Context(), category, req.Amount, date, sanitizeInput(req.Note))
	if err != nil {
		s.fail(w, r, log.OpAddTransaction, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		JSON(core.TransactionView{Transaction: tx, Category: category}).
		Write(w)
}

// handleEditTransaction replaces a transaction. Omitted category and date
// keep their current values; amount is always required.
func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathVar(r, "id")
	if err != nil {
		s.fail(w, r, log.OpEditTransaction, err)
		return
	}
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpEditTransaction, err)
		return
	}

	upd := core.TransactionUpdate{
		Category: sanitizeInput(req.Category),
		Amount:   req.Amount,
		Date:     req.Date,
		Note:     sanitizeInput(req.Note),
	}
	if upd.Date.IsZero() {
		state, err := s.service.State(r.Context())
		if err != nil {
			s.fail(w, r, log.OpEditTransaction, err)
			return
		}
		if ref, ok := state.FindTransaction(id); ok {
			upd.Date = ref.Transaction.Date
		}
	}

	tx, err := s.service.EditTransaction(r.Context(), id, upd)
	if err != nil {
		s.fail(w, r, log.OpEditTransaction, err)
		return
	}
	state, err := s.service.State(r.Context())
	if err != nil {
		s.fail(w, r, log.OpEditTransaction, err)
		return
	}
	view := core.TransactionView{Transaction: tx}
	if ref, ok := state.FindTransaction(tx.ID); ok {
		view.Category = ref.Category
	}
	NewJSONResponse().JSON(view).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathVar(r, "id")
	if err != nil {
		s.fail(w, r, log.OpDeleteTransaction, err)
		return
	}
	if err := s.service.DeleteTransaction(r.Context(), id); err != nil {
		s.fail(w, r, log.OpDeleteTransaction, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
