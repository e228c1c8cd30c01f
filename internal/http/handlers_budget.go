package http

import (
	"net/http"

	"kesho/internal/core"
	"kesho/internal/log"
)

type incomeResponse struct {
	Overview core.Overview `json:"overview"`
	// Skipped lists groups whose share stayed unallocated for lack of categories.
	Skipped []core.Group `json:"skipped"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	ov, err := s.service.Overview(r.Context())
	if err != nil {
		s.fail(w, r, "overview", err)
		return
	}
	NewJSONResponse().JSON(ov).Write(w)
}

// handleSetIncome records income and re-runs the 50/30/10/10 allocation.
func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpSetIncome, err)
		return
	}
	result, err := s.service.SetIncome(r.Context(), req.Income)
	if err != nil {
		s.fail(w, r, log.OpSetIncome, err)
		return
	}
	ov, err := s.service.Overview(r.Context())
	if err != nil {
		s.fail(w, r, log.OpSetIncome, err)
		return
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []core.Group{}
	}
	NewJSONResponse().JSON(incomeResponse{Overview: ov, Skipped: skipped}).Write(w)
}

// handleUpdateBudgets edits income and budgets by hand, without allocation.
func (s *Server) handleUpdateBudgets(w http.ResponseWriter, r *http.Request) {
	var req budgetsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpUpdateBudgets, err)
		return
	}
	budgets := make(map[string]core.Money, len(req.Budgets))
	for name, amount := range req.Budgets {
		budgets[sanitizeInput(name)] = amount
	}
	if err := s.service.UpdateBudgets(r.Context(), req.Income, budgets); err != nil {
		s.fail(w, r, log.OpUpdateBudgets, err)
		return
	}
	s.handleGetBudget(w, r)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpAddCategory, err)
		return
	}
	group, err := core.ParseGroup(req.Group)
	if err != nil {
		s.fail(w, r, log.OpAddCategory, err)
		return
	}
	created, err := s.service.AddCategory(r.Context(), sanitizeInput(req.Name), group)
	if err != nil {
		s.fail(w, r, log.OpAddCategory, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/categories/"+pathEscape(created.Name)).
		JSON(created).
		Write(w)
}

// handleUpdateCategory renames and/or re-budgets one category.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	name, err := PathVar(r, "name")
	if err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}
	var req categoryUpdateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}
	if req.Name == nil && req.Budget == nil {
		UnprocessableEntityError("empty_update", "nothing to update: send name and/or budget").Write(w)
		return
	}
	updated, err := s.service.UpdateCategory(r.Context(), name, sanitizePtr(req.Name), req.Budget)
	if err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}
	NewJSONResponse().JSON(updated).Write(w)
}

// handleRemoveCategory deletes a category with all its transactions. The
// response carries what was discarded so a client can show it.
func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	name, err := PathVar(r, "name")
	if err != nil {
		s.fail(w, r, log.OpRemoveCategory, err)
		return
	}
	removed, err := s.service.RemoveCategory(r.Context(), name)
	if err != nil {
		s.fail(w, r, log.OpRemoveCategory, err)
		return
	}
	NewJSONResponse().JSON(removed).Write(w)
}
