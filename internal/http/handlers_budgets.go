package http

import (
	"net/http"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.ledger.ListBudgets(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpList, "Failed to fetch budgets")
		return
	}
	OK(nonNil(budgets)).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.ledger.GetBudget(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to fetch budget")
		return
	}
	OK(b).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var in core.NewBudget
	if bad := decodeJSON(w, r, &in); bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.ledger.CreateBudget(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, log.OpCreate, "Failed to create budget")
		return
	}
	Created(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var p core.BudgetPatch
	if bad := decodeJSON(w, r, &p); bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.ledger.UpdateBudget(r.Context(), id, p)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate, "Failed to update budget")
		return
	}
	OK(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	if _, err := s.ledger.DeleteBudget(r.Context(), id); err != nil {
		s.fail(w, r, err, log.OpDelete, "Failed to delete budget")
		return
	}
	logDeleted(r, "budget", id)
	NoContent().Write(w)
}
