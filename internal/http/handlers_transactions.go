package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err, log.OpList, "Failed to fetch transactions")
		return
	}
	s.writeTransactions(w, r, filter)
}

func (s *Server) handleTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	c, err := core.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.fail(w, r, core.NewFieldError("category", err), log.OpList, "Failed to fetch transactions by category")
		return
	}
	s.writeTransactions(w, r, services.TransactionFilter{Category: c})
}

func (s *Server) writeTransactions(w http.ResponseWriter, r *http.Request, f services.TransactionFilter) {
	txs, err := s.ledger.ListTransactions(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, log.OpList, "Failed to fetch transactions")
		return
	}
	OK(nonNil(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to fetch transaction")
		return
	}
	OK(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.NewTransaction
	if bad := decodeJSON(w, r, &in); bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, log.OpCreate, "Failed to create transaction")
		return
	}
	s.transactionsRecorded.Add(1)
	s.slogger.TransactionRecorded(r.Context(), log.OpCreate, t.ID, t.Amount.String(), string(t.Category), string(t.Type))
	Created(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var p core.TransactionPatch
	if bad := decodeJSON(w, r, &p); bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.ledger.UpdateTransaction(r.Context(), id, p)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate, "Failed to update transaction")
		return
	}
	s.slogger.TransactionRecorded(r.Context(), log.OpUpdate, t.ID, t.Amount.String(), string(t.Category), string(t.Type))
	OK(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	if _, err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		s.fail(w, r, err, log.OpDelete, "Failed to delete transaction")
		return
	}
	logDeleted(r, "transaction", id)
	NoContent().Write(w)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
