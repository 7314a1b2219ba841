package http

import (
	"net/http"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/currency"
	"budgetbuddy/internal/log"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.ledger.ListAssets(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpList, "Failed to fetch assets")
		return
	}
	OK(nonNil(assets)).Write(w)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	a, err := s.ledger.GetAsset(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to fetch asset")
		return
	}
	OK(a).Write(w)
}

func (s *Server) handleAssetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.AssetSummary(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to summarise assets")
		return
	}
	OK(summary).Write(w)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var in core.NewAsset
	if bad := decodeJSON(w, r, &in); bad != nil {
		bad.Write(w)
		return
	}
	a, err := s.ledger.CreateAsset(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, log.OpCreate, "Failed to create asset")
		return
	}
	Created(a).Write(w)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var p core.AssetPatch
	if bad := decodeJSON(w, r, &p); bad != nil {
		bad.Write(w)
		return
	}
	a, err := s.ledger.UpdateAsset(r.Context(), id, p)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate, "Failed to update asset")
		return
	}
	OK(a).Write(w)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, bad := parseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	if _, err := s.ledger.DeleteAsset(r.Context(), id); err != nil {
		s.fail(w, r, err, log.OpDelete, "Failed to delete asset")
		return
	}
	logDeleted(r, "asset", id)
	NoContent().Write(w)
}

// Settings

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.ledger.GetSettings(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to fetch settings")
		return
	}
	OK(settings).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p core.SettingsPatch
	if bad := decodeJSON(w, r, &p); bad != nil {
		bad.Write(w)
		return
	}
	settings, err := s.ledger.UpdateSettings(r.Context(), p)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate, "Failed to update settings")
		return
	}
	OK(settings).Write(w)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	OK(currency.Supported()).Write(w)
}
