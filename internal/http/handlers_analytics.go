package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/insights"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to fetch analytics")
		return
	}
	OK(s.analytics.Summary(snap.Transactions, snap.Budgets)).Write(w)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context(), services.TransactionFilter{})
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to fetch spending trends")
		return
	}
	OK(s.analytics.WeeklyTrend(txs)).Write(w)
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpRead, "Failed to compute financial health")
		return
	}
	OK(s.analytics.Health(snap.Transactions, snap.Budgets)).Write(w)
}

// AI

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type quickTipResponse struct {
	Tip string `json:"tip"`
}

// generated serves op from the AI cache for the current month and ledger
// version and collapses concurrent misses into one generation.
func (s *Server) generated(ctx context.Context, op string, fn func(ctx context.Context, snap core.Snapshot) any) (any, error) {
	key := fmt.Sprintf("%s:%s:v%d", op, s.analytics.Month(), s.ledger.Version())
	if v, ok := s.aiCache.Get(key); ok {
		return v, nil
	}
	v, err, _ := s.flight.Do(key, func() (any, error) {
		if v, ok := s.aiCache.Get(key); ok {
			return v, nil
		}
		// The generation outlives any single waiter.
		genCtx := context.WithoutCancel(ctx)
		snap, err := s.ledger.Export(genCtx)
		if err != nil {
			return nil, err
		}
		out := fn(genCtx, snap)
		s.aiGenerations.Add(1)
		s.aiCache.Set(key, out)
		return out, nil
	})
	return v, err
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	v, err := s.generated(r.Context(), "insights", func(ctx context.Context, snap core.Snapshot) any {
		return s.insights.GenerateInsights(ctx, snap.Transactions, snap.Budgets)
	})
	if err != nil {
		s.fail(w, r, err, log.OpGenerate, "Failed to generate AI insights")
		return
	}
	OK(v).Write(w)
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	v, err := s.generated(r.Context(), "tips", func(ctx context.Context, snap core.Snapshot) any {
		return s.insights.ComprehensiveTips(ctx, dataOf(snap))
	})
	if err != nil {
		s.fail(w, r, err, log.OpGenerate, "Failed to generate financial tips")
		return
	}
	OK(v).Write(w)
}

func (s *Server) handleQuickTip(w http.ResponseWriter, r *http.Request) {
	v, err := s.generated(r.Context(), "quick-tip", func(ctx context.Context, snap core.Snapshot) any {
		return quickTipResponse{Tip: s.insights.QuickTip(ctx, dataOf(snap))}
	})
	if err != nil {
		s.fail(w, r, err, log.OpGenerate, "Failed to generate quick tip")
		return
	}
	OK(v).Write(w)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if bad := decodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	message := sanitizeInput(req.Message)
	switch {
	case message == "":
		ValidationFailed(core.NewFieldError("message", errMessageRequired)).Write(w)
		return
	case utf8.RuneCountInString(message) > maxChatMessageLength:
		ValidationFailed(core.NewFieldError("message", errMessageTooLong)).Write(w)
		return
	}

	snap, err := s.ledger.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, log.OpGenerate, "Failed to process AI chat")
		return
	}
	s.aiGenerations.Add(1)
	OK(chatResponse{Response: s.insights.Chat(r.Context(), message, snap.Transactions, snap.Budgets)}).Write(w)
}

var (
	errMessageRequired = errors.New("message is required")
	errMessageTooLong  = fmt.Errorf("message is too long (max %d characters)", maxChatMessageLength)
)

func dataOf(snap core.Snapshot) insights.Data {
	return insights.Data{
		Transactions: snap.Transactions,
		Budgets:      snap.Budgets,
		Assets:       snap.Assets,
		Settings:     snap.Settings,
	}
}
