// Package insights turns ledger data into advisory text through an external
// text generator. Every operation degrades to a local fallback when the
// generator fails; callers never see the external error.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// DefaultTimeout bounds every call to the text generator.
const DefaultTimeout = 20 * time.Second

// ErrUnavailable is returned by generators that are not configured.
var ErrUnavailable = errors.New("text generator not configured")

// Prompt is one request to the text generator.
type Prompt struct {
	System    string
	User      string
	JSON      bool
	MaxTokens int
}

// TextGenerator is the external language-model collaborator.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Unavailable is the generator used when no provider is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Prompt) (string, error) { return "", ErrUnavailable }

// Data is the ledger view the generator reasons over.
type Data struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Assets       []core.Asset
	Settings     core.Settings
}

type Generator struct {
	text    TextGenerator
	agg     *analytics.Aggregator
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Generator.
type Option func(*Generator)

func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithAggregator(a *analytics.Aggregator) Option {
	return func(g *Generator) { g.agg = a }
}

func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l.WithComponent(log.ComponentInsights) }
}

func New(text TextGenerator, opts ...Option) *Generator {
	if text == nil {
		text = Unavailable{}
	}
	g := &Generator{
		text:    text,
		agg:     analytics.New(nil),
		timeout: DefaultTimeout,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) generate(ctx context.Context, op string, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.text.Generate(ctx, p)
	if err != nil {
		g.logFailure(ctx, op, err)
		return "", err
	}
	g.logger.DebugContext(ctx, "Text generated",
		log.FieldOperation, op, log.FieldDuration, time.Since(start).Milliseconds())
	return out, nil
}

func (g *Generator) logFailure(ctx context.Context, op string, err error) {
	g.logger.WarnContext(ctx, "Text generation failed, using fallback",
		log.FieldOperation, op,
		log.FieldErrorType, log.ErrorTypeExternalService,
		log.FieldError, err)
}

// GenerateInsights returns 2-3 insights, or an empty list on any failure.
func (g *Generator) GenerateInsights(ctx context.Context, txs []core.Transaction, budgets []core.Budget) []core.Insight {
	raw, err := g.generate(ctx, "insights", insightsPrompt(g.agg, txs, budgets))
	if err != nil {
		return []core.Insight{}
	}
	insights, err := parseInsights(raw)
	if err != nil {
		g.logFailure(ctx, "insights", err)
		return []core.Insight{}
	}
	return insights
}

// Chat answers a free-text question with the ledger as context.
func (g *Generator) Chat(ctx context.Context, message string, txs []core.Transaction, budgets []core.Budget) string {
	raw, err := g.generate(ctx, "chat", chatPrompt(g.agg, message, txs, budgets))
	if err != nil {
		return ChatFailure
	}
	if reply := strings.TrimSpace(raw); reply != "" {
		return reply
	}
	return ChatEmpty
}

// ComprehensiveTips returns 5-8 categorised tips, or the local fallback set.
func (g *Generator) ComprehensiveTips(ctx context.Context, d Data) []core.Tip {
	raw, err := g.generate(ctx, "tips", tipsPrompt(d))
	if err != nil {
		return FallbackTips(d.Transactions)
	}
	tips, err := parseTips(raw)
	if err != nil {
		g.logFailure(ctx, "tips", err)
		return FallbackTips(d.Transactions)
	}
	return tips
}

// QuickTip returns a single short tip.
func (g *Generator) QuickTip(ctx context.Context, d Data) string {
	raw, err := g.generate(ctx, "quick_tip", quickTipPrompt(d))
	if err != nil {
		return QuickTipFallback
	}
	if tip := strings.TrimSpace(raw); tip != "" {
		return tip
	}
	return QuickTipFallback
}

var (
	insightTypes      = map[string]bool{"alert": true, "tip": true, "achievement": true, "warning": true}
	insightPriorities = map[string]bool{"high": true, "medium": true, "low": true}
)

func parseInsights(raw string) ([]core.Insight, error) {
	var body struct {
		Insights []core.Insight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &body); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	out := make([]core.Insight, 0, len(body.Insights))
	for _, in := range body.Insights {
		in.Type = strings.ToLower(strings.TrimSpace(in.Type))
		in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
		if in.Title == "" || in.Message == "" || !insightTypes[in.Type] {
			continue
		}
		if !insightPriorities[in.Priority] {
			in.Priority = "medium"
		}
		out = append(out, in)
	}
	return out, nil
}

func parseTips(raw string) ([]core.Tip, error) {
	var body struct {
		Tips []core.Tip `json:"tips"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &body); err != nil {
		return nil, fmt.Errorf("decode tips: %w", err)
	}
	out := make([]core.Tip, 0, len(body.Tips))
	for i, t := range body.Tips {
		if t.Title == "" || t.Description == "" {
			continue
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("tip-%d", i+1)
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, errors.New("decode tips: no usable tips")
	}
	return out, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
