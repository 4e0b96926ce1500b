// Package agent orchestrates the three generation operations: curriculum
// design, market trends and research chat.
package agent

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/curriculum-designer/internal/ai"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
	"github.com/p-n-ai/curriculum-designer/internal/prompt"
)

const defaultTrendsTTL = 15 * time.Minute

// Trend sentinels are returned instead of errors.
const (
	TrendMissingKey = "AI Key Missing. Please check LEARN_AI_GOOGLE_API_KEY."
	TrendNoContent  = "Error fetching trends: No content from API."
	TrendFailed     = "Error: Could not connect to market agents."
)

// Chat sentinels are returned instead of errors.
const (
	ChatMissingKey = "Sorry, the research assistant is offline due to a missing API Key."
	ChatNoContent  = "Sorry, I couldn't get analysis content."
	ChatFailed     = "Sorry, I couldn't connect to the market intelligence agent. Please try again later."
)

// Trends is the dashboard market summary.
type Trends struct {
	Trends []string `json:"trends"`
}

func sentinelTrends(msg string) Trends {
	return Trends{Trends: []string{msg}}
}

// TrendCache stores the last successful trends payload.
type TrendCache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// EngineConfig holds dependencies for the agent engine.
type EngineConfig struct {
	Client    *ai.Client
	Prompts   *prompt.Builder
	Events    EventLogger
	Cache     TrendCache    // optional
	TrendsTTL time.Duration // default 15m
}

// Engine runs generation operations. It holds no per-session state and is
// safe for concurrent use.
type Engine struct {
	client    *ai.Client
	prompts   *prompt.Builder
	events    EventLogger
	cache     TrendCache
	trendsTTL time.Duration
}

// NewEngine creates a new agent engine.
func NewEngine(cfg EngineConfig) *Engine {
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = prompt.Default()
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	ttl := cfg.TrendsTTL
	if ttl == 0 {
		ttl = defaultTrendsTTL
	}
	return &Engine{
		client:    cfg.Client,
		prompts:   prompts,
		events:    events,
		cache:     cfg.Cache,
		trendsTTL: ttl,
	}
}

// Configured reports whether the generative-language credential is present.
func (e *Engine) Configured() bool {
	return e.client.Configured()
}

// GenerateCurriculum validates the form, issues one generation call and
// returns the parsed, schema-checked curriculum. A missing credential fails
// with ai.ErrMissingCredential before any network attempt.
func (e *Engine) GenerateCurriculum(ctx context.Context, req curriculum.Request) (*curriculum.Curriculum, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	if !e.client.Configured() {
		return nil, ai.ErrMissingCredential
	}

	genReq, err := e.prompts.Curriculum(req)
	if err != nil {
		return nil, fmt.Errorf("building curriculum prompt: %w", err)
	}

	start := time.Now()
	raw, err := e.client.Invoke(ctx, genReq)
	if err != nil {
		e.curriculumFailed(ctx, req, err)
		return nil, fmt.Errorf("generating curriculum: %w", err)
	}

	c, err := curriculum.Decode(raw)
	if err != nil {
		e.curriculumFailed(ctx, req, err)
		return nil, err
	}

	slog.Info("curriculum generated",
		"subject", req.Subject,
		"level", req.Level,
		"modules", len(c.ContentPlan.Modules),
		"questions", len(c.AssessmentQuestions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	e.logEvent(ctx, EventCurriculumGenerated, map[string]any{
		"subject":   req.Subject,
		"level":     string(req.Level),
		"duration":  req.Duration,
		"modules":   len(c.ContentPlan.Modules),
		"questions": len(c.AssessmentQuestions),
	})
	return c, nil
}

func (e *Engine) curriculumFailed(ctx context.Context, req curriculum.Request, err error) {
	attrs := []any{"subject", req.Subject, "level", req.Level, "error", err}
	var te *ai.TransportError
	if errors.As(err, &te) && te.Body != "" {
		attrs = append(attrs, "upstream_body", te.Body)
	}
	slog.Error("curriculum generation failed", attrs...)
	e.logEvent(ctx, EventCurriculumFailed, map[string]any{
		"subject": req.Subject,
		"level":   string(req.Level),
		"kind":    ErrorKind(err),
	})
}

// FetchMarketTrends returns the dashboard trends. It never fails: a missing
// credential or a failed call yields a one-item sentinel payload.
func (e *Engine) FetchMarketTrends(ctx context.Context) Trends {
	if !e.client.Configured() {
		return sentinelTrends(TrendMissingKey)
	}

	genReq, err := e.prompts.Trends()
	if err != nil {
		slog.Error("building trends prompt", "error", err)
		return sentinelTrends(TrendFailed)
	}

	key := trendsCacheKey(genReq.Prompt)
	if e.cache != nil {
		var cached Trends
		if err := e.cache.GetJSON(ctx, key, &cached); err == nil {
			slog.Debug("trends served from cache", "key", key)
			return cached
		}
	}

	raw, err := e.client.Invoke(ctx, genReq)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyContent) {
			return sentinelTrends(TrendNoContent)
		}
		slog.Warn("dashboard trend fetch failed", "error", err)
		return sentinelTrends(TrendFailed)
	}

	var t Trends
	if err := curriculum.ParseInto(raw, &t); err != nil {
		slog.Warn("dashboard trend payload unreadable", "error", err)
		return sentinelTrends(TrendFailed)
	}
	if t.Trends == nil {
		t.Trends = []string{}
	}

	if e.cache != nil {
		if err := e.cache.SetJSON(ctx, key, t, e.trendsTTL); err != nil {
			slog.Warn("caching trends failed", "error", err)
		}
	}
	e.logEvent(ctx, EventTrendsFetched, map[string]any{"count": len(t.Trends)})
	return t
}

// GenerateAnalysis answers a research chat message. It never fails: errors
// are expressed as apology text.
func (e *Engine) GenerateAnalysis(ctx context.Context, text string) string {
	if !e.client.Configured() {
		return ChatMissingKey
	}

	genReq, err := e.prompts.Chat(text)
	if err != nil {
		slog.Error("building chat prompt", "error", err)
		return ChatFailed
	}

	reply, err := e.client.Invoke(ctx, genReq)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyContent) {
			return ChatNoContent
		}
		slog.Warn("chat analysis failed", "error", err)
		return ChatFailed
	}

	e.logEvent(ctx, EventChatAnswered, map[string]any{
		"query_len": len(text),
		"reply_len": len(reply),
	})
	return reply
}

// HealthCheck reports whether the generative-language service is reachable.
func (e *Engine) HealthCheck(ctx context.Context) error {
	return e.client.HealthCheck(ctx)
}

func (e *Engine) logEvent(ctx context.Context, eventType string, data map[string]any) {
	if err := e.events.LogEvent(Event{
		SessionID: SessionIDFrom(ctx),
		EventType: eventType,
		Data:      data,
	}); err != nil {
		slog.Warn("failed to log event", "type", eventType, "error", err)
	}
}

func trendsCacheKey(p string) string {
	sum := blake2b.Sum256([]byte(p))
	return "designer:trends:" + hex.EncodeToString(sum[:16])
}
