package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/ai"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
)

const sampleCurriculum = `{
  "subject": "Go",
  "target_audience": "Beginner Students",
  "duration": "1 semester",
  "vision": "Ship services.",
  "learning_objectives": ["Write Go"],
  "content_plan": {"title": "Outline", "modules": [{"module_title": "Basics", "weeks": "1-3", "topics": ["types"], "assessment": "Quiz"}]},
  "projects_by_industry": [{"title": "CLI", "level": "Beginner", "description": "A CLI.", "github_link": "https://github.com"}],
  "assessment_questions": [{"question": "Q", "options": ["A) a", "B) b", "C) c", "D) d"], "correct_answer": "A"}],
  "references": []
}`

var validRequest = curriculum.Request{Subject: "Go", Level: curriculum.Beginner, Duration: "1 semester"}

func newEngine(p ai.Provider, opts ...func(*agent.EngineConfig)) *agent.Engine {
	cfg := agent.EngineConfig{Client: ai.NewClient(p, ai.SingleAttempt)}
	for _, o := range opts {
		o(&cfg)
	}
	return agent.NewEngine(cfg)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) GetJSON(_ context.Context, key string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(raw, dst)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttl = ttl
	return nil
}

func TestEngine_GenerateCurriculum(t *testing.T) {
	mock := ai.NewMockProvider("```json\n" + sampleCurriculum + "\n```")
	events := agent.NewMemoryEventLogger()
	engine := newEngine(mock, func(c *agent.EngineConfig) { c.Events = events })

	ctx := agent.WithSessionID(context.Background(), "sess-1")
	got, err := engine.GenerateCurriculum(ctx, curriculum.Request{Subject: "Go", Level: "beginner"})
	if err != nil {
		t.Fatalf("GenerateCurriculum() error = %v", err)
	}
	if got.Subject != "Go" || len(got.ContentPlan.Modules) != 1 {
		t.Errorf("curriculum = %+v", got)
	}

	req := mock.LastRequest()
	if req == nil || req.MIMEType != ai.MIMEJSON || req.Task != ai.TaskCurriculum {
		t.Fatalf("request = %+v", req)
	}
	if !strings.Contains(req.Prompt, "Beginner") || !strings.Contains(req.Prompt, curriculum.DefaultDuration) {
		t.Error("prompt should carry the normalized level and default duration")
	}

	evs := events.OfType(agent.EventCurriculumGenerated)
	if len(evs) != 1 || evs[0].SessionID != "sess-1" {
		t.Errorf("generated events = %+v", evs)
	}
}

func TestEngine_GenerateCurriculum_MissingCredential(t *testing.T) {
	mock := &ai.MockProvider{NoCredential: true}
	engine := newEngine(mock)

	_, err := engine.GenerateCurriculum(context.Background(), validRequest)
	if !errors.Is(err, ai.ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}
	if mock.Calls() != 0 {
		t.Errorf("provider calls = %d, want 0", mock.Calls())
	}
	if agent.UserMessage(err) != agent.MsgMissingKey {
		t.Errorf("UserMessage() = %q", agent.UserMessage(err))
	}
}

func TestEngine_GenerateCurriculum_RequiredFieldsBeforeNetwork(t *testing.T) {
	mock := ai.NewMockProvider(sampleCurriculum)
	engine := newEngine(mock)

	_, err := engine.GenerateCurriculum(context.Background(), curriculum.Request{Subject: "Go", Level: curriculum.LevelPlaceholder})
	if !errors.Is(err, curriculum.ErrRequiredFields) {
		t.Fatalf("error = %v, want ErrRequiredFields", err)
	}
	if mock.Calls() != 0 {
		t.Errorf("provider calls = %d, want 0", mock.Calls())
	}
	if agent.UserMessage(err) != agent.MsgRequiredFields {
		t.Errorf("UserMessage() = %q", agent.UserMessage(err))
	}
}

func TestEngine_GenerateCurriculum_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider *ai.MockProvider
		wantKind string
		wantMsg  string
	}{
		{
			name:     "transport",
			provider: &ai.MockProvider{Err: &ai.TransportError{Op: "send request", Status: 500, Body: "quota exceeded"}},
			wantKind: agent.KindTransport,
			wantMsg:  agent.MsgGenerationFailed,
		},
		{
			name:     "empty content",
			provider: ai.NewMockProvider(""),
			wantKind: agent.KindTransport,
			wantMsg:  agent.MsgGenerationFailed,
		},
		{
			name:     "not json",
			provider: ai.NewMockProvider("Here is your curriculum!"),
			wantKind: agent.KindParse,
			wantMsg:  agent.MsgGenerationFailed,
		},
		{
			name:     "missing required keys",
			provider: ai.NewMockProvider(`{"subject":"Go"}`),
			wantKind: agent.KindValidation,
			wantMsg:  agent.MsgRenderFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := agent.NewMemoryEventLogger()
			engine := newEngine(tt.provider, func(c *agent.EngineConfig) { c.Events = events })

			got, err := engine.GenerateCurriculum(context.Background(), validRequest)
			if err == nil || got != nil {
				t.Fatalf("GenerateCurriculum() = %v, %v; want error", got, err)
			}
			if kind := agent.ErrorKind(err); kind != tt.wantKind {
				t.Errorf("ErrorKind() = %q, want %q", kind, tt.wantKind)
			}
			if msg := agent.UserMessage(err); msg != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", msg, tt.wantMsg)
			}
			if strings.Contains(agent.UserMessage(err), "quota") {
				t.Error("upstream detail must not reach the user message")
			}
			if tt.provider.Calls() != 1 {
				t.Errorf("provider calls = %d, want 1", tt.provider.Calls())
			}
			if len(events.OfType(agent.EventCurriculumFailed)) != 1 {
				t.Error("expected one curriculum_failed event")
			}
		})
	}
}

func TestEngine_FetchMarketTrends(t *testing.T) {
	mock := ai.NewMockProvider("```json\n{\"trends\":[\"Edge AI\",\"Serverless data\",\"Vector DBs\"]}\n```")
	engine := newEngine(mock)

	got := engine.FetchMarketTrends(context.Background())
	if len(got.Trends) != 3 || got.Trends[0] != "Edge AI" {
		t.Errorf("trends = %v", got.Trends)
	}
	req := mock.LastRequest()
	if req.Temperature == nil || *req.Temperature != 0.2 || req.MIMEType != ai.MIMEJSON {
		t.Errorf("request = %+v", req)
	}
}

func TestEngine_FetchMarketTrends_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		provider *ai.MockProvider
		want     string
	}{
		{"missing key", &ai.MockProvider{NoCredential: true}, agent.TrendMissingKey},
		{"empty content", ai.NewMockProvider(""), agent.TrendNoContent},
		{"transport", &ai.MockProvider{Err: &ai.TransportError{Op: "send request", Status: 503}}, agent.TrendFailed},
		{"unparseable", ai.NewMockProvider("trending: AI"), agent.TrendFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEngine(tt.provider).FetchMarketTrends(context.Background())
			if len(got.Trends) != 1 || got.Trends[0] != tt.want {
				t.Errorf("trends = %v, want [%q]", got.Trends, tt.want)
			}
		})
	}
}

func TestEngine_FetchMarketTrends_Cached(t *testing.T) {
	mock := ai.NewMockProvider(`{"trends":["Platform engineering"]}`)
	cache := newMemoryCache()
	engine := newEngine(mock, func(c *agent.EngineConfig) {
		c.Cache = cache
		c.TrendsTTL = time.Minute
	})

	first := engine.FetchMarketTrends(context.Background())
	second := engine.FetchMarketTrends(context.Background())

	if mock.Calls() != 1 {
		t.Errorf("provider calls = %d, want 1", mock.Calls())
	}
	if second.Trends[0] != first.Trends[0] {
		t.Errorf("cached trends = %v, want %v", second.Trends, first.Trends)
	}
	if cache.ttl != time.Minute {
		t.Errorf("cache ttl = %v, want 1m", cache.ttl)
	}
}

func TestEngine_FetchMarketTrends_SentinelNotCached(t *testing.T) {
	mock := ai.NewMockProvider("")
	cache := newMemoryCache()
	engine := newEngine(mock, func(c *agent.EngineConfig) { c.Cache = cache })

	engine.FetchMarketTrends(context.Background())
	mock.SetResponse(`{"trends":["Recovered"]}`)
	got := engine.FetchMarketTrends(context.Background())

	if got.Trends[0] != "Recovered" {
		t.Errorf("trends = %v, want fresh result after a sentinel", got.Trends)
	}
}

func TestEngine_GenerateAnalysis(t *testing.T) {
	mock := ai.NewMockProvider("Rust is in demand for infrastructure tooling.")
	engine := newEngine(mock)

	got := engine.GenerateAnalysis(context.Background(), "Is Rust worth learning?")
	if got != "Rust is in demand for infrastructure tooling." {
		t.Errorf("reply = %q", got)
	}
	req := mock.LastRequest()
	if req.MIMEType != ai.MIMEText || req.Temperature == nil || *req.Temperature != 0.5 {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Prompt, `"Is Rust worth learning?"`) {
		t.Errorf("prompt should quote the user text: %q", req.Prompt)
	}
}

func TestEngine_GenerateAnalysis_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		provider *ai.MockProvider
		want     string
	}{
		{"missing key", &ai.MockProvider{NoCredential: true}, agent.ChatMissingKey},
		{"empty content", ai.NewMockProvider(""), agent.ChatNoContent},
		{"transport", &ai.MockProvider{Err: &ai.TransportError{Op: "send request"}}, agent.ChatFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newEngine(tt.provider).GenerateAnalysis(context.Background(), "hi"); got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_MissingCredentialMakesNoCalls(t *testing.T) {
	mock := &ai.MockProvider{NoCredential: true}
	engine := newEngine(mock)

	if engine.Configured() {
		t.Error("Configured() should be false")
	}
	engine.FetchMarketTrends(context.Background())
	engine.GenerateAnalysis(context.Background(), "hello")
	if mock.Calls() != 0 {
		t.Errorf("provider calls = %d, want 0", mock.Calls())
	}
}
