// Package server exposes the designer sessions, trends, exports and the
// research chat over HTTP.
package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/cors"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/chat"
	"github.com/p-n-ai/curriculum-designer/internal/designer"
	"github.com/p-n-ai/curriculum-designer/internal/export"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// HealthChecker is a dependency checked by /readyz.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config wires the server to its collaborators.
type Config struct {
	Engine         *agent.Engine
	Registry       *designer.Registry
	AllowedOrigins []string
	Layout         export.Layout
	// Checks are run by /readyz, keyed by name.
	Checks       map[string]HealthChecker
	CheckTimeout time.Duration
}

// Server routes HTTP requests to designer sessions.
type Server struct {
	engine       *agent.Engine
	registry     *designer.Registry
	layout       export.Layout
	checks       map[string]HealthChecker
	checkTimeout time.Duration
	origins      []string
}

// New creates a server. A zero layout uses export.DefaultLayout.
func New(cfg Config) *Server {
	layout := cfg.Layout
	if layout.Width <= 0 || layout.Height <= 0 {
		layout = export.DefaultLayout
	}
	timeout := cfg.CheckTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		engine:       cfg.Engine,
		registry:     cfg.Registry,
		layout:       layout,
		checks:       cfg.Checks,
		checkTimeout: timeout,
		origins:      origins,
	}
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	return c.Handler(s.mux())
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleGetSession))
	mux.HandleFunc("POST /api/sessions/{id}/navigate", s.withSession(s.handleNavigate))
	mux.HandleFunc("POST /api/sessions/{id}/curriculum", s.withSession(s.handleGenerate))
	mux.HandleFunc("POST /api/sessions/{id}/quiz/answers", s.withSession(s.handleSelectAnswer))
	mux.HandleFunc("POST /api/sessions/{id}/quiz/submit", s.withSession(s.handleSubmitQuiz))
	mux.HandleFunc("POST /api/sessions/{id}/quiz/review", s.withSession(s.handleReviewQuiz))
	mux.HandleFunc("POST /api/sessions/{id}/chat", s.withSession(s.handleChat))
	mux.HandleFunc("GET /api/sessions/{id}/export", s.withSession(s.handleExport))

	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.Handle("GET /ws/chat", chat.NewWebSocketHandler(s.engine, s.registry.ChatSession, wsOrigins(s.origins)))
	return mux
}

// wsOrigins maps the CORS origin list to websocket origin patterns, which
// match on host only.
func wsOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.checkTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": failed})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
