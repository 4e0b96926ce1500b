package designer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/chat"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
	"github.com/p-n-ai/curriculum-designer/internal/quiz"
)

// Generator produces a curriculum from the design form.
type Generator interface {
	GenerateCurriculum(ctx context.Context, req curriculum.Request) (*curriculum.Curriculum, error)
}

// Session is one user's designer state. All methods are safe for
// concurrent use; generation runs without holding the lock.
type Session struct {
	id     string
	events agent.EventLogger

	mu         sync.Mutex
	view       View
	curriculum *curriculum.Curriculum
	quiz       *quiz.Engine
	module     int
	loading    bool
	errMsg     string
	lastSeen   time.Time

	chat *chat.Session
}

func newSession(id string, events agent.EventLogger, now time.Time) *Session {
	if events == nil {
		events = agent.NopEventLogger{}
	}
	return &Session{
		id:       id,
		events:   events,
		view:     ViewDashboard,
		module:   -1,
		lastSeen: now,
		chat:     chat.NewSession(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Chat returns the session's research chat transcript.
func (s *Session) Chat() *chat.Session { return s.chat }

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Curriculum returns the current curriculum, or nil.
func (s *Session) Curriculum() *curriculum.Curriculum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curriculum
}

// Navigate moves to another view. module is only read when entering the
// editor. Entering the assessment starts a fresh attempt; leaving it
// discards the answers.
func (s *Session) Navigate(to View, module int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := ParseView(string(to)); err != nil {
		return err
	}
	req, ok := allowed(s.view, to)
	if !ok {
		return fmt.Errorf("%w: %s to %s", ErrIllegalNavigation, s.view, to)
	}

	switch req {
	case needsCurriculum:
		if s.curriculum == nil {
			return ErrNoCurriculum
		}
	case needsModule:
		if s.curriculum == nil {
			return ErrNoCurriculum
		}
		if _, ok := s.curriculum.Module(module); !ok {
			return fmt.Errorf("%w: %d", ErrModuleOutOfRange, module)
		}
	}

	s.leave(s.view)
	switch to {
	case ViewAssessment:
		s.quiz = quiz.New(s.curriculum.AssessmentQuestions)
	case ViewEditor:
		s.module = module
	}
	s.view = to
	return nil
}

func (s *Session) leave(from View) {
	switch from {
	case ViewAssessment:
		s.quiz = nil
	case ViewEditor:
		s.module = -1
	case ViewDesign:
		s.errMsg = ""
	}
}

// Generate runs curriculum generation from the design view. Only one
// generation may be outstanding. On success the curriculum is replaced and,
// if the user is still on the design view, the session moves to the result
// view. On failure the design view shows the error panel.
func (s *Session) Generate(ctx context.Context, gen Generator, req curriculum.Request) error {
	s.mu.Lock()
	if s.view != ViewDesign {
		s.mu.Unlock()
		return ErrNotDesigning
	}
	if s.loading {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	c, err := gen.GenerateCurriculum(agent.WithSessionID(ctx, s.id), req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		if s.view == ViewDesign {
			s.errMsg = agent.UserMessage(err)
		}
		return err
	}

	s.curriculum = c
	s.quiz = nil
	s.module = -1
	if s.view == ViewDesign {
		s.view = ViewResult
	}
	return nil
}

// SelectAnswer records an option for a question of the open assessment.
// The index is not range-checked; answers to missing questions never score.
func (s *Session) SelectAnswer(question int, option string) (quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewAssessment || s.quiz == nil {
		return quiz.Result{}, ErrNotInAssessment
	}
	if err := s.quiz.Select(question, option); err != nil {
		return s.quiz.Snapshot(), err
	}
	return s.quiz.Snapshot(), nil
}

// SubmitQuiz scores the open assessment.
func (s *Session) SubmitQuiz() (quiz.Result, error) {
	s.mu.Lock()
	if s.view != ViewAssessment || s.quiz == nil {
		s.mu.Unlock()
		return quiz.Result{}, ErrNotInAssessment
	}
	res, err := s.quiz.SubmitAttempt()
	s.mu.Unlock()
	if err != nil {
		return res, err
	}

	slog.Info("assessment submitted",
		"session_id", s.id,
		"score", res.Score,
		"total", res.Total,
		"percentage", res.Percentage,
	)
	if lerr := s.events.LogEvent(agent.Event{
		SessionID: s.id,
		EventType: agent.EventQuizSubmitted,
		Data: map[string]any{
			"score":      res.Score,
			"total":      res.Total,
			"percentage": res.Percentage,
			"passed":     res.Passed,
		},
	}); lerr != nil {
		slog.Warn("failed to log event", "type", agent.EventQuizSubmitted, "error", lerr)
	}
	return res, nil
}

// ReviewQuiz opens the per-question review of a submitted assessment.
func (s *Session) ReviewQuiz() (quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewAssessment || s.quiz == nil {
		return quiz.Result{}, ErrNotInAssessment
	}
	return s.quiz.StartReview()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
