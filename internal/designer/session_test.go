package designer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/ai"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
	"github.com/p-n-ai/curriculum-designer/internal/designer"
	"github.com/p-n-ai/curriculum-designer/internal/quiz"
)

type stubGenerator struct {
	mu      sync.Mutex
	result  *curriculum.Curriculum
	err     error
	calls   int
	gate    chan struct{}
	started chan struct{}
}

func (g *stubGenerator) GenerateCurriculum(ctx context.Context, _ curriculum.Request) (*curriculum.Curriculum, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.gate != nil {
		<-g.gate
	}
	return g.result, g.err
}

func sample() *curriculum.Curriculum {
	return &curriculum.Curriculum{
		Subject: "Go",
		ContentPlan: curriculum.ContentPlan{Modules: []curriculum.Module{
			{ModuleTitle: "Basics", Weeks: "1-3", Topics: []string{"types"}, Assessment: "Quiz"},
			{ModuleTitle: "Concurrency", Weeks: "4-6", Topics: []string{"goroutines"}, Assessment: "Project"},
		}},
		AssessmentQuestions: []curriculum.Question{
			{Question: "Q1", Options: []string{"A) a", "B) b"}, CorrectAnswer: "A"},
			{Question: "Q2", Options: []string{"A) a", "B) b"}, CorrectAnswer: "B"},
		},
	}
}

var goRequest = curriculum.Request{Subject: "Go", Level: curriculum.Beginner}

func newSession(t *testing.T) (*designer.Session, *agent.MemoryEventLogger) {
	t.Helper()
	events := agent.NewMemoryEventLogger()
	reg := designer.NewRegistry(designer.DefaultTTL, events)
	return reg.Create(), events
}

// toResult drives a fresh session to the result view.
func toResult(t *testing.T, s *designer.Session) {
	t.Helper()
	if err := s.Navigate(designer.ViewDesign, 0); err != nil {
		t.Fatalf("Navigate(design) error = %v", err)
	}
	if err := s.Generate(context.Background(), &stubGenerator{result: sample()}, goRequest); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestSession_StartsOnDashboard(t *testing.T) {
	s, _ := newSession(t)
	snap := s.Snapshot()
	if snap.View != designer.ViewDashboard {
		t.Errorf("View = %s, want dashboard", snap.View)
	}
	if snap.Dashboard == nil || len(snap.Dashboard.SampleProjects) != 2 {
		t.Errorf("Dashboard = %+v, want two sample projects", snap.Dashboard)
	}
	if len(snap.Chat) != 1 {
		t.Errorf("Chat = %d messages, want greeting only", len(snap.Chat))
	}
}

func TestSession_NavigateTable(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*testing.T, *designer.Session)
		to      designer.View
		module  int
		wantErr error
	}{
		{"dashboard to design", func(*testing.T, *designer.Session) {}, designer.ViewDesign, 0, nil},
		{"dashboard to result", func(*testing.T, *designer.Session) {}, designer.ViewResult, 0, designer.ErrIllegalNavigation},
		{"dashboard to assessment", func(*testing.T, *designer.Session) {}, designer.ViewAssessment, 0, designer.ErrIllegalNavigation},
		{
			"design to result without curriculum",
			func(t *testing.T, s *designer.Session) { s.Navigate(designer.ViewDesign, 0) },
			designer.ViewResult, 0, designer.ErrNoCurriculum,
		},
		{"result to assessment", toResult, designer.ViewAssessment, 0, nil},
		{"result to editor", toResult, designer.ViewEditor, 1, nil},
		{"result to editor out of range", toResult, designer.ViewEditor, 2, designer.ErrModuleOutOfRange},
		{"result to editor negative", toResult, designer.ViewEditor, -1, designer.ErrModuleOutOfRange},
		{"result to design", toResult, designer.ViewDesign, 0, designer.ErrIllegalNavigation},
		{"result to dashboard", toResult, designer.ViewDashboard, 0, nil},
		{"unknown view", toResult, designer.View("settings"), 0, designer.ErrUnknownView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t)
			tt.setup(t, s)
			before := s.View()

			err := s.Navigate(tt.to, tt.module)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Navigate() error = %v, want %v", err, tt.wantErr)
				}
				if s.View() != before {
					t.Errorf("View changed to %s on a rejected navigation", s.View())
				}
				return
			}
			if err != nil {
				t.Fatalf("Navigate() error = %v", err)
			}
			if s.View() != tt.to {
				t.Errorf("View = %s, want %s", s.View(), tt.to)
			}
		})
	}
}

func TestSession_GenerateSuccess(t *testing.T) {
	s, _ := newSession(t)
	s.Navigate(designer.ViewDesign, 0)

	if err := s.Generate(context.Background(), &stubGenerator{result: sample()}, goRequest); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.View != designer.ViewResult || snap.Curriculum == nil || snap.Loading {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSession_GenerateFailureStaysOnDesign(t *testing.T) {
	s, _ := newSession(t)
	s.Navigate(designer.ViewDesign, 0)

	gen := &stubGenerator{err: &ai.TransportError{Op: "send request", Status: 500, Body: "internal detail"}}
	if err := s.Generate(context.Background(), gen, goRequest); err == nil {
		t.Fatal("Generate() should fail")
	}
	snap := s.Snapshot()
	if snap.View != designer.ViewDesign {
		t.Errorf("View = %s, want design", snap.View)
	}
	if snap.Error != agent.MsgGenerationFailed {
		t.Errorf("Error = %q, want %q", snap.Error, agent.MsgGenerationFailed)
	}
	if snap.Loading {
		t.Error("Loading should be cleared after failure")
	}
	if snap.Form == nil || len(snap.Form.Levels) != 4 {
		t.Errorf("Form = %+v", snap.Form)
	}

	if err := s.Generate(context.Background(), &stubGenerator{result: sample()}, goRequest); err != nil {
		t.Fatalf("retry Generate() error = %v", err)
	}
	if s.Snapshot().Error != "" {
		t.Error("error panel should clear on a successful generation")
	}
}

func TestSession_GenerateOnlyFromDesign(t *testing.T) {
	s, _ := newSession(t)
	gen := &stubGenerator{result: sample()}
	if err := s.Generate(context.Background(), gen, goRequest); !errors.Is(err, designer.ErrNotDesigning) {
		t.Fatalf("Generate() error = %v, want ErrNotDesigning", err)
	}
	if gen.calls != 0 {
		t.Error("generator should not be called")
	}
}

func TestSession_GenerateInFlightGuard(t *testing.T) {
	s, _ := newSession(t)
	s.Navigate(designer.ViewDesign, 0)

	gen := &stubGenerator{result: sample(), gate: make(chan struct{}), started: make(chan struct{}, 1)}
	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), gen, goRequest) }()
	<-gen.started

	if !s.Snapshot().Loading {
		t.Error("Loading should be set while generating")
	}
	if err := s.Generate(context.Background(), gen, goRequest); !errors.Is(err, designer.ErrGenerationInFlight) {
		t.Errorf("second Generate() error = %v, want ErrGenerationInFlight", err)
	}

	close(gen.gate)
	if err := <-done; err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestSession_AssessmentResetsOnReentry(t *testing.T) {
	s, events := newSession(t)
	toResult(t, s)

	s.Navigate(designer.ViewAssessment, 0)
	if _, err := s.SelectAnswer(0, "A) a"); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	res, err := s.SubmitQuiz()
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if res.Score != 1 || res.Percentage != 50 || res.Passed {
		t.Errorf("result = %+v", res)
	}
	if len(events.OfType(agent.EventQuizSubmitted)) != 1 {
		t.Error("expected one quiz_submitted event")
	}

	review, err := s.ReviewQuiz()
	if err != nil || review.State != quiz.Reviewing || len(review.Items) != 2 {
		t.Fatalf("ReviewQuiz() = %+v, %v", review, err)
	}

	if err := s.Navigate(designer.ViewResult, 0); err != nil {
		t.Fatalf("Navigate(result) error = %v", err)
	}
	if _, err := s.SubmitQuiz(); !errors.Is(err, designer.ErrNotInAssessment) {
		t.Errorf("SubmitQuiz() outside assessment error = %v", err)
	}

	s.Navigate(designer.ViewAssessment, 0)
	snap := s.Snapshot()
	if snap.Assessment == nil {
		t.Fatal("Assessment should be set")
	}
	if len(snap.Assessment.Answers) != 0 || snap.Assessment.Result.State != quiz.Unanswered {
		t.Errorf("re-entered assessment = %+v, want fresh attempt", snap.Assessment)
	}
}

func TestSession_EmptyAssessment(t *testing.T) {
	s, _ := newSession(t)
	s.Navigate(designer.ViewDesign, 0)
	c := sample()
	c.AssessmentQuestions = []curriculum.Question{}
	s.Generate(context.Background(), &stubGenerator{result: c}, goRequest)
	s.Navigate(designer.ViewAssessment, 0)

	snap := s.Snapshot()
	if snap.Assessment == nil || snap.Assessment.Empty != designer.NoAssessmentTitle {
		t.Fatalf("Assessment = %+v", snap.Assessment)
	}
	res, err := s.SubmitQuiz()
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if res.Percentage != 0 || res.Passed {
		t.Errorf("empty result = %+v", res)
	}
}

func TestSession_Editor(t *testing.T) {
	s, _ := newSession(t)
	toResult(t, s)

	if err := s.Navigate(designer.ViewEditor, 1); err != nil {
		t.Fatalf("Navigate(editor) error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Editor == nil || snap.Editor.Module.ModuleTitle != "Concurrency" || len(snap.Editor.Notes) != 3 {
		t.Errorf("Editor = %+v", snap.Editor)
	}
	if err := s.Navigate(designer.ViewResult, 0); err != nil {
		t.Fatalf("Navigate(result) error = %v", err)
	}
	if s.Snapshot().Editor != nil {
		t.Error("Editor should be cleared after leaving")
	}
}

func TestSession_QuizOpsOutsideAssessment(t *testing.T) {
	s, _ := newSession(t)
	if _, err := s.SelectAnswer(0, "A"); !errors.Is(err, designer.ErrNotInAssessment) {
		t.Errorf("SelectAnswer() error = %v", err)
	}
	if _, err := s.ReviewQuiz(); !errors.Is(err, designer.ErrNotInAssessment) {
		t.Errorf("ReviewQuiz() error = %v", err)
	}
}

func TestTargets(t *testing.T) {
	got := designer.Targets(designer.ViewResult)
	want := []designer.View{designer.ViewDashboard, designer.ViewAssessment, designer.ViewEditor}
	if len(got) != len(want) {
		t.Fatalf("Targets(result) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Targets(result)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSession_SelectAnswerOutOfRangeNeverScores(t *testing.T) {
	s, _ := newSession(t)
	toResult(t, s)
	s.Navigate(designer.ViewAssessment, 0)

	for _, q := range []int{-1, 2, 7} {
		if _, err := s.SelectAnswer(q, "A) a"); err != nil {
			t.Errorf("SelectAnswer(%d) error = %v", q, err)
		}
	}
	res, err := s.SubmitQuiz()
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if res.Score != 0 || res.Total != 2 {
		t.Errorf("result = %+v, want 0 of 2", res)
	}
}

func TestSession_GenerateCompletesAfterLeavingDesign(t *testing.T) {
	s, _ := newSession(t)
	s.Navigate(designer.ViewDesign, 0)

	gen := &stubGenerator{result: sample(), gate: make(chan struct{}), started: make(chan struct{}, 1)}
	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), gen, goRequest) }()
	<-gen.started

	if err := s.Navigate(designer.ViewDashboard, 0); err != nil {
		t.Fatalf("Navigate(dashboard) error = %v", err)
	}
	close(gen.gate)
	if err := <-done; err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if v := s.View(); v != designer.ViewDashboard {
		t.Errorf("View = %s, want dashboard", v)
	}
	if s.Curriculum() == nil {
		t.Fatal("curriculum should be kept")
	}
	s.Navigate(designer.ViewDesign, 0)
	if err := s.Navigate(designer.ViewResult, 0); err != nil {
		t.Errorf("Navigate(result) error = %v", err)
	}
}

func TestSession_GenerateFailureAfterLeavingDesign(t *testing.T) {
	s, _ := newSession(t)
	s.Navigate(designer.ViewDesign, 0)

	gen := &stubGenerator{err: &ai.TransportError{Op: "send request"}, gate: make(chan struct{}), started: make(chan struct{}, 1)}
	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), gen, goRequest) }()
	<-gen.started

	s.Navigate(designer.ViewDashboard, 0)
	close(gen.gate)
	<-done

	if snap := s.Snapshot(); snap.View != designer.ViewDashboard || snap.Error != "" {
		t.Errorf("snapshot = view %s error %q, want dashboard without error", snap.View, snap.Error)
	}
}

type blockingLogger struct {
	entered chan struct{}
	release chan struct{}
}

func (l *blockingLogger) LogEvent(agent.Event) error {
	l.entered <- struct{}{}
	<-l.release
	return nil
}

func TestSession_SubmitQuizLogsWithoutHoldingSession(t *testing.T) {
	logger := &blockingLogger{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := designer.NewRegistry(designer.DefaultTTL, logger).Create()
	toResult(t, s)
	s.Navigate(designer.ViewAssessment, 0)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitQuiz()
		done <- err
	}()
	<-logger.entered

	snapped := make(chan designer.Snapshot, 1)
	go func() { snapped <- s.Snapshot() }()
	select {
	case snap := <-snapped:
		if snap.Assessment == nil || snap.Assessment.Result.State != quiz.Submitted {
			t.Errorf("assessment = %+v, want submitted", snap.Assessment)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Snapshot() blocked while the event was being logged")
	}

	close(logger.release)
	if err := <-done; err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
}
