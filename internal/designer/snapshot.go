package designer

import (
	"github.com/p-n-ai/curriculum-designer/internal/chat"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
	"github.com/p-n-ai/curriculum-designer/internal/quiz"
)

// Snapshot is the renderable state of a session.
type Snapshot struct {
	ID         string                 `json:"id"`
	View       View                   `json:"view"`
	Targets    []View                 `json:"targets"`
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error,omitempty"`
	Form       *FormOptions           `json:"form,omitempty"`
	Dashboard  *Dashboard             `json:"dashboard,omitempty"`
	Curriculum *curriculum.Curriculum `json:"curriculum,omitempty"`
	Assessment *Assessment            `json:"assessment,omitempty"`
	Editor     *Editor                `json:"editor,omitempty"`
	Chat       []chat.Message         `json:"chat"`
}

// Dashboard is the landing view content. Live trends are fetched separately.
type Dashboard struct {
	SampleProjects []curriculum.Project `json:"sample_projects"`
}

// Assessment is the open quiz attempt.
type Assessment struct {
	Subject   string                `json:"subject"`
	Empty     string                `json:"empty,omitempty"`
	Questions []curriculum.Question `json:"questions"`
	Answers   map[int]string        `json:"answers"`
	Result    quiz.Result           `json:"result"`
}

// Editor is the lesson editor view of one module.
type Editor struct {
	Index  int               `json:"index"`
	Module curriculum.Module `json:"module"`
	Notes  []string          `json:"notes"`
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:      s.id,
		View:    s.view,
		Targets: Targets(s.view),
		Loading: s.loading,
		Error:   s.errMsg,
		Chat:    s.chat.Transcript(),
	}

	switch s.view {
	case ViewDashboard:
		snap.Dashboard = &Dashboard{SampleProjects: SampleProjects}
	case ViewDesign:
		form := DesignForm()
		snap.Form = &form
	case ViewResult:
		snap.Curriculum = s.curriculum
	case ViewAssessment:
		if s.quiz != nil {
			a := &Assessment{
				Subject:   s.curriculum.Subject,
				Questions: s.quiz.Questions(),
				Answers:   s.quiz.Answers(),
				Result:    s.quiz.Snapshot(),
			}
			if s.quiz.Total() == 0 {
				a.Empty = NoAssessmentTitle
			}
			snap.Assessment = a
		}
	case ViewEditor:
		if m, ok := s.curriculum.Module(s.module); ok {
			snap.Editor = &Editor{Index: s.module, Module: m, Notes: EditorNotes}
		}
	}
	return snap
}
