// Package designer holds the per-user designer session: the explicit
// view-state machine, the current curriculum, the quiz attempt and the
// research chat transcript.
package designer

import (
	"errors"
	"fmt"
)

// View is a designer screen.
type View string

const (
	ViewDashboard  View = "dashboard"
	ViewDesign     View = "design"
	ViewResult     View = "result"
	ViewAssessment View = "assessment"
	ViewEditor     View = "editor"
)

var (
	ErrUnknownView        = errors.New("unknown view")
	ErrIllegalNavigation  = errors.New("navigation not allowed from the current view")
	ErrNoCurriculum       = errors.New("no curriculum has been generated")
	ErrModuleOutOfRange   = errors.New("module index out of range")
	ErrGenerationInFlight = errors.New("a curriculum is already being generated")
	ErrNotDesigning       = errors.New("curriculum generation is only available from the design view")
	ErrNotInAssessment    = errors.New("the assessment is not open")
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewDashboard, ViewDesign, ViewResult, ViewAssessment, ViewEditor:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// requirement is the precondition a transition checks.
type requirement int

const (
	needsNothing requirement = iota
	needsCurriculum
	needsModule
)

// transitions lists the legal moves. Any view may return to the dashboard.
var transitions = map[View]map[View]requirement{
	ViewDashboard:  {ViewDesign: needsNothing},
	ViewDesign:     {ViewResult: needsCurriculum},
	ViewResult:     {ViewAssessment: needsCurriculum, ViewEditor: needsModule},
	ViewAssessment: {ViewResult: needsCurriculum},
	ViewEditor:     {ViewResult: needsCurriculum},
}

// allowed reports whether from → to is in the transition table and which
// precondition it carries.
func allowed(from, to View) (requirement, bool) {
	if to == ViewDashboard {
		return needsNothing, true
	}
	req, ok := transitions[from][to]
	return req, ok
}

// Targets returns the views reachable from v, ignoring preconditions.
func Targets(v View) []View {
	out := []View{ViewDashboard}
	for _, to := range []View{ViewDesign, ViewResult, ViewAssessment, ViewEditor} {
		if _, ok := transitions[v][to]; ok {
			out = append(out, to)
		}
	}
	return out
}
