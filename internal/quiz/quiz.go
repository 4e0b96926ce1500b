// Package quiz scores the multiple-choice assessment attached to a curriculum.
package quiz

import (
	"errors"
	"math"
	"strings"

	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
)

// State is the quiz lifecycle state.
type State string

const (
	Unanswered State = "unanswered"
	Submitted  State = "submitted"
	Reviewing  State = "reviewing"
)

// PassThreshold is the minimum percentage that counts as passed.
const PassThreshold = 70

// ErrIllegalTransition is returned by the error-reporting wrappers when an
// operation is attempted from the wrong state.
var ErrIllegalTransition = errors.New("illegal quiz transition")

// Engine holds one attempt at a question set. It is not safe for
// concurrent use; the owning session serializes access.
type Engine struct {
	questions []curriculum.Question
	answers   map[int]string
	state     State
	score     int
}

// New creates an engine in the Unanswered state.
func New(questions []curriculum.Question) *Engine {
	return &Engine{
		questions: questions,
		answers:   make(map[int]string),
		state:     Unanswered,
	}
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Total returns the number of questions.
func (e *Engine) Total() int { return len(e.questions) }

// Questions returns the question set.
func (e *Engine) Questions() []curriculum.Question { return e.questions }

// Answers returns a copy of the answer record.
func (e *Engine) Answers() map[int]string {
	out := make(map[int]string, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// SelectAnswer records the full option text for a question. The index is
// not range-checked. It reports false outside the Unanswered state.
func (e *Engine) SelectAnswer(question int, option string) bool {
	if e.state != Unanswered {
		return false
	}
	e.answers[question] = option
	return true
}

// Submit scores the recorded answers and moves to Submitted.
func (e *Engine) Submit() bool {
	if e.state != Unanswered {
		return false
	}
	score := 0
	for i, q := range e.questions {
		if key := OptionKey(e.answers[i]); key != "" && key == q.CorrectAnswer {
			score++
		}
	}
	e.score = score
	e.state = Submitted
	return true
}

// Review moves from Submitted to Reviewing. The score is unchanged.
func (e *Engine) Review() bool {
	if e.state != Submitted {
		return false
	}
	e.state = Reviewing
	return true
}

// Score returns the number of correct answers. It is zero before Submit.
func (e *Engine) Score() int { return e.score }

// Percentage returns the rounded score percentage, or 0 with no questions.
func (e *Engine) Percentage() int {
	return Percentage(e.score, len(e.questions))
}

// Passed reports whether the percentage meets PassThreshold.
func (e *Engine) Passed() bool {
	return e.state != Unanswered && e.Percentage() >= PassThreshold
}

// Percentage returns round(score / total * 100), with 0 for an empty set.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// OptionKey returns the first character of an option string. The "X)"
// format is not verified.
func OptionKey(option string) string {
	for _, r := range option {
		return string(r)
	}
	return ""
}

// CorrectOptionText returns the option whose text starts with "<key>)",
// or the bare key when no option carries that prefix.
func CorrectOptionText(q curriculum.Question) string {
	prefix := q.CorrectAnswer + ")"
	for _, opt := range q.Options {
		if strings.HasPrefix(opt, prefix) {
			return opt
		}
	}
	return q.CorrectAnswer
}
