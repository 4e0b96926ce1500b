package quiz

import "fmt"

// Item is the per-question feedback shown while reviewing.
type Item struct {
	Index       int      `json:"index"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Selected    string   `json:"selected"`
	Correct     bool     `json:"correct"`
	CorrectText string   `json:"correct_text"`
}

// Result summarizes a submitted attempt.
type Result struct {
	State      State  `json:"state"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Passed     bool   `json:"passed"`
	Items      []Item `json:"items,omitempty"`
}

// Snapshot returns the current attempt. Items are filled only in Reviewing.
func (e *Engine) Snapshot() Result {
	r := Result{
		State:      e.state,
		Score:      e.score,
		Total:      len(e.questions),
		Percentage: e.Percentage(),
		Passed:     e.Passed(),
	}
	if e.state == Reviewing {
		r.Items = e.reviewItems()
	}
	return r
}

func (e *Engine) reviewItems() []Item {
	items := make([]Item, 0, len(e.questions))
	for i, q := range e.questions {
		selected := e.answers[i]
		key := OptionKey(selected)
		items = append(items, Item{
			Index:       i,
			Question:    q.Question,
			Options:     q.Options,
			Selected:    selected,
			Correct:     key != "" && key == q.CorrectAnswer,
			CorrectText: CorrectOptionText(q),
		})
	}
	return items
}

// Select is SelectAnswer with an error for callers that surface it.
func (e *Engine) Select(question int, option string) error {
	if !e.SelectAnswer(question, option) {
		return fmt.Errorf("%w: select answer in state %s", ErrIllegalTransition, e.state)
	}
	return nil
}

// SubmitAttempt is Submit with an error for callers that surface it.
func (e *Engine) SubmitAttempt() (Result, error) {
	if !e.Submit() {
		return e.Snapshot(), fmt.Errorf("%w: submit in state %s", ErrIllegalTransition, e.state)
	}
	return e.Snapshot(), nil
}

// StartReview is Review with an error for callers that surface it.
func (e *Engine) StartReview() (Result, error) {
	if !e.Review() {
		return e.Snapshot(), fmt.Errorf("%w: review in state %s", ErrIllegalTransition, e.state)
	}
	return e.Snapshot(), nil
}
