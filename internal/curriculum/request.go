// Package curriculum holds the curriculum data model, the design form rules
// and the parsing and validation of generated payloads.
package curriculum

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LevelPlaceholder is the unselected value of the level dropdown.
const LevelPlaceholder = "Select level..."

// ErrRequiredFields is returned when subject or level is missing.
var ErrRequiredFields = errors.New("subject and level are required fields")

// ErrUnknownLevel is returned when the level is not one of Levels.
var ErrUnknownLevel = errors.New("unknown level")

// ErrUnknownDuration is returned when the duration is not one of Durations.
var ErrUnknownDuration = errors.New("unknown duration")

var titleCaser = cases.Title(language.English)

// Normalize trims the form, canonicalizes the level spelling, fills the
// default duration and checks the submission preconditions. It runs before
// any network call is attempted.
func (r Request) Normalize() (Request, error) {
	r.Subject = strings.TrimSpace(r.Subject)
	r.FocusAreas = strings.TrimSpace(r.FocusAreas)
	r.LearningOutcomes = strings.TrimSpace(r.LearningOutcomes)
	r.Duration = strings.TrimSpace(r.Duration)

	level := strings.TrimSpace(string(r.Level))
	if r.Subject == "" || level == "" || level == LevelPlaceholder {
		return r, ErrRequiredFields
	}

	r.Level = Level(titleCaser.String(strings.ToLower(level)))
	if !slices.Contains(Levels, r.Level) {
		return r, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	if r.Duration == "" {
		r.Duration = DefaultDuration
	}
	if !slices.Contains(Durations, r.Duration) {
		return r, fmt.Errorf("%w: %q", ErrUnknownDuration, r.Duration)
	}

	return r, nil
}
