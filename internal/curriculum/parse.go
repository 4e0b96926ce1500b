package curriculum

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPayload is wrapped by ParseError when nothing is left after fence stripping.
var ErrEmptyPayload = errors.New("empty payload")

// ParseError reports model output that is not valid JSON after fence stripping.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const fence = "```"

// StripFences removes a leading ```json (or bare ```) marker, a trailing ```
// marker and surrounding whitespace. Text between the markers is untouched.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSuffix(s, fence)
		s = strings.TrimSpace(s)
	}
	return s
}

// Parse strips code fences from raw and decodes the remainder as a JSON value.
func Parse(raw string) (any, error) {
	var v any
	if err := ParseInto(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseInto strips code fences from raw and decodes the remainder into dst.
func ParseInto(raw string, dst any) error {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return &ParseError{Raw: raw, Err: ErrEmptyPayload}
	}
	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

// Decode parses raw model output, validates it against the curriculum schema
// and returns the typed record with absent sequences filled as empty.
func Decode(raw string) (*Curriculum, error) {
	value, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	if err := Validate(value); err != nil {
		return nil, err
	}

	var c Curriculum
	if err := json.Unmarshal([]byte(StripFences(raw)), &c); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	c.fillEmpty()
	return &c, nil
}
