package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/chat"
	"github.com/p-n-ai/curriculum-designer/internal/designer"
	"github.com/p-n-ai/curriculum-designer/internal/export"
	"github.com/p-n-ai/curriculum-designer/internal/quiz"
)

// msgInternal replaces unclassified server-side failures in responses.
const msgInternal = "Something went wrong. Please try again."

// errBadRequest marks malformed input.
var errBadRequest = errors.New("bad request")

// errorBody is the JSON error envelope. Session carries the state after a
// failed operation where one exists.
type errorBody struct {
	Error   string             `json:"error"`
	Kind    string             `json:"kind,omitempty"`
	Session *designer.Snapshot `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError maps err to a status and writes the envelope.
func writeError(w http.ResponseWriter, err error, sess *designer.Session) {
	body := errorBody{Error: err.Error()}
	status := statusFor(err)

	if kind := agent.ErrorKind(err); kind != agent.KindUnknown {
		body.Kind = kind
		body.Error = agent.UserMessage(err)
	}
	if sess != nil {
		snap := sess.Snapshot()
		body.Session = &snap
	}
	if status >= http.StatusInternalServerError {
		slog.Warn("request failed", "status", status, "error", err)
		if body.Kind == "" {
			body.Error = msgInternal
		}
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, designer.ErrUnknownView),
		errors.Is(err, designer.ErrModuleOutOfRange),
		errors.Is(err, chat.ErrBlankMessage),
		errors.Is(err, export.ErrPageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, designer.ErrIllegalNavigation),
		errors.Is(err, designer.ErrNoCurriculum),
		errors.Is(err, designer.ErrGenerationInFlight),
		errors.Is(err, designer.ErrNotDesigning),
		errors.Is(err, designer.ErrNotInAssessment),
		errors.Is(err, quiz.ErrIllegalTransition),
		errors.Is(err, chat.ErrInFlight):
		return http.StatusConflict
	}

	switch agent.ErrorKind(err) {
	case agent.KindConfiguration:
		return http.StatusServiceUnavailable
	case agent.KindInput:
		return http.StatusBadRequest
	case agent.KindValidation:
		return http.StatusUnprocessableEntity
	case agent.KindTransport, agent.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
