// Package ai provides the generative-language client used by the designer:
// one provider per process, one logical call per operation.
package ai

import "context"

// TaskType names the logical operation a generation call belongs to.
type TaskType int

const (
	TaskCurriculum TaskType = iota
	TaskTrends
	TaskChat
)

func (t TaskType) String() string {
	switch t {
	case TaskCurriculum:
		return "curriculum"
	case TaskTrends:
		return "trends"
	case TaskChat:
		return "chat"
	default:
		return "unknown"
	}
}

// MIMEType is the content type the service is asked to produce.
type MIMEType string

const (
	MIMEJSON MIMEType = "application/json"
	MIMEText MIMEType = "text/plain"
)

// GenerateRequest is the input to a single generation call.
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	MIMEType    MIMEType `json:"mime_type"`
	Temperature *float64 `json:"temperature,omitempty"`
	Model       string   `json:"model,omitempty"`
	Task        TaskType `json:"task"`
}

// GenerateResponse is the raw output of a generation call.
type GenerateResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r GenerateResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider is the interface the generation backends implement.
type Provider interface {
	// Configured reports whether a credential is present. Generate on an
	// unconfigured provider returns ErrMissingCredential without network I/O.
	Configured() bool
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	HealthCheck(ctx context.Context) error
}

// Temperature returns a pointer to t, for GenerateRequest.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
