package agent

import (
	"errors"

	"github.com/p-n-ai/curriculum-designer/internal/ai"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
)

// Messages shown to the user for generation failures. Upstream detail
// stays in the operator logs.
const (
	MsgMissingKey       = "GEMINI_API_KEY is missing. Please set LEARN_AI_GOOGLE_API_KEY."
	MsgRequiredFields   = "Subject and Level are required fields."
	MsgGenerationFailed = "API Request Failed. Ensure your API Key is correct."
	MsgRenderFailed     = "The generated curriculum is incomplete and cannot be displayed. Please try again."
)

// Error kinds reported by ErrorKind.
const (
	KindConfiguration = "configuration"
	KindInput         = "input"
	KindTransport     = "transport"
	KindParse         = "parse"
	KindValidation    = "validation"
	KindUnknown       = "unknown"
)

// ErrorKind classifies a GenerateCurriculum error.
func ErrorKind(err error) string {
	var pe *curriculum.ParseError
	var ve *curriculum.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ai.ErrMissingCredential):
		return KindConfiguration
	case errors.Is(err, curriculum.ErrRequiredFields),
		errors.Is(err, curriculum.ErrUnknownLevel),
		errors.Is(err, curriculum.ErrUnknownDuration):
		return KindInput
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &pe):
		return KindParse
	case ai.IsTransport(err):
		return KindTransport
	default:
		return KindUnknown
	}
}

// UserMessage returns the text shown in the error panel for err.
func UserMessage(err error) string {
	switch ErrorKind(err) {
	case "":
		return ""
	case KindConfiguration:
		return MsgMissingKey
	case KindInput:
		if errors.Is(err, curriculum.ErrRequiredFields) {
			return MsgRequiredFields
		}
		return err.Error()
	case KindValidation:
		return MsgRenderFailed
	default:
		return MsgGenerationFailed
	}
}
