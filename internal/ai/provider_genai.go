package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenaiProvider implements Provider with the Google generative-ai-go SDK.
type GenaiProvider struct {
	client *genai.Client
	model  string
}

// NewGenaiProvider creates an SDK-backed provider. With an empty apiKey no
// client is created and Generate returns ErrMissingCredential.
func NewGenaiProvider(ctx context.Context, apiKey, model string) (*GenaiProvider, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	p := &GenaiProvider{model: model}
	if apiKey == "" {
		return p, nil
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	p.client = cl
	return p, nil
}

func (p *GenaiProvider) Configured() bool {
	return p.client != nil
}

func (p *GenaiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if !p.Configured() {
		return GenerateResponse{}, ErrMissingCredential
	}

	name := req.Model
	if name == "" {
		name = p.model
	}

	m := p.client.GenerativeModel(strings.TrimSpace(name))
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: string(req.MIMEType),
	}
	if req.Temperature != nil {
		m.SetTemperature(float32(*req.Temperature))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return GenerateResponse{}, &TransportError{Op: "genai GenerateContent", Err: err}
	}

	text, err := textFromResponse(resp)
	if err != nil {
		return GenerateResponse{}, err
	}

	out := GenerateResponse{Text: text, Model: name}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// textFromResponse returns the first text part of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &TransportError{Op: "genai GenerateContent", Err: ErrEmptyContent}
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return "", &TransportError{Op: "genai GenerateContent", Err: ErrEmptyContent}
	}
	text, ok := c.Content.Parts[0].(genai.Text)
	if !ok || text == "" {
		return "", &TransportError{Op: "genai GenerateContent", Err: ErrEmptyContent}
	}
	return string(text), nil
}

func (p *GenaiProvider) HealthCheck(ctx context.Context) error {
	if !p.Configured() {
		return ErrMissingCredential
	}
	if _, err := p.client.GenerativeModel(p.model).Info(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close releases the underlying SDK client.
func (p *GenaiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
