package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/p-n-ai/curriculum-designer/internal/ai"

// AttemptPolicy bounds how many times a generation call is issued.
// Only transport failures are attempted again; a missing credential never is.
// A positive Timeout bounds each attempt.
type AttemptPolicy struct {
	MaxAttempts int
	Timeout     time.Duration
}

// SingleAttempt issues exactly one request and never retries.
var SingleAttempt = AttemptPolicy{MaxAttempts: 1}

func (p AttemptPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Client issues generation calls against one provider under an AttemptPolicy.
type Client struct {
	provider Provider
	policy   AttemptPolicy
	tracer   trace.Tracer
}

// NewClient creates a client for provider. A zero policy behaves as SingleAttempt.
func NewClient(provider Provider, policy AttemptPolicy) *Client {
	return &Client{
		provider: provider,
		policy:   policy,
		tracer:   otel.Tracer(tracerName),
	}
}

// Configured reports whether the underlying provider has a credential.
func (c *Client) Configured() bool {
	return c.provider.Configured()
}

// Policy returns the attempt policy in force.
func (c *Client) Policy() AttemptPolicy {
	return c.policy
}

// HealthCheck delegates to the provider.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.provider.HealthCheck(ctx)
}

// Invoke performs the generation call and returns the raw model text.
func (c *Client) Invoke(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ai.invoke", trace.WithAttributes(
		attribute.String("ai.task", req.Task.String()),
		attribute.String("ai.mime_type", string(req.MIMEType)),
	))
	defer span.End()

	var lastErr error
	max := c.policy.attempts()
	for attempt := 1; attempt <= max; attempt++ {
		resp, err := c.generate(ctx, req)
		if err == nil {
			slog.Debug("AI request completed",
				"task", req.Task.String(),
				"model", resp.Model,
				"attempt", attempt,
				"input_tokens", resp.InputTokens,
				"output_tokens", resp.OutputTokens,
			)
			span.SetAttributes(attribute.Int("ai.attempts", attempt), attribute.Int("ai.total_tokens", resp.TotalTokens()))
			return resp.Text, nil
		}

		lastErr = err
		if errors.Is(err, ErrMissingCredential) || !IsTransport(err) || ctx.Err() != nil {
			break
		}
		if attempt < max {
			slog.Warn("AI request failed, attempting again",
				"task", req.Task.String(),
				"attempt", attempt,
				"error", err,
			)
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "generation failed")
	return "", lastErr
}

func (c *Client) generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if c.policy.Timeout <= 0 {
		return c.provider.Generate(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()
	return c.provider.Generate(ctx, req)
}
