// Package prompt renders the generation requests for curriculum design,
// market trends and research chat from a YAML prompt catalogue.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/p-n-ai/curriculum-designer/internal/ai"
	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
)

// Builder renders generation requests. It is safe for concurrent use.
type Builder struct {
	fallbacks Fallbacks
	specs     map[string]compiled
}

type compiled struct {
	mime        ai.MIMEType
	temperature *float64
	tmpl        *template.Template
}

type curriculumInput struct {
	Subject          string
	Level            curriculum.Level
	Duration         string
	FocusAreas       string
	LearningOutcomes string
}

type chatInput struct {
	Text string
}

// NewBuilder compiles every template in the catalogue.
func NewBuilder(c Catalogue) (*Builder, error) {
	b := &Builder{fallbacks: c.Fallbacks, specs: make(map[string]compiled, len(c.Prompts))}
	for name, t := range c.Prompts {
		tmpl, err := template.New(name).Option("missingkey=zero").Parse(t.Template)
		if err != nil {
			return nil, fmt.Errorf("%s template parse: %w", name, err)
		}
		b.specs[name] = compiled{mime: ai.MIMEType(t.MIMEType), temperature: t.Temperature, tmpl: tmpl}
	}
	return b, nil
}

// Default returns a builder over the built-in catalogue.
func Default() *Builder {
	b, err := NewBuilder(DefaultCatalogue())
	if err != nil {
		panic(err)
	}
	return b
}

// Curriculum renders the curriculum design prompt. Empty focus areas and
// learning outcomes are replaced by the catalogue fallbacks.
func (b *Builder) Curriculum(req curriculum.Request) (ai.GenerateRequest, error) {
	in := curriculumInput{
		Subject:          req.Subject,
		Level:            req.Level,
		Duration:         req.Duration,
		FocusAreas:       orDefault(req.FocusAreas, b.fallbacks.FocusAreas),
		LearningOutcomes: orDefault(req.LearningOutcomes, b.fallbacks.LearningOutcomes),
	}
	return b.render(NameCurriculum, ai.TaskCurriculum, in)
}

// Trends renders the market trends prompt.
func (b *Builder) Trends() (ai.GenerateRequest, error) {
	return b.render(NameTrends, ai.TaskTrends, nil)
}

// Chat wraps the user's text in the market research persona.
func (b *Builder) Chat(text string) (ai.GenerateRequest, error) {
	return b.render(NameChat, ai.TaskChat, chatInput{Text: text})
}

func (b *Builder) render(name string, task ai.TaskType, data any) (ai.GenerateRequest, error) {
	spec, ok := b.specs[name]
	if !ok {
		return ai.GenerateRequest{}, fmt.Errorf("prompt %q not in catalogue", name)
	}
	var buf bytes.Buffer
	if err := spec.tmpl.Execute(&buf, data); err != nil {
		return ai.GenerateRequest{}, fmt.Errorf("rendering %s prompt: %w", name, err)
	}
	return ai.GenerateRequest{
		Prompt:      strings.TrimSpace(buf.String()),
		MIMEType:    spec.mime,
		Temperature: spec.temperature,
		Task:        task,
	}, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
