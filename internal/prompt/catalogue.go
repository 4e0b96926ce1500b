package prompt

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// Catalogue is the YAML-declared set of prompt templates.
type Catalogue struct {
	Version   int                 `yaml:"version"`
	Fallbacks Fallbacks           `yaml:"fallbacks"`
	Prompts   map[string]Template `yaml:"prompts"`
}

// Fallbacks fill optional form fields the user left empty.
type Fallbacks struct {
	FocusAreas       string `yaml:"focus_areas"`
	LearningOutcomes string `yaml:"learning_outcomes"`
}

// Template declares one prompt.
type Template struct {
	MIMEType    string   `yaml:"mime_type"`
	Temperature *float64 `yaml:"temperature"`
	Template    string   `yaml:"template"`
}

// Prompt names the catalogue must declare.
const (
	NameCurriculum = "curriculum"
	NameTrends     = "trends"
	NameChat       = "chat"
)

// ParseCatalogue decodes and checks a YAML catalogue.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalogue{}, fmt.Errorf("parsing prompt catalogue: %w", err)
	}
	if c.Version <= 0 {
		return Catalogue{}, fmt.Errorf("prompt catalogue: invalid version %d", c.Version)
	}
	if c.Fallbacks.FocusAreas == "" || c.Fallbacks.LearningOutcomes == "" {
		return Catalogue{}, fmt.Errorf("prompt catalogue: fallbacks must not be empty")
	}
	for _, name := range []string{NameCurriculum, NameTrends, NameChat} {
		t, ok := c.Prompts[name]
		if !ok || t.Template == "" {
			return Catalogue{}, fmt.Errorf("prompt catalogue: missing prompt %q", name)
		}
		if t.MIMEType == "" {
			return Catalogue{}, fmt.Errorf("prompt catalogue: prompt %q has no mime_type", name)
		}
	}
	return c, nil
}

// DefaultCatalogue returns the built-in catalogue.
func DefaultCatalogue() Catalogue {
	c, err := ParseCatalogue(defaultCatalogue)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalogue reads a catalogue from path, or returns the built-in one
// when path is empty.
func LoadCatalogue(path string) (Catalogue, error) {
	if path == "" {
		return DefaultCatalogue(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("reading prompt catalogue: %w", err)
	}
	c, err := ParseCatalogue(data)
	if err != nil {
		return Catalogue{}, err
	}
	slog.Info("prompt catalogue loaded", "path", path, "version", c.Version, "prompts", len(c.Prompts))
	return c, nil
}
