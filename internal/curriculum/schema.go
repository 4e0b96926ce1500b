package curriculum

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed curriculum.schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// ValidationError reports a parsed payload that does not have the curriculum shape.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("curriculum failed schema validation: %s", strings.Join(e.Problems, "; "))
}

// Validate checks a decoded JSON value against the curriculum schema.
// Only content_plan and projects_by_industry are required; every other
// field may be absent or null but must have the right type when present.
func Validate(value any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("loading curriculum schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Problems: problems}
}
