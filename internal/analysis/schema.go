package analysis

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidShape means a parsed response lacks summary, risks or opportunities.
var ErrInvalidShape = errors.New("analysis response missing required fields")

const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["summary", "risks", "opportunities"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "risks": {"type": "array"},
    "opportunities": {"type": "array"}
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", strings.NewReader(resultSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("analysis.json")
})

// Validate checks that a parsed response carries the fields every analysis must have.
func Validate(parsed map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return nil
}
