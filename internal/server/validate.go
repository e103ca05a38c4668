package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const predictSchemaURL = "schema://predict-request.json"

// predictSchema mirrors the host-side checks on a scoring request. The core
// does not re-validate, so every range it relies on is enforced here.
var predictSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"userId": map[string]any{"type": "string", "maxLength": 128},
		"quizScore": map[string]any{
			"type": "number", "minimum": 0, "maximum": 1,
		},
		"timePerQuestionSec": map[string]any{
			"type":     "array",
			"maxItems": 10000,
			"items":    map[string]any{"type": "number", "minimum": 0},
		},
		"videoReplays": map[string]any{"type": "integer", "minimum": 0},
		"perceivedDifficulty": map[string]any{
			"type": "integer", "minimum": 1, "maximum": 5,
		},
	},
	"required": []any{"quizScore"},
}

var compiledPredictSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// The compiler wants a plain decoded JSON value, so round-trip the
	// Go literal through encoding/json.
	raw, err := json.Marshal(predictSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(predictSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(predictSchemaURL)
})

// ValidationError reports a request body that failed validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// validatePredictBody checks raw against the scoring request schema.
// It returns *ValidationError for client mistakes.
func validatePredictBody(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledPredictSchema()
	if err != nil {
		return fmt.Errorf("compile predict schema: %w", err)
	}

	if err := schema.Validate(parsed); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
