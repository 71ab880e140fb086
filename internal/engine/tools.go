package engine

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is an in-process tool exposed to the model.
type Tool struct {
	Name        string
	Description string
	SchemaJSON  string
	Fn          ToolFunc
	Retryable   bool // Whether this tool can be retried (true for idempotent tools)
}

// ValidateArgs validates the provided arguments against the tool's JSON schema.
func (t Tool) ValidateArgs(args map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errorMsgs []string
		for _, err := range result.Errors() {
			errorMsgs = append(errorMsgs, err.String())
		}
		return &ToolValidationError{
			ToolName: t.Name,
			Errors:   errorMsgs,
		}
	}

	return nil
}

// ToolRegistry is an in-process ToolBackend: tools run as plain Go
// functions after schema validation.
type ToolRegistry map[string]Tool

func (r ToolRegistry) Schemas() []ToolSchema {
	s := make([]ToolSchema, 0, len(r))
	for _, t := range r {
		s = append(s, ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			JSONSchema:  t.SchemaJSON,
			Retryable:   t.Retryable,
		})
	}
	return s
}

// ListTools implements ToolBackend.
func (r ToolRegistry) ListTools(_ context.Context) ([]ToolSchema, error) {
	return r.Schemas(), nil
}

// Call implements ToolBackend: validate, then invoke.
func (r ToolRegistry) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := r[name]
	if !ok {
		return "", fmt.Errorf("tool not found: %s", name)
	}
	if err := tool.ValidateArgs(args); err != nil {
		return "", err
	}
	return tool.Fn(ctx, args)
}
