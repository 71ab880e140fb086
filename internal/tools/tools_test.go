package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vibeagent/internal/engine"
)

func TestBuiltinRegistryListsAllTools(t *testing.T) {
	reg := NewBuiltinRegistry()

	schemas, err := reg.ListTools(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"calculator": false, "current_time": false, "think": false}
	for _, s := range schemas {
		if _, ok := want[s.Name]; !ok {
			t.Errorf("unexpected tool %s", s.Name)
			continue
		}
		want[s.Name] = true
		if s.JSONSchema == "" || s.Description == "" {
			t.Errorf("tool %s missing schema or description", s.Name)
		}
		if !s.Retryable {
			t.Errorf("builtin tool %s should be retryable", s.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %s not listed", name)
		}
	}
}

func TestCalculator(t *testing.T) {
	reg := NewBuiltinRegistry()
	ctx := context.Background()

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr bool
	}{
		{"add", map[string]any{"operation": "add", "a": 1.0, "b": 2.0}, `"result":3`, false},
		{"subtract", map[string]any{"operation": "subtract", "a": 5.0, "b": 2.0}, `"result":3`, false},
		{"multiply", map[string]any{"operation": "multiply", "a": 3.0, "b": 4.0}, `"result":12`, false},
		{"divide", map[string]any{"operation": "divide", "a": 9.0, "b": 3.0}, `"result":3`, false},
		{"divide by zero", map[string]any{"operation": "divide", "a": 1.0, "b": 0.0}, "", true},
		{"bad operation rejected by schema", map[string]any{"operation": "modulo", "a": 1.0, "b": 2.0}, "", true},
		{"missing operand rejected by schema", map[string]any{"operation": "add", "a": 1.0}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Call(ctx, "calculator", tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("result = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestCalculatorSchemaValidationErrorType(t *testing.T) {
	reg := NewBuiltinRegistry()
	_, err := reg.Call(context.Background(), "calculator", map[string]any{"operation": "add"})
	if err == nil {
		t.Fatal("missing operands must fail validation")
	}
	var vErr *engine.ToolValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("expected a validation error, got %T: %v", err, err)
	}
}

func TestCurrentTime(t *testing.T) {
	reg := NewBuiltinRegistry()
	ctx := context.Background()

	got, err := reg.Call(ctx, "current_time", map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "UTC") {
		t.Errorf("default timezone must be UTC: %q", got)
	}

	got, err = reg.Call(ctx, "current_time", map[string]any{"timezone": "Europe/Paris"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Europe/Paris") {
		t.Errorf("timezone not honored: %q", got)
	}

	if _, err := reg.Call(ctx, "current_time", map[string]any{"timezone": "Not/AZone"}); err == nil {
		t.Error("invalid timezone must error")
	}
}

func TestThink(t *testing.T) {
	reg := NewBuiltinRegistry()
	ctx := context.Background()

	got, err := reg.Call(ctx, "think", map[string]any{"reasoning": "checking the plan"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "noted") {
		t.Errorf("think result = %q", got)
	}

	if _, err := reg.Call(ctx, "think", map[string]any{"reasoning": ""}); err == nil {
		t.Error("empty reasoning must error")
	}
}

func TestUnknownToolName(t *testing.T) {
	reg := NewBuiltinRegistry()
	if _, err := reg.Call(context.Background(), "nope", nil); err == nil {
		t.Error("unknown tool must error")
	}
}
