package prompts

import (
	"fmt"
	"strings"
)

// PromptBuilder helps compose prompts from fragments and variables.
type PromptBuilder struct {
	basePrompt *Prompt
	fragments  []string
	variables  map[string]string
}

// NewPromptBuilder creates a new prompt builder based on a registered prompt.
func NewPromptBuilder(registry *PromptRegistry, id string, version PromptVersion) (*PromptBuilder, error) {
	basePrompt, err := registry.Get(id, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get base prompt: %w", err)
	}

	return &PromptBuilder{
		basePrompt: basePrompt,
		fragments:  []string{basePrompt.Content},
		variables:  make(map[string]string),
	}, nil
}

// AddFragment appends a fragment to the prompt.
func (b *PromptBuilder) AddFragment(text string) *PromptBuilder {
	b.fragments = append(b.fragments, text)
	return b
}

// SetVariable sets a variable for template substitution.
func (b *PromptBuilder) SetVariable(key, value string) *PromptBuilder {
	b.variables[key] = value
	return b
}

// Build constructs the final prompt string.
func (b *PromptBuilder) Build() (string, error) {
	// Join fragments
	result := strings.Join(b.fragments, "\n\n")

	// Replace variables (simple {{key}} substitution)
	for key, value := range b.variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result, nil
}

// MustBuild builds the prompt and panics on unresolved base prompts.
// Intended for prompts registered at init time, where absence is a
// programming error.
func MustBuild(registry *PromptRegistry, id string, vars map[string]string) string {
	b, err := NewPromptBuilder(registry, id, PromptV1)
	if err != nil {
		panic(err)
	}
	for k, v := range vars {
		b.SetVariable(k, v)
	}
	out, err := b.Build()
	if err != nil {
		panic(err)
	}
	return out
}
