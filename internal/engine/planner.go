package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vibeagent/internal/prompts"
)

// StepTemplate is one pre-authored step of a workflow template.
type StepTemplate struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
	Hint string `json:"hint,omitempty"`
}

// TemplateSource resolves a goal to a pre-authored list of steps.
// Lookup returning false means the goal has no template and the plan
// comes from the model instead.
type TemplateSource interface {
	Lookup(goal string) ([]StepTemplate, bool)
}

// Planner turns the current goal into an ordered list of pending steps.
// A matching workflow template short-circuits the model call.
type Planner struct {
	LLM       LLMClient
	Templates TemplateSource
}

// BuildPlan populates st.Plan.Steps for the current goal. Model-backend
// failures propagate; a response from which no steps can be parsed is
// not an error and falls back to a single step restating the goal.
func (p *Planner) BuildPlan(ctx context.Context, st *State, toolNames []string, opts ChatOptions, hooks Hooks) error {
	goal := st.Plan.CurrentGoal
	if goal == "" {
		return fmt.Errorf("no goal specified for planning")
	}

	if p.Templates != nil {
		if tmpl, ok := p.Templates.Lookup(goal); ok && len(tmpl) > 0 {
			steps := make([]*ConversationStep, len(tmpl))
			for i, t := range tmpl {
				steps[i] = NewConversationStep(i, t.Name, t.Goal, t.Hint)
			}
			st.Plan.Steps = steps
			st.Plan.ActiveStepID = nil
			hooks.OnPlanCreated(ctx, st, steps)
			return nil
		}
	}

	msgs := []ChatMessage{UserMessage(prompts.Planner(goal, toolNames))}
	retryConfig := getRetryConfig(opts)

	hooks.OnBeforeLLM(ctx, st, msgs, nil)
	resp, err := RetryLLMCall(ctx, retryConfig.LLMPolicy, p.LLM, st.Model, msgs, nil, opts,
		func(attempt int, delay time.Duration, retryErr error) {
			hooks.OnRetryAttempt(ctx, st, attempt, retryConfig.LLMPolicy.MaxRetries, delay, retryErr)
		})
	if err != nil {
		if IsRetryExhausted(err) {
			hooks.OnRetryExhausted(ctx, st, err)
		}
		return WrapWithContext(err, NodePlan, "llm_call", "")
	}
	st.Totals.Add(resp.Usage)
	hooks.OnAfterLLM(ctx, st, resp)

	descs := ParsePlanSteps(resp.Assistant.Content)
	if len(descs) == 0 {
		descs = []string{goal}
	}

	steps := make([]*ConversationStep, len(descs))
	for i, desc := range descs {
		steps[i] = NewConversationStep(i, fmt.Sprintf("Step %d", i+1), desc, "")
	}
	st.Plan.Steps = steps
	st.Plan.ActiveStepID = nil
	hooks.OnPlanCreated(ctx, st, steps)
	return nil
}

var planMarkers = []string{"1.", "2.", "3.", "4.", "5.", "6.", "7.", "8.", "9.", "-", "*"}

// ParsePlanSteps extracts step descriptions from a numbered or bulleted
// plan. Lines not starting with a digit, "-" or "*" are dropped, not
// merged into the previous step.
func ParsePlanSteps(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c := line[0]
		if !(c >= '0' && c <= '9') && c != '-' && c != '*' {
			continue
		}
		desc := line
		for _, marker := range planMarkers {
			if strings.HasPrefix(desc, marker) {
				desc = strings.TrimSpace(desc[len(marker):])
				break
			}
		}
		if desc != "" {
			steps = append(steps, desc)
		}
	}
	return steps
}
