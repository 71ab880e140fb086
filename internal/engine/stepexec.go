package engine

import (
	"context"

	"vibeagent/internal/prompts"
)

// StepExecutor activates plan steps and folds their outcomes back into
// the parent conversation.
type StepExecutor struct {
	Hooks Hooks
}

// Activate marks the next pending step in_progress, points the plan at
// it and seeds its isolated history with the step-scoped system message.
// Returns nil when the plan is exhausted; the plan is cleared in that
// case (goal, steps, pointer).
func (se *StepExecutor) Activate(ctx context.Context, st *State, toolNames []string) *ConversationStep {
	step := st.Plan.NextPending()
	if step == nil {
		return nil
	}

	prev := st.Plan.PreviousResults(step.StepID)
	step.History.Append(SystemMessage(prompts.Step(step.Goal, step.Hint, toolNames, prev)))
	se.Hooks.OnStepStart(ctx, st, step)
	return step
}

// Finish moves the step to a terminal status and appends the fold-back
// summary to the parent conversation. The summary line is the only
// information that crosses the step boundary upward. The active pointer
// is released here so it only ever references an in_progress step.
func (se *StepExecutor) Finish(ctx context.Context, st *State, step *ConversationStep, status StepStatus) {
	if step == nil || step.Terminal() {
		return
	}
	if err := step.SetStatus(status); err != nil {
		return
	}
	if st.Plan.ActiveStepID != nil && *st.Plan.ActiveStepID == step.StepID {
		st.Plan.ActiveStepID = nil
	}
	st.History.Append(AssistantMessage(step.FoldBackSummary()))
	se.Hooks.OnStepFinished(ctx, st, step)
}
