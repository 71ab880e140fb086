// engine/hook_logger.go
package engine

import (
	"context"
	"log"
	"time"
)

type LoggerHook struct{ L *log.Logger }

func (h LoggerHook) OnTurnStart(_ context.Context, st *State, node NodeID) {
	h.L.Printf("node=%s history=%d pending=%d", node, st.History.Len(), len(st.PendingToolCalls))
}
func (h LoggerHook) OnBeforeLLM(_ context.Context, st *State, msgs []ChatMessage, toolSchemas []ToolSchema) {
	h.L.Printf("llm → model=%s msgs=%d tools=%d (cumulative tokens=%d)",
		st.Model, len(msgs), len(toolSchemas), st.Totals.Total)
}
func (h LoggerHook) OnAfterLLM(_ context.Context, st *State, r LLMResponse) {
	h.L.Printf("finish=%s tokens: prompt=%d completion=%d total=%d (cumulative=%d)",
		r.FinishReason, r.Usage.Prompt, r.Usage.Completion, r.Usage.Total, st.Totals.Total)
}
func (h LoggerHook) OnStreamDelta(_ context.Context, _ *State, _ string) { /* rendered by the UI hook */ }
func (h LoggerHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.L.Printf("tool → %s args=%s", c.Name, previewText(c.Arguments, 100))
}
func (h LoggerHook) OnToolResult(_ context.Context, _ *State, c ToolCall, result string, err error) {
	if err != nil {
		h.L.Printf("tool %s error: %v", c.Name, err)
	} else {
		h.L.Printf("tool %s result: %s", c.Name, previewText(result, 100))
	}
}
func (h LoggerHook) OnConfirmRequest(_ context.Context, _ *State, pending []ToolCall) {
	names := make([]string, 0, len(pending))
	for _, c := range pending {
		names = append(names, c.Name)
	}
	h.L.Printf("confirm? %v", names)
}
func (h LoggerHook) OnConfirmResult(_ context.Context, _ *State, res ConfirmResult) {
	h.L.Printf("confirm: allowed=%v", res.Allowed)
}
func (h LoggerHook) OnPlanCreated(_ context.Context, st *State, steps []*ConversationStep) {
	h.L.Printf("plan: goal=%q steps=%d", st.Plan.CurrentGoal, len(steps))
}
func (h LoggerHook) OnStepStart(_ context.Context, _ *State, step *ConversationStep) {
	h.L.Printf("step %d start: %s", step.StepID, step.Name)
}
func (h LoggerHook) OnStepFinished(_ context.Context, _ *State, step *ConversationStep) {
	h.L.Printf("step %d %s", step.StepID, step.Status)
}
func (h LoggerHook) OnHistoryChanged(_ context.Context, _ *State) {}
func (h LoggerHook) OnCompression(_ context.Context, _ *State, before, after int) {
	h.L.Printf("memory compressed: %dB → %dB", before, after)
}
func (h LoggerHook) OnDone(_ context.Context, st *State) {
	h.L.Printf("done: tokens=%d", st.Totals.Total)
}
func (h LoggerHook) OnRetryAttempt(_ context.Context, _ *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	h.L.Printf("retry attempt=%d/%d delay=%v error=%v", attempt, maxAttempts, delay, err)
}
func (h LoggerHook) OnRetryExhausted(_ context.Context, _ *State, err error) {
	h.L.Printf("retries exhausted: %v", err)
}

func previewText(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
