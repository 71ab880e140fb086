package engine

import (
	"context"
	"time"
)

// Event is one item of the agent-facing output stream. Consumers render
// Content incrementally; the "turn_done" event carries the updated
// session state snapshot and marks turn completion.
type Event struct {
	Kind    string      `json:"kind"` // "delta", "message", "tool_start", "tool_done", "confirm_request", "step_start", "step_done", "turn_done", "retry_attempt", "retry_exhausted"
	Role    MessageRole `json:"role,omitempty"`
	Content string      `json:"content,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// ChannelHook bridges engine → consumer channel (CLI, web UI).
type ChannelHook struct{ Ch chan<- Event }

func (h ChannelHook) OnTurnStart(_ context.Context, _ *State, node NodeID) {
	h.Ch <- Event{Kind: "turn_start", Data: string(node)}
}
func (h ChannelHook) OnBeforeLLM(_ context.Context, _ *State, m []ChatMessage, schemas []ToolSchema) {
	h.Ch <- Event{Kind: "before_llm", Data: map[string]any{"messages": len(m), "tools": len(schemas)}}
}
func (h ChannelHook) OnAfterLLM(_ context.Context, _ *State, r LLMResponse) {
	h.Ch <- Event{Kind: "after_llm", Data: r.FinishReason}
}
func (h ChannelHook) OnStreamDelta(_ context.Context, _ *State, d string) {
	h.Ch <- Event{Kind: "delta", Role: RoleAssistant, Content: d}
}
func (h ChannelHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.Ch <- Event{Kind: "tool_start", Data: c.Name}
}
func (h ChannelHook) OnToolResult(_ context.Context, _ *State, c ToolCall, result string, _ error) {
	h.Ch <- Event{Kind: "tool_done", Role: RoleTool, Content: result, Data: c.Name}
}
func (h ChannelHook) OnConfirmRequest(_ context.Context, _ *State, pending []ToolCall) {
	names := make([]string, 0, len(pending))
	for _, c := range pending {
		names = append(names, c.Name)
	}
	h.Ch <- Event{Kind: "confirm_request", Data: names}
}
func (h ChannelHook) OnConfirmResult(_ context.Context, _ *State, res ConfirmResult) {
	h.Ch <- Event{Kind: "confirm_result", Data: res.Allowed}
}
func (h ChannelHook) OnPlanCreated(_ context.Context, st *State, steps []*ConversationStep) {
	h.Ch <- Event{Kind: "plan_created", Data: map[string]any{"goal": st.Plan.CurrentGoal, "steps": len(steps)}}
}
func (h ChannelHook) OnStepStart(_ context.Context, _ *State, step *ConversationStep) {
	h.Ch <- Event{Kind: "step_start", Data: step.StepID}
}
func (h ChannelHook) OnStepFinished(_ context.Context, _ *State, step *ConversationStep) {
	h.Ch <- Event{Kind: "step_done", Data: map[string]any{"id": step.StepID, "status": string(step.Status)}}
}
func (h ChannelHook) OnHistoryChanged(_ context.Context, st *State) {
	h.Ch <- Event{Kind: "history_changed", Data: st.History.Len()}
}
func (h ChannelHook) OnCompression(_ context.Context, _ *State, before, after int) {
	h.Ch <- Event{Kind: "compression", Data: map[string]int{"before": before, "after": after}}
}
func (h ChannelHook) OnDone(_ context.Context, st *State) {
	h.Ch <- Event{Kind: "turn_done", Data: st}
}
func (h ChannelHook) OnRetryAttempt(_ context.Context, _ *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	h.Ch <- Event{Kind: "retry_attempt", Data: map[string]any{
		"attempt":     attempt,
		"maxAttempts": maxAttempts,
		"delay":       delay,
		"error":       err.Error(),
	}}
}
func (h ChannelHook) OnRetryExhausted(_ context.Context, _ *State, err error) {
	h.Ch <- Event{Kind: "retry_exhausted", Data: err.Error()}
}
