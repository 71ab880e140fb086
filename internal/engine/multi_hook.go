package engine

import (
	"context"
	"time"
)

type Hooks []Hook

func (hs Hooks) OnTurnStart(ctx context.Context, st *State, node NodeID) {
	for _, h := range hs {
		h.OnTurnStart(ctx, st, node)
	}
}
func (hs Hooks) OnBeforeLLM(ctx context.Context, st *State, m []ChatMessage, schemas []ToolSchema) {
	for _, h := range hs {
		h.OnBeforeLLM(ctx, st, m, schemas)
	}
}
func (hs Hooks) OnAfterLLM(ctx context.Context, st *State, r LLMResponse) {
	for _, h := range hs {
		h.OnAfterLLM(ctx, st, r)
	}
}
func (hs Hooks) OnStreamDelta(ctx context.Context, st *State, d string) {
	for _, h := range hs {
		h.OnStreamDelta(ctx, st, d)
	}
}
func (hs Hooks) OnToolCall(ctx context.Context, st *State, c ToolCall) {
	for _, h := range hs {
		h.OnToolCall(ctx, st, c)
	}
}
func (hs Hooks) OnToolResult(ctx context.Context, st *State, c ToolCall, s string, e error) {
	for _, h := range hs {
		h.OnToolResult(ctx, st, c, s, e)
	}
}
func (hs Hooks) OnConfirmRequest(ctx context.Context, st *State, pending []ToolCall) {
	for _, h := range hs {
		h.OnConfirmRequest(ctx, st, pending)
	}
}
func (hs Hooks) OnConfirmResult(ctx context.Context, st *State, res ConfirmResult) {
	for _, h := range hs {
		h.OnConfirmResult(ctx, st, res)
	}
}
func (hs Hooks) OnPlanCreated(ctx context.Context, st *State, steps []*ConversationStep) {
	for _, h := range hs {
		h.OnPlanCreated(ctx, st, steps)
	}
}
func (hs Hooks) OnStepStart(ctx context.Context, st *State, step *ConversationStep) {
	for _, h := range hs {
		h.OnStepStart(ctx, st, step)
	}
}
func (hs Hooks) OnStepFinished(ctx context.Context, st *State, step *ConversationStep) {
	for _, h := range hs {
		h.OnStepFinished(ctx, st, step)
	}
}
func (hs Hooks) OnHistoryChanged(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnHistoryChanged(ctx, st)
	}
}
func (hs Hooks) OnCompression(ctx context.Context, st *State, before, after int) {
	for _, h := range hs {
		h.OnCompression(ctx, st, before, after)
	}
}
func (hs Hooks) OnDone(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnDone(ctx, st)
	}
}
func (hs Hooks) OnRetryAttempt(ctx context.Context, st *State, attempt int, maxAttempts int, delay time.Duration, err error) {
	for _, h := range hs {
		h.OnRetryAttempt(ctx, st, attempt, maxAttempts, delay, err)
	}
}
func (hs Hooks) OnRetryExhausted(ctx context.Context, st *State, err error) {
	for _, h := range hs {
		h.OnRetryExhausted(ctx, st, err)
	}
}
