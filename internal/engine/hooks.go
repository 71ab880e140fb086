// engine/hooks.go
package engine

import (
	"context"
	"time"
)

type Hook interface {
	OnTurnStart(ctx context.Context, st *State, node NodeID)
	OnBeforeLLM(ctx context.Context, st *State, messages []ChatMessage, toolSchemas []ToolSchema)
	OnAfterLLM(ctx context.Context, st *State, resp LLMResponse)
	OnStreamDelta(ctx context.Context, st *State, delta string) // for streaming
	OnToolCall(ctx context.Context, st *State, call ToolCall)
	OnToolResult(ctx context.Context, st *State, call ToolCall, result string, err error)
	OnConfirmRequest(ctx context.Context, st *State, pending []ToolCall)
	OnConfirmResult(ctx context.Context, st *State, res ConfirmResult)
	OnPlanCreated(ctx context.Context, st *State, steps []*ConversationStep)
	OnStepStart(ctx context.Context, st *State, step *ConversationStep)
	OnStepFinished(ctx context.Context, st *State, step *ConversationStep)
	OnHistoryChanged(ctx context.Context, st *State)
	OnCompression(ctx context.Context, st *State, beforeBytes, afterBytes int)
	OnDone(ctx context.Context, st *State)
	// Retry hooks
	OnRetryAttempt(ctx context.Context, st *State, attempt int, maxAttempts int, delay time.Duration, err error)
	OnRetryExhausted(ctx context.Context, st *State, err error)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnTurnStart(context.Context, *State, NodeID)                            {}
func (NopHook) OnBeforeLLM(context.Context, *State, []ChatMessage, []ToolSchema)       {}
func (NopHook) OnAfterLLM(context.Context, *State, LLMResponse)                        {}
func (NopHook) OnStreamDelta(context.Context, *State, string)                          {}
func (NopHook) OnToolCall(context.Context, *State, ToolCall)                           {}
func (NopHook) OnToolResult(context.Context, *State, ToolCall, string, error)          {}
func (NopHook) OnConfirmRequest(context.Context, *State, []ToolCall)                   {}
func (NopHook) OnConfirmResult(context.Context, *State, ConfirmResult)                 {}
func (NopHook) OnPlanCreated(context.Context, *State, []*ConversationStep)             {}
func (NopHook) OnStepStart(context.Context, *State, *ConversationStep)                 {}
func (NopHook) OnStepFinished(context.Context, *State, *ConversationStep)              {}
func (NopHook) OnHistoryChanged(context.Context, *State)                               {}
func (NopHook) OnCompression(context.Context, *State, int, int)                        {}
func (NopHook) OnDone(context.Context, *State)                                         {}
func (NopHook) OnRetryAttempt(context.Context, *State, int, int, time.Duration, error) {}
func (NopHook) OnRetryExhausted(context.Context, *State, error)                        {}
