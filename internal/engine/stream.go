package engine

import (
	"context"
	"sort"
)

// ToolCallAccumulator rebuilds complete tool calls from streamed
// fragments. Fragments are keyed by stream index: argument pieces
// concatenate in arrival order, ID and Name stick at the last non-empty
// value seen. Calls come back ordered by index.
type ToolCallAccumulator struct {
	byIndex map[int]*ToolCall
	order   []int
}

// NewToolCallAccumulator creates an empty accumulator.
func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{byIndex: make(map[int]*ToolCall)}
}

// Add folds one fragment into the accumulator.
func (a *ToolCallAccumulator) Add(d ToolCallDelta) {
	call, ok := a.byIndex[d.Index]
	if !ok {
		call = &ToolCall{}
		a.byIndex[d.Index] = call
		a.order = append(a.order, d.Index)
	}
	if d.ID != "" {
		call.ID = d.ID
	}
	if d.Name != "" {
		call.Name = d.Name
	}
	call.Arguments += d.Arguments
}

// Calls returns the accumulated tool calls ordered by stream index.
func (a *ToolCallAccumulator) Calls() []ToolCall {
	sort.Ints(a.order)
	out := make([]ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		out = append(out, *a.byIndex[idx])
	}
	return out
}

// Len reports how many distinct calls have been seen.
func (a *ToolCallAccumulator) Len() int {
	return len(a.byIndex)
}

// CollectStream drains a provider stream into a normalized response.
// Text deltas are forwarded to onText as they arrive (nil is allowed)
// and joined into the assistant message; tool call fragments are
// accumulated into complete calls. A partial transcript collected
// before a stream error is returned alongside that error.
func CollectStream(ctx context.Context, events <-chan StreamEvent, errs <-chan error, onText func(string)) (LLMResponse, error) {
	var (
		text  string
		acc   = NewToolCallAccumulator()
		usage Usage
	)

	finish := func(err error) (LLMResponse, error) {
		resp := LLMResponse{
			Assistant: ChatMessage{Role: RoleAssistant, Content: text},
			ToolCalls: acc.Calls(),
			Usage:     usage,
		}
		resp.Assistant.ToolCalls = resp.ToolCalls
		if len(resp.ToolCalls) > 0 {
			resp.FinishReason = "tool_calls"
		} else {
			resp.FinishReason = "stop"
		}
		return resp, err
	}

	for {
		select {
		case <-ctx.Done():
			return finish(ctx.Err())
		case ev, ok := <-events:
			if !ok {
				// Providers send the terminal error, if any, before
				// closing; a closed error channel reads as nil.
				if errs != nil {
					return finish(<-errs)
				}
				return finish(nil)
			}
			switch ev.Type {
			case "text_delta":
				text += ev.Text
				if onText != nil && ev.Text != "" {
					onText(ev.Text)
				}
			case "tool_call_delta":
				acc.Add(ev.Delta)
			case "usage":
				usage.Add(ev.Usage)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return finish(err)
			}
		}
	}
}
