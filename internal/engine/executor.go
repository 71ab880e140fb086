package engine

import (
	"context"
	"log"
	"sync"
	"time"
)

// toolResult carries one tool call outcome back from the fan-out.
type toolResult struct {
	idx     int
	content string
	err     error
	call    ToolCall
}

// ToolExecutor runs a granted batch of pending tool calls and writes the
// correlated results back into the active memory.
type ToolExecutor struct {
	LLM     LLMClient
	Backend ToolBackend
	Hooks   Hooks
	Log     *log.Logger

	// Retryable marks which tools may be retried, keyed by name.
	// Populated from the backend's tool listing.
	Retryable map[string]bool
}

func (e *ToolExecutor) logger() *log.Logger {
	if e.Log != nil {
		return e.Log
	}
	return log.Default()
}

// Execute runs the pending batch. Precondition: execution granted and
// batch non-empty; otherwise the grant flag is reset and nothing runs.
//
// The assistant request message is appended before any call runs, one
// tool message per call follows (success or failure, correlated by call
// ID), then a final streaming call with no tools produces the
// assistant's reading of the results. Pending state is reset either way.
func (e *ToolExecutor) Execute(ctx context.Context, st *State, opts ChatOptions) error {
	if !st.ToolExecutionAllowed || len(st.PendingToolCalls) == 0 {
		st.ToolExecutionAllowed = false
		return nil
	}

	calls := st.PendingToolCalls
	mem := st.ActiveMemory()
	mem.Append(FromToolCalls(calls))

	retryConfig := getRetryConfig(opts)
	results := e.fanOut(ctx, st, calls, retryConfig)

	// Request order, correlated by ID. A missing ID falls back to the
	// tool name so providers can still match the message.
	for _, r := range results {
		content := r.content
		if r.err != nil {
			content = "Tool execution failed: " + r.err.Error()
		}
		id := r.call.ID
		if id == "" {
			id = r.call.Name
		}
		mem.Append(ToolMessage(content, r.call.Name, id))
		e.Hooks.OnToolResult(ctx, st, r.call, content, r.err)
	}
	e.Hooks.OnHistoryChanged(ctx, st)

	st.ClearPending()

	// Let the model read the results. No tools offered: this call may
	// only produce text.
	resp, err := e.summarize(ctx, st, mem, opts)
	if err != nil {
		return WrapWithContext(err, NodeExecute, "llm_call", "")
	}
	st.Totals.Add(resp.Usage)
	e.Hooks.OnAfterLLM(ctx, st, resp)
	if resp.Assistant.Content != "" {
		mem.Append(resp.Assistant)
		e.Hooks.OnHistoryChanged(ctx, st)
	}

	return nil
}

// fanOut dispatches every call on its own goroutine and collects
// results indexed by request order.
func (e *ToolExecutor) fanOut(ctx context.Context, st *State, calls []ToolCall, retryConfig *RetryConfig) []toolResult {
	var wg sync.WaitGroup
	results := make([]toolResult, len(calls))

	for i, call := range calls {
		wg.Add(1)
		go func(i int, c ToolCall) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[i] = toolResult{idx: i, err: ctx.Err(), call: c}
				return
			default:
			}

			e.Hooks.OnToolCall(ctx, st, c)

			args, ok := c.ParsedArgs()
			if !ok {
				e.logger().Printf("warn: tool %s arguments are not valid JSON, using empty args", c.Name)
			}

			res, err := RetryToolCall(
				ctx,
				retryConfig.ToolPolicy,
				e.Backend,
				c,
				args,
				e.Retryable[c.Name],
				func(attempt int, delay time.Duration, retryErr error) {
					e.Hooks.OnRetryAttempt(ctx, st, attempt, retryConfig.ToolPolicy.MaxRetries, delay, retryErr)
				},
			)
			if IsRetryExhausted(err) {
				e.Hooks.OnRetryExhausted(ctx, st, err)
			}
			results[i] = toolResult{idx: i, content: res, err: err, call: c}
		}(i, call)
	}

	wg.Wait()
	return results
}

// summarize streams the model's reading of the tool results.
func (e *ToolExecutor) summarize(ctx context.Context, st *State, mem *Memory, opts ChatOptions) (LLMResponse, error) {
	msgs := append([]ChatMessage(nil), mem.All()...)
	e.Hooks.OnBeforeLLM(ctx, st, msgs, nil)

	events, errs := e.LLM.Stream(ctx, st.Model, msgs, nil, opts)
	return CollectStream(ctx, events, errs, func(d string) {
		e.Hooks.OnStreamDelta(ctx, st, d)
	})
}
