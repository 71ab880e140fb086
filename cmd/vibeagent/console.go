package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"vibeagent/internal/engine"
	"vibeagent/internal/prompts"
)

// consoleHook renders engine activity to the terminal. Model text is
// streamed through OnStreamDelta; everything else prints as short
// status lines.
type consoleHook struct {
	engine.NopHook
	out      io.Writer
	streamed bool
}

func newConsoleHook(out io.Writer) *consoleHook {
	return &consoleHook{out: out}
}

// BeginTurn resets per-turn rendering state.
func (h *consoleHook) BeginTurn() { h.streamed = false }

// Streamed reports whether any model text was streamed this turn.
func (h *consoleHook) Streamed() bool { return h.streamed }

func (h *consoleHook) OnStreamDelta(_ context.Context, _ *engine.State, delta string) {
	h.streamed = true
	fmt.Fprint(h.out, delta)
}

func (h *consoleHook) OnAfterLLM(_ context.Context, _ *engine.State, resp engine.LLMResponse) {
	if resp.Assistant.Content != "" {
		fmt.Fprintln(h.out)
	}
}

func (h *consoleHook) OnToolCall(_ context.Context, _ *engine.State, call engine.ToolCall) {
	fmt.Fprintf(h.out, "⚙️  %s(%s)\n", call.Name, call.Arguments)
}

func (h *consoleHook) OnToolResult(_ context.Context, _ *engine.State, call engine.ToolCall, result string, err error) {
	if err != nil {
		fmt.Fprintf(h.out, "❌ %s: %v\n", call.Name, err)
		return
	}
	fmt.Fprintf(h.out, "✅ %s → %s\n", call.Name, preview(result, 200))
}

func (h *consoleHook) OnPlanCreated(_ context.Context, _ *engine.State, steps []*engine.ConversationStep) {
	fmt.Fprintf(h.out, "\n📋 Plan (%d steps):\n", len(steps))
	for _, s := range steps {
		fmt.Fprintf(h.out, "  %d. %s\n", s.StepID+1, s.Goal)
	}
}

func (h *consoleHook) OnStepStart(_ context.Context, _ *engine.State, step *engine.ConversationStep) {
	fmt.Fprintf(h.out, "\n▶️  Step %d: %s\n", step.StepID+1, step.Goal)
}

func (h *consoleHook) OnStepFinished(_ context.Context, _ *engine.State, step *engine.ConversationStep) {
	fmt.Fprintf(h.out, "%s\n", step.FoldBackSummary())
}

func (h *consoleHook) OnCompression(_ context.Context, _ *engine.State, beforeBytes, afterBytes int) {
	fmt.Fprintf(h.out, "🗜  History compressed: %d → %d bytes\n", beforeBytes, afterBytes)
}

func (h *consoleHook) OnRetryAttempt(_ context.Context, _ *engine.State, attempt, maxAttempts int, delay time.Duration, err error) {
	fmt.Fprintf(h.out, "↻ Retry %d/%d in %s: %v\n", attempt, maxAttempts, delay.Round(time.Millisecond), err)
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// stdinConfirmer prompts on the terminal for each pending batch and
// parses the reply with the engine's decision rules.
type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c *stdinConfirmer) Confirm(ctx context.Context, pending []engine.ToolCall) (engine.ConfirmResult, error) {
	views := make([]prompts.CallView, len(pending))
	for i, call := range pending {
		views[i] = prompts.CallView{Name: call.Name, Args: call.Arguments}
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, prompts.ToolCallMarkdown(views))
	fmt.Fprint(c.out, "Run these tools? [y/N] ")

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return engine.ConfirmResult{}, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.line == "" {
			return engine.ConfirmResult{}, a.err
		}
		return engine.ConfirmResult{
			Allowed: engine.ParseDecision(a.line),
			Content: a.line,
		}, nil
	}
}
