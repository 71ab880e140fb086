package engine

import (
	"context"
	"fmt"
	"sync"
)

// scriptedLLM replays canned responses; each Chat or Stream call
// consumes the next script entry.
type scriptedLLM struct {
	mu      sync.Mutex
	script  []LLMResponse
	errs    []error
	calls   [][]ChatMessage
	lastOps []ChatOptions
}

func (s *scriptedLLM) next(messages []ChatMessage, opts ChatOptions) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]ChatMessage(nil), messages...))
	s.lastOps = append(s.lastOps, opts)
	idx := len(s.calls) - 1
	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	if idx < len(s.script) {
		return s.script[idx], err
	}
	if err != nil {
		return LLMResponse{}, err
	}
	return LLMResponse{Assistant: AssistantMessage("ok"), FinishReason: "stop"}, nil
}

func (s *scriptedLLM) Chat(_ context.Context, _ string, messages []ChatMessage, _ []ToolSchema, opts ChatOptions) (LLMResponse, error) {
	return s.next(messages, opts)
}

func (s *scriptedLLM) Stream(_ context.Context, _ string, messages []ChatMessage, _ []ToolSchema, opts ChatOptions) (<-chan StreamEvent, <-chan error) {
	events := make(chan StreamEvent, 16)
	errs := make(chan error, 1)
	resp, err := s.next(messages, opts)
	go func() {
		defer close(events)
		defer close(errs)
		if err != nil {
			errs <- err
			return
		}
		if resp.Assistant.Content != "" {
			events <- StreamEvent{Type: "text_delta", Text: resp.Assistant.Content}
		}
		for i, call := range resp.ToolCalls {
			events <- StreamEvent{Type: "tool_call_delta", Delta: ToolCallDelta{
				Index: i, ID: call.ID, Name: call.Name, Arguments: call.Arguments,
			}}
		}
		if resp.Usage.Total > 0 {
			events <- StreamEvent{Type: "usage", Usage: resp.Usage}
		}
	}()
	return events, errs
}

// recordingBackend answers tool calls from a canned map and records the
// order calls arrive in. A blockUntil channel lets tests force a
// completion order across concurrent calls.
type recordingBackend struct {
	mu       sync.Mutex
	results  map[string]string
	errors   map[string]error
	schemas  []ToolSchema
	received []string
	gate     map[string]chan struct{}
}

func (b *recordingBackend) ListTools(context.Context) ([]ToolSchema, error) {
	return b.schemas, nil
}

func (b *recordingBackend) Call(ctx context.Context, name string, _ map[string]any) (string, error) {
	b.mu.Lock()
	b.received = append(b.received, name)
	gate := b.gate[name]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err, ok := b.errors[name]; ok {
		return "", err
	}
	if res, ok := b.results[name]; ok {
		return res, nil
	}
	return "", fmt.Errorf("tool not found: %s", name)
}

// cannedConfirmer replays decisions without touching stdin.
type cannedConfirmer struct {
	decisions []ConfirmResult
	seen      [][]ToolCall
}

func (c *cannedConfirmer) Confirm(_ context.Context, pending []ToolCall) (ConfirmResult, error) {
	c.seen = append(c.seen, append([]ToolCall(nil), pending...))
	if len(c.decisions) == 0 {
		return ConfirmResult{Allowed: false, Content: "n"}, nil
	}
	d := c.decisions[0]
	c.decisions = c.decisions[1:]
	return d, nil
}

func noRetries() *RetryConfig {
	return &RetryConfig{
		LLMPolicy:  RetryPolicy{MaxRetries: 0},
		ToolPolicy: RetryPolicy{MaxRetries: 0},
	}
}
