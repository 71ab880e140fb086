package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ChatMessage is the provider-agnostic message we pass around.
// Tool messages carry the tool name plus the ToolCallID of the request
// they answer; assistant messages may carry the tool calls they issued
// (providers require tool_calls when converting back to wire format).
type ChatMessage struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content,omitempty"`
	Name       string      `json:"name,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		// Valid roles
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Role == RoleTool && m.ToolCallID == "" {
		return fmt.Errorf("tool messages must reference a tool call ID")
	}
	return nil
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// ToolMessage builds the tool-role message that answers one tool call.
func ToolMessage(content, name, toolCallID string) ChatMessage {
	return ChatMessage{Role: RoleTool, Content: content, Name: name, ToolCallID: toolCallID}
}

// FromToolCalls builds the assistant message that records a batch of
// requested tool calls before any of them runs.
func FromToolCalls(calls []ToolCall) ChatMessage {
	return ChatMessage{Role: RoleAssistant, ToolCalls: calls}
}

// Usage holds token accounting returned by providers.
type Usage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// Add accumulates usage from another call.
func (u *Usage) Add(other Usage) {
	u.Prompt += other.Prompt
	u.Completion += other.Completion
	u.Total += other.Total
}

// ToolCall represents a function/tool the assistant requested.
// Arguments holds the raw JSON string exactly as accumulated from the
// stream; it is only parsed into a map at dispatch time.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ParsedArgs normalizes Arguments into a structured map. Malformed JSON
// yields an empty map and ok=false; empty input is a valid empty map.
func (c ToolCall) ParsedArgs() (map[string]any, bool) {
	if c.Arguments == "" {
		return map[string]any{}, true
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
		return map[string]any{}, false
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, true
}

// LLMResponse is a normalized result of one chat call.
type LLMResponse struct {
	Assistant    ChatMessage
	ToolCalls    []ToolCall // zero or more tool calls requested by the model
	Usage        Usage
	FinishReason string // "stop" | "length" | "tool_calls" | "content_filter"
}

// ToolCallDelta is one streamed fragment of a tool call. Fragments
// sharing an Index belong to the same call: Arguments pieces are
// concatenated in arrival order, ID and Name stick once non-empty.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// StreamEvent represents a streaming event from the LLM.
type StreamEvent struct {
	Type  string        // "text_delta" | "tool_call_delta" | "usage"
	Text  string        // for text_delta
	Delta ToolCallDelta // for tool_call_delta
	Usage Usage         // for usage
}

// LLMClient abstracts your chosen SDK (OpenAI, Anthropic, etc.)
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error)
	// Stream issues one streaming call. Events arrive in order on the
	// first channel; the second carries at most one terminal error.
	// Both channels close when the stream ends.
	Stream(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (<-chan StreamEvent, <-chan error)
}

// ChatOptions keeps knobs you'll forward to the SDK.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
	RetryConfig     *RetryConfig // Optional retry configuration (nil = use defaults)
}

// ToolSchema is the JSON schema (or similar) the provider expects for function calling.
type ToolSchema struct {
	Name        string
	Description string
	JSONSchema  string // keep as raw JSON string for simplicity
	Retryable   bool   // Whether this tool can be retried
}

// ToolBackend abstracts the tool-invocation transport (MCP server,
// local registry). Call must be safe for concurrent use: the executor
// fans out one goroutine per pending call.
type ToolBackend interface {
	ListTools(ctx context.Context) ([]ToolSchema, error)
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// ConfirmResult is the outcome of a human confirmation round.
type ConfirmResult struct {
	Allowed bool
	Content string // raw decision token as entered
}

// Confirmer collects a human decision for a batch of pending tool
// calls. Implementations may block on input; they must honor ctx.
type Confirmer interface {
	Confirm(ctx context.Context, pending []ToolCall) (ConfirmResult, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, pending []ToolCall) (ConfirmResult, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, pending []ToolCall) (ConfirmResult, error) {
	return f(ctx, pending)
}

// ParseDecision reports whether a decision token counts as approval.
// Only "y" and "yes" qualify, case-insensitive, surrounding space ignored.
func ParseDecision(token string) bool {
	switch normalizeDecision(token) {
	case "y", "yes":
		return true
	}
	return false
}

func normalizeDecision(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
