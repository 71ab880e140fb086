package engine

// WorkflowMode selects how user prompts are routed: plain chat turns,
// or goal decomposition into plan steps.
type WorkflowMode string

const (
	WorkflowChat WorkflowMode = "chat"
	WorkflowPlan WorkflowMode = "plan"
)

// State is the full agent/session data model. It is the only mutable
// structure the state machine touches, and it round-trips through JSON
// for session persistence and UI sync.
type State struct {
	History *Memory `json:"history"` // Parent conversation
	Plan    Plan    `json:"plan"`

	PendingToolCalls     []ToolCall `json:"pending_tool_calls,omitempty"`
	ToolExecutionAllowed bool       `json:"tool_execution_allowed"`

	YoloMode bool         `json:"yolo_mode"`
	Workflow WorkflowMode `json:"workflow_mode"`
	ExitChat bool         `json:"exit_chat"`

	Model  string `json:"model"`
	Totals Usage  `json:"totals"` // Accumulated token usage across all calls
}

// NewState creates a session state seeded with a system prompt.
func NewState(model, systemPrompt string) *State {
	st := &State{
		History:  NewMemory(),
		Workflow: WorkflowChat,
		Model:    model,
	}
	if systemPrompt != "" {
		st.History.Append(SystemMessage(systemPrompt))
	}
	return st
}

// ActiveMemory returns the memory the current turn writes into: the
// active step's isolated history in plan mode, the parent otherwise.
func (s *State) ActiveMemory() *Memory {
	if step := s.Plan.ActiveStep(); step != nil {
		return step.History
	}
	return s.History
}

// ClearPending drops the pending tool calls and the execution grant.
func (s *State) ClearPending() {
	s.PendingToolCalls = nil
	s.ToolExecutionAllowed = false
}
