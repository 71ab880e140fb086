package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestAgent(llm LLMClient, backend ToolBackend, confirmer Confirmer, templates TemplateSource) *Agent {
	cfg := EngineConfig{RetryConfig: noRetries()}
	a := NewAgent(llm, backend, confirmer, Hooks{}, cfg, templates, nil)
	if err := a.Init(context.Background()); err != nil {
		panic(err)
	}
	return a
}

func TestRunTurnChatWithApprovedTool(t *testing.T) {
	backend := &recordingBackend{
		schemas: []ToolSchema{{Name: "add", Description: "adds", JSONSchema: "{}", Retryable: true}},
		results: map[string]string{"add": "2"},
	}
	llm := &scriptedLLM{script: []LLMResponse{
		{ToolCalls: []ToolCall{{ID: "c1", Name: "add", Arguments: `{"a":1,"b":1}`}}, FinishReason: "tool_calls"},
		{Assistant: AssistantMessage("1+1 is 2."), FinishReason: "stop"},
	}}
	confirmer := &cannedConfirmer{decisions: []ConfirmResult{{Allowed: true, Content: "y"}}}

	a := newTestAgent(llm, backend, confirmer, nil)
	st := NewState("m", "sys")

	if err := a.RunTurn(context.Background(), st, "what is 1+1?"); err != nil {
		t.Fatal(err)
	}

	if len(st.PendingToolCalls) != 0 || st.ToolExecutionAllowed {
		t.Error("turn must end with pending state reset")
	}
	if len(backend.received) != 1 || backend.received[0] != "add" {
		t.Errorf("backend calls = %v", backend.received)
	}

	var sawRequest, sawResult, sawSummary bool
	for _, m := range st.History.All() {
		switch m.Role {
		case RoleAssistant:
			if len(m.ToolCalls) > 0 {
				sawRequest = true
			}
			if strings.Contains(m.Content, "1+1 is 2.") {
				sawSummary = true
			}
		case RoleTool:
			if m.ToolCallID == "c1" && m.Content == "2" {
				sawResult = true
			}
		}
	}
	if !sawRequest || !sawResult || !sawSummary {
		t.Errorf("history incomplete: request=%v result=%v summary=%v\n%+v",
			sawRequest, sawResult, sawSummary, st.History.All())
	}
}

func TestRunTurnDenialScenario(t *testing.T) {
	backend := &recordingBackend{
		schemas: []ToolSchema{{Name: "delete_file", JSONSchema: "{}"}},
		results: map[string]string{"delete_file": "deleted"},
	}
	llm := &scriptedLLM{script: []LLMResponse{
		{ToolCalls: []ToolCall{{ID: "c1", Name: "delete_file", Arguments: "{}"}}, FinishReason: "tool_calls"},
	}}
	confirmer := &cannedConfirmer{decisions: []ConfirmResult{{Allowed: false, Content: "n"}}}

	a := newTestAgent(llm, backend, confirmer, nil)
	st := NewState("m", "")

	if err := a.RunTurn(context.Background(), st, "remove it"); err != nil {
		t.Fatal(err)
	}

	if len(st.PendingToolCalls) != 0 {
		t.Error("denial must clear pending calls")
	}
	if len(backend.received) != 0 {
		t.Error("denied tools must not run")
	}
	last := st.History.Messages[st.History.Len()-1]
	if last.Role != RoleAssistant || !strings.Contains(last.Content, "delete_file") {
		t.Errorf("expected assistant denial message naming delete_file, got %+v", last)
	}
}

func TestRunTurnPlanWorkflowYolo(t *testing.T) {
	backend := &recordingBackend{
		schemas: []ToolSchema{{Name: "add", JSONSchema: "{}", Retryable: true}},
		results: map[string]string{"add": "2"},
	}
	llm := &scriptedLLM{script: []LLMResponse{
		// planner
		{Assistant: AssistantMessage("1. Use add to compute 1+1\n2. Use add to add 2+2"), FinishReason: "stop"},
		// step 0 model call
		{ToolCalls: []ToolCall{{ID: "s0", Name: "add", Arguments: `{"a":1,"b":1}`}}, FinishReason: "tool_calls"},
		// step 0 summarization
		{Assistant: AssistantMessage("got 2"), FinishReason: "stop"},
		// step 1 model call
		{ToolCalls: []ToolCall{{ID: "s1", Name: "add", Arguments: `{"a":2,"b":2}`}}, FinishReason: "tool_calls"},
		// step 1 summarization
		{Assistant: AssistantMessage("got 4"), FinishReason: "stop"},
	}}

	a := newTestAgent(llm, backend, &cannedConfirmer{}, nil)
	st := NewState("m", "")
	st.YoloMode = true

	if err := a.RunTurn(context.Background(), st, "/goal Compute 1+1 then 2+2"); err != nil {
		t.Fatal(err)
	}

	if !st.Plan.Empty() || st.Plan.CurrentGoal != "" {
		t.Error("completed plan must be cleared")
	}
	if len(backend.received) != 2 {
		t.Errorf("expected 2 tool executions, got %v", backend.received)
	}

	joined := ""
	for _, m := range st.History.All() {
		joined += m.Content + "\n"
	}
	if !strings.Contains(joined, "All steps completed!") {
		t.Error("missing completion message in parent history")
	}
	if strings.Count(joined, "✅ Step") != 2 {
		t.Errorf("expected 2 fold-back summaries, history:\n%s", joined)
	}
	// Step transcripts stay isolated: tool messages never reach the parent.
	for _, m := range st.History.All() {
		if m.Role == RoleTool {
			t.Error("step tool messages leaked into the parent history")
		}
	}
}

func TestRunTurnModelFailureIsResumable(t *testing.T) {
	backend := &recordingBackend{schemas: []ToolSchema{}}
	llm := &scriptedLLM{
		errs: []error{errors.New("401 unauthorized")},
		script: []LLMResponse{
			{}, // consumed by the failing call
			{Assistant: AssistantMessage("recovered"), FinishReason: "stop"},
		},
	}

	a := newTestAgent(llm, backend, &cannedConfirmer{}, nil)
	st := NewState("m", "")

	if err := a.RunTurn(context.Background(), st, "hello"); err == nil {
		t.Fatal("model failure must escape to the caller")
	}
	if len(st.PendingToolCalls) != 0 || st.ToolExecutionAllowed {
		t.Error("failed turn must leave pending state clean")
	}
	last := st.History.Messages[st.History.Len()-1]
	if last.Role != RoleAssistant || !strings.Contains(last.Content, "went wrong") {
		t.Errorf("expected visible error message, got %+v", last)
	}

	if err := a.RunTurn(context.Background(), st, "try again"); err != nil {
		t.Fatalf("machine must be resumable after a failed turn: %v", err)
	}
}

func TestRunTurnStepModelFailureIsResumable(t *testing.T) {
	backend := &recordingBackend{schemas: []ToolSchema{{Name: "add", JSONSchema: "{}"}}}
	llm := &scriptedLLM{
		errs: []error{nil, errors.New("503 service unavailable")},
		script: []LLMResponse{
			// planner
			{Assistant: AssistantMessage("1. First thing\n2. Second thing"), FinishReason: "stop"},
			{}, // consumed by the failing step model call
			// parent reply to the follow-up turn
			{Assistant: AssistantMessage("picking up where we left off"), FinishReason: "stop"},
			// step 2 model call produces no tool calls, so the step fails
			{Assistant: AssistantMessage("cannot do this"), FinishReason: "stop"},
		},
	}

	a := newTestAgent(llm, backend, &cannedConfirmer{}, nil)
	st := NewState("m", "")

	if err := a.RunTurn(context.Background(), st, "/goal Do two things"); err == nil {
		t.Fatal("step model failure must escape to the caller")
	}

	deadStep := st.Plan.Steps[0]
	if deadStep.Status != StepStatusFailed {
		t.Errorf("failed step status = %s", deadStep.Status)
	}
	if st.Plan.ActiveStepID != nil {
		t.Fatalf("terminal step must release the active pointer, got %v", *st.Plan.ActiveStepID)
	}

	if err := a.RunTurn(context.Background(), st, "what happened?"); err != nil {
		t.Fatalf("machine must be resumable after a failed step: %v", err)
	}

	// The follow-up input reaches the model through the parent history.
	followUp := llm.calls[2]
	var sawInput bool
	for _, m := range followUp {
		if m.Role == RoleUser && strings.Contains(m.Content, "what happened?") {
			sawInput = true
		}
	}
	if !sawInput {
		t.Errorf("follow-up input missing from the model call: %+v", followUp)
	}

	var sawReply bool
	for _, m := range st.History.All() {
		if m.Role == RoleAssistant && strings.Contains(m.Content, "picking up") {
			sawReply = true
		}
	}
	if !sawReply {
		t.Error("follow-up reply must land in the parent history")
	}
	for _, m := range deadStep.History.All() {
		if strings.Contains(m.Content, "what happened?") || strings.Contains(m.Content, "picking up") {
			t.Errorf("parent turn leaked into the dead step memory: %+v", m)
		}
	}
}

func TestRunTurnExit(t *testing.T) {
	a := newTestAgent(&scriptedLLM{}, &recordingBackend{}, &cannedConfirmer{}, nil)
	st := NewState("m", "")

	if err := a.RunTurn(context.Background(), st, "exit"); err != nil {
		t.Fatal(err)
	}
	if !st.ExitChat {
		t.Error("exit must set the exit flag")
	}
}

func TestRunTurnSlashCommands(t *testing.T) {
	a := newTestAgent(&scriptedLLM{}, &recordingBackend{}, &cannedConfirmer{}, nil)
	st := NewState("m", "")

	if err := a.RunTurn(context.Background(), st, "/mode yolo"); err != nil {
		t.Fatal(err)
	}
	if !st.YoloMode {
		t.Error("/mode yolo must enable yolo mode")
	}

	if err := a.RunTurn(context.Background(), st, "/workflow plan"); err != nil {
		t.Fatal(err)
	}
	if st.Workflow != WorkflowPlan {
		t.Error("/workflow plan must switch the workflow")
	}

	if err := a.RunTurn(context.Background(), st, "/nonsense"); err != nil {
		t.Fatal(err)
	}
	last := st.History.Messages[st.History.Len()-1]
	if !strings.Contains(last.Content, "Unknown command") {
		t.Errorf("unknown command ack missing: %+v", last)
	}
}
