package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Agent wires the machine, the model backend, the tool backend and the
// confirmation gate into a running conversation.
type Agent struct {
	LLM     LLMClient
	Backend ToolBackend
	Gate    *ConfirmationGate
	Hooks   Hooks
	Config  EngineConfig
	Opts    ChatOptions
	Log     *log.Logger

	machine  *Machine
	planner  *Planner
	stepExec *StepExecutor
	executor *ToolExecutor

	schemas   []ToolSchema
	toolNames []string
	degraded  bool
}

// NewAgent assembles an agent. Templates may be nil; the planner then
// always consults the model.
func NewAgent(llm LLMClient, backend ToolBackend, confirmer Confirmer, hooks Hooks, cfg EngineConfig, templates TemplateSource, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	a := &Agent{
		LLM:     llm,
		Backend: backend,
		Gate:    &ConfirmationGate{Confirmer: confirmer},
		Hooks:   hooks,
		Config:  cfg,
		Opts:    ChatOptions{RetryConfig: cfg.RetryConfig},
		Log:     logger,
	}
	a.machine = NewMachine()
	a.planner = &Planner{LLM: llm, Templates: templates}
	a.stepExec = &StepExecutor{Hooks: hooks}
	a.executor = &ToolExecutor{LLM: llm, Backend: backend, Hooks: hooks, Log: logger}
	return a
}

// Init loads the tool inventory from the backend. On failure the agent
// keeps running with an empty tool list; the error is returned so the
// caller can surface the degraded mode once.
func (a *Agent) Init(ctx context.Context) error {
	if a.Backend == nil {
		a.degraded = true
		return fmt.Errorf("no tool backend configured")
	}
	schemas, err := a.Backend.ListTools(ctx)
	if err != nil {
		a.degraded = true
		a.schemas = nil
		a.toolNames = nil
		a.executor.Retryable = nil
		return fmt.Errorf("tool backend unavailable, continuing without tools: %w", err)
	}
	a.schemas = schemas
	a.toolNames = make([]string, 0, len(schemas))
	a.executor.Retryable = make(map[string]bool, len(schemas))
	for _, s := range schemas {
		a.toolNames = append(a.toolNames, s.Name)
		a.executor.Retryable[s.Name] = s.Retryable
	}
	return nil
}

// Degraded reports whether the agent runs without a tool backend.
func (a *Agent) Degraded() bool { return a.degraded }

// ToolNames returns the names of the loaded tools.
func (a *Agent) ToolNames() []string { return a.toolNames }

// handleCommand processes slash commands. It returns true when the turn
// should continue into the state machine (the /goal command starts
// planning immediately); false when the command was a pure
// configuration change acknowledged in place.
func (a *Agent) handleCommand(ctx context.Context, st *State, input string) bool {
	fields := strings.Fields(input)
	cmd := fields[0]
	arg := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	ack := func(text string) {
		st.History.Append(AssistantMessage(text))
		a.Hooks.OnHistoryChanged(ctx, st)
	}

	switch cmd {
	case "/mode":
		switch arg {
		case "yolo":
			st.YoloMode = true
			ack("Yolo mode on: tool calls run without confirmation.")
		case "interactive":
			st.YoloMode = false
			ack("Interactive mode on: tool calls require confirmation.")
		default:
			ack("Usage: /mode yolo|interactive")
		}
	case "/workflow":
		switch arg {
		case string(WorkflowChat):
			st.Workflow = WorkflowChat
			ack("Workflow set to chat.")
		case string(WorkflowPlan):
			st.Workflow = WorkflowPlan
			ack("Workflow set to plan: your next message becomes a goal.")
		default:
			ack("Usage: /workflow chat|plan")
		}
	case "/goal":
		if arg == "" {
			ack("Usage: /goal <text>")
			return false
		}
		st.Workflow = WorkflowPlan
		st.Plan.CurrentGoal = arg
		st.History.Append(UserMessage(arg))
		a.Hooks.OnHistoryChanged(ctx, st)
		return true
	default:
		ack(fmt.Sprintf("Unknown command: %s", cmd))
	}
	return false
}
