package engine

import "fmt"

// NodeID names a state of the agent state machine.
type NodeID string

const (
	NodePrompt    NodeID = "prompt"
	NodeModelCall NodeID = "model_call"
	NodeConfirm   NodeID = "confirm"
	NodeExecute   NodeID = "execute"
	NodePlan      NodeID = "plan"
	NodeStep      NodeID = "step"
	NodeExit      NodeID = "exit"
)

// Transition is one guarded edge of the machine. Guards read the state
// snapshot only; they never mutate it.
type Transition struct {
	From NodeID
	To   NodeID
	When func(*State) bool
}

// Machine is the transition table plus a tiny interpreter. Node actions
// live on the Agent; the machine only decides where to go next after an
// action has mutated the state.
type Machine struct {
	transitions []Transition
}

func always(*State) bool { return true }

func hasPending(st *State) bool { return len(st.PendingToolCalls) > 0 }

func inStep(st *State) bool { return st.Plan.ActiveStepID != nil }

// planActive reports whether a plan still holds steps. Routing back to
// the find-next state keys off this rather than the active pointer,
// which is already released by the time a finished step is routed.
func planActive(st *State) bool { return !st.Plan.Empty() }

// NewMachine builds the agent transition table.
//
//	prompt     -> exit          exit requested
//	prompt     -> plan          plan workflow with a fresh goal
//	prompt     -> model_call    otherwise
//	model_call -> confirm       pending calls, interactive
//	model_call -> execute       pending calls, yolo
//	model_call -> step          no calls, plan in progress
//	model_call -> prompt        no calls, plain chat
//	confirm    -> execute       allowed
//	confirm    -> step          denied, plan in progress
//	confirm    -> prompt        denied in plain chat
//	execute    -> step          plan in progress
//	execute    -> prompt        plain chat
//	plan       -> step          always
//	step       -> model_call    a pending step was activated
//	step       -> prompt        plan exhausted
func NewMachine() *Machine {
	return &Machine{transitions: []Transition{
		{NodePrompt, NodeExit, func(st *State) bool { return st.ExitChat }},
		{NodePrompt, NodePlan, func(st *State) bool {
			return st.Workflow == WorkflowPlan && st.Plan.CurrentGoal != "" && st.Plan.Empty()
		}},
		{NodePrompt, NodeModelCall, always},

		{NodeModelCall, NodeConfirm, func(st *State) bool { return hasPending(st) && !st.YoloMode }},
		{NodeModelCall, NodeExecute, func(st *State) bool { return hasPending(st) && st.YoloMode }},
		{NodeModelCall, NodeStep, func(st *State) bool { return !hasPending(st) && planActive(st) }},
		{NodeModelCall, NodePrompt, func(st *State) bool { return !hasPending(st) }},

		{NodeConfirm, NodeExecute, func(st *State) bool { return st.ToolExecutionAllowed }},
		{NodeConfirm, NodeStep, func(st *State) bool { return !st.ToolExecutionAllowed && planActive(st) }},
		{NodeConfirm, NodePrompt, func(st *State) bool { return !st.ToolExecutionAllowed }},

		{NodeExecute, NodeStep, planActive},
		{NodeExecute, NodePrompt, always},

		{NodePlan, NodeStep, always},

		{NodeStep, NodeModelCall, inStep},
		{NodeStep, NodePrompt, always},
	}}
}

// Next returns the first transition out of `from` whose guard holds.
func (m *Machine) Next(from NodeID, st *State) (NodeID, error) {
	for _, t := range m.transitions {
		if t.From != from {
			continue
		}
		if t.When(st) {
			return t.To, nil
		}
	}
	return "", fmt.Errorf("no transition out of state %q", from)
}
