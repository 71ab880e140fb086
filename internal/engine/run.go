package engine

import (
	"context"
	"fmt"
	"strings"
)

// RunTurn drives one full conversation turn: it consumes the user
// input at the prompt state and interprets the machine until control
// returns to prompt (turn complete) or reaches exit.
//
// Turn-level model failures leave the state consistent and resumable:
// pending calls are cleared, a visible assistant error message is
// appended, and the error escapes to the caller.
func (a *Agent) RunTurn(ctx context.Context, st *State, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	switch {
	case input == "exit" || input == "quit":
		st.ExitChat = true
	case strings.HasPrefix(input, "/"):
		if !a.handleCommand(ctx, st, input) {
			a.Hooks.OnDone(ctx, st)
			return nil
		}
	case st.Workflow == WorkflowPlan && st.Plan.Empty():
		st.Plan.CurrentGoal = input
		st.History.Append(UserMessage(input))
		a.Hooks.OnHistoryChanged(ctx, st)
	default:
		st.History.Append(UserMessage(input))
		a.Hooks.OnHistoryChanged(ctx, st)
	}

	if cfg := a.Config.CompressionConfig; cfg != nil {
		if err := CompressMemory(ctx, a.LLM, st, *cfg, a.Hooks); err != nil {
			a.Log.Printf("warn: memory compression failed: %v", err)
		}
	}

	node := NodePrompt
	for {
		next, err := a.machine.Next(node, st)
		if err != nil {
			return err
		}
		node = next
		a.Hooks.OnTurnStart(ctx, st, node)

		switch node {
		case NodeExit:
			st.History.Append(AssistantMessage("Goodbye!"))
			a.Hooks.OnDone(ctx, st)
			return nil

		case NodePrompt:
			// Turn complete; the caller supplies the next input.
			a.Hooks.OnDone(ctx, st)
			return nil

		case NodeModelCall:
			if err := a.modelCall(ctx, st); err != nil {
				return a.failTurn(ctx, st, err)
			}

		case NodeConfirm:
			a.Hooks.OnConfirmRequest(ctx, st, st.PendingToolCalls)
			res, err := a.Gate.Decide(ctx, st)
			a.Hooks.OnConfirmResult(ctx, st, res)
			if err != nil {
				return a.failTurn(ctx, st, err)
			}
			if !res.Allowed {
				a.stepExec.Finish(ctx, st, st.Plan.ActiveStep(), StepStatusFailed)
			}

		case NodeExecute:
			if st.YoloMode && !st.ToolExecutionAllowed {
				st.ToolExecutionAllowed = true
			}
			if err := a.executor.Execute(ctx, st, a.Opts); err != nil {
				return a.failTurn(ctx, st, err)
			}
			a.stepExec.Finish(ctx, st, st.Plan.ActiveStep(), StepStatusCompleted)

		case NodePlan:
			if err := a.planner.BuildPlan(ctx, st, a.toolNames, a.Opts, a.Hooks); err != nil {
				return a.failTurn(ctx, st, err)
			}

		case NodeStep:
			hadSteps := !st.Plan.Empty()
			step := a.stepExec.Activate(ctx, st, a.toolNames)
			if step == nil && hadSteps {
				st.History.Append(AssistantMessage("All steps completed!"))
				a.Hooks.OnHistoryChanged(ctx, st)
			}
		}
	}
}

// modelCall streams one model response into the active memory and
// stages any requested tool calls as pending.
func (a *Agent) modelCall(ctx context.Context, st *State) error {
	mem := st.ActiveMemory()
	activeStep := st.Plan.ActiveStep()

	msgs := append([]ChatMessage(nil), mem.All()...)
	a.Hooks.OnBeforeLLM(ctx, st, msgs, a.schemas)

	events, errs := a.LLM.Stream(ctx, st.Model, msgs, a.schemas, a.Opts)
	resp, err := CollectStream(ctx, events, errs, func(d string) {
		a.Hooks.OnStreamDelta(ctx, st, d)
	})
	if err != nil {
		return WrapWithContext(err, NodeModelCall, "llm_call", "")
	}

	st.Totals.Add(resp.Usage)
	a.Hooks.OnAfterLLM(ctx, st, resp)

	// Only the text lands in memory here. The tool-call request message
	// is appended by the executor, right before the calls run.
	if resp.Assistant.Content != "" {
		mem.Append(AssistantMessage(resp.Assistant.Content))
		a.Hooks.OnHistoryChanged(ctx, st)
	}
	st.PendingToolCalls = resp.ToolCalls

	// A step-scoped call that produces no tool calls cannot advance the
	// step; the step fails rather than stalling the plan.
	if len(resp.ToolCalls) == 0 && activeStep != nil {
		a.Log.Printf("warn: no tool calls generated for step %d", activeStep.StepID)
		a.stepExec.Finish(ctx, st, activeStep, StepStatusFailed)
	}
	return nil
}

// failTurn restores a resumable state after a turn-level error.
func (a *Agent) failTurn(ctx context.Context, st *State, err error) error {
	st.ClearPending()
	a.stepExec.Finish(ctx, st, st.Plan.ActiveStep(), StepStatusFailed)
	st.History.Append(AssistantMessage(fmt.Sprintf("Something went wrong this turn: %v", err)))
	a.Hooks.OnHistoryChanged(ctx, st)
	a.Hooks.OnDone(ctx, st)
	return err
}
