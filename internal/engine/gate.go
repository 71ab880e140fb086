package engine

import (
	"context"
	"fmt"
	"strings"
)

// ConfirmationGate guards tool execution behind a human decision.
// Yolo mode grants execution without suspending.
type ConfirmationGate struct {
	Confirmer Confirmer
}

// Decide resolves the pending tool calls into a grant or a denial,
// mutating the state accordingly. Denial drops the pending calls,
// revokes the execution grant and appends an assistant message naming
// the denied tools; failing the active plan step is the caller's
// follow-up via StepExecutor.Finish.
func (g *ConfirmationGate) Decide(ctx context.Context, st *State) (ConfirmResult, error) {
	if st.YoloMode {
		st.ToolExecutionAllowed = true
		return ConfirmResult{Allowed: true, Content: "yolo"}, nil
	}

	if g.Confirmer == nil {
		Deny(st)
		return ConfirmResult{Allowed: false}, nil
	}

	res, err := g.Confirmer.Confirm(ctx, st.PendingToolCalls)
	if err != nil {
		Deny(st)
		return ConfirmResult{Allowed: false}, err
	}

	if res.Allowed {
		st.ToolExecutionAllowed = true
		return res, nil
	}

	Deny(st)
	return res, nil
}

// Deny applies the denial outcome to the state. Idempotent: the result
// is always an empty pending set and a revoked grant.
func Deny(st *State) {
	names := make([]string, 0, len(st.PendingToolCalls))
	for _, c := range st.PendingToolCalls {
		names = append(names, c.Name)
	}
	st.ClearPending()

	if len(names) > 0 {
		st.ActiveMemory().Append(AssistantMessage(
			fmt.Sprintf("Tool calls denied by user. Tool names: %s", strings.Join(names, ", ")),
		))
	}
}
