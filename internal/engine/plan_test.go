package engine

import (
	"strings"
	"testing"
)

func TestStepStatusMonotonic(t *testing.T) {
	s := NewConversationStep(0, "s", "g", "")

	if err := s.SetStatus(StepStatusInProgress); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(StepStatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(StepStatusPending); err == nil {
		t.Error("completed -> pending must be rejected")
	}
	if err := s.SetStatus(StepStatusInProgress); err == nil {
		t.Error("completed -> in_progress must be rejected")
	}
	if s.Status != StepStatusCompleted {
		t.Errorf("status mutated by rejected transition: %s", s.Status)
	}
}

func TestPlanNextPendingAdvancesAndClears(t *testing.T) {
	p := Plan{
		CurrentGoal: "g",
		Steps: []*ConversationStep{
			NewConversationStep(0, "a", "ga", ""),
			NewConversationStep(1, "b", "gb", ""),
		},
	}

	first := p.NextPending()
	if first == nil || first.StepID != 0 || first.Status != StepStatusInProgress {
		t.Fatalf("first activation = %+v", first)
	}
	if p.ActiveStepID == nil || *p.ActiveStepID != 0 {
		t.Fatalf("active pointer = %v", p.ActiveStepID)
	}

	first.Status = StepStatusCompleted
	second := p.NextPending()
	if second == nil || second.StepID != 1 {
		t.Fatalf("second activation = %+v", second)
	}

	second.Status = StepStatusFailed
	if got := p.NextPending(); got != nil {
		t.Fatalf("exhausted plan returned %+v", got)
	}
	if p.CurrentGoal != "" || len(p.Steps) != 0 || p.ActiveStepID != nil {
		t.Error("exhausted plan must clear goal, steps and pointer")
	}
}

func TestPlanTerminatesInLenPlanCycles(t *testing.T) {
	const n = 5
	p := Plan{CurrentGoal: "g"}
	for i := 0; i < n; i++ {
		p.Steps = append(p.Steps, NewConversationStep(i, "s", "g", ""))
	}

	cycles := 0
	for {
		step := p.NextPending()
		if step == nil {
			break
		}
		cycles++
		if cycles > n {
			t.Fatal("find-next did not terminate within len(plan) cycles")
		}
		if cycles%2 == 0 {
			step.Status = StepStatusFailed
		} else {
			step.Status = StepStatusCompleted
		}
	}
	if cycles != n {
		t.Errorf("cycles = %d, want %d", cycles, n)
	}
}

func TestPreviousResultsOnlyCompletedLowerSteps(t *testing.T) {
	s0 := NewConversationStep(0, "a", "ga", "")
	s0.Status = StepStatusCompleted
	s0.History.Append(ToolMessage("4", "add", "c1"))

	s1 := NewConversationStep(1, "b", "gb", "")
	s1.Status = StepStatusFailed
	s1.History.Append(ToolMessage("nope", "mul", "c2"))

	s2 := NewConversationStep(2, "c", "gc", "")
	s3 := NewConversationStep(3, "d", "gd", "")
	s3.Status = StepStatusCompleted
	s3.History.Append(ToolMessage("later", "div", "c3"))

	p := Plan{Steps: []*ConversationStep{s0, s1, s2, s3}}

	got := p.PreviousResults(2)
	if !strings.Contains(got, "Step 1 - add result: 4") {
		t.Errorf("missing completed lower step result: %q", got)
	}
	if strings.Contains(got, "mul") {
		t.Error("failed steps must not contribute results")
	}
	if strings.Contains(got, "div") {
		t.Error("higher-numbered steps must not contribute results")
	}
}

func TestFoldBackSummary(t *testing.T) {
	s := NewConversationStep(2, "calc", "compute 1+1", "")
	s.Status = StepStatusCompleted
	s.History.Append(ToolMessage("2", "add", "c1"))

	got := s.FoldBackSummary()
	// Step numbers render 1-based, like the plan listing does.
	if !strings.Contains(got, "Step 3") || !strings.Contains(got, "completed") || !strings.Contains(got, "2") {
		t.Errorf("fold-back summary = %q", got)
	}

	f := NewConversationStep(0, "x", "do x", "")
	f.Status = StepStatusFailed
	failedLine := f.FoldBackSummary()
	if !strings.Contains(failedLine, "❌") || !strings.Contains(failedLine, "Step 1") {
		t.Errorf("failed summary = %q", failedLine)
	}
}

func TestStateActiveMemory(t *testing.T) {
	st := NewState("m", "sys")
	if st.ActiveMemory() != st.History {
		t.Error("chat mode must write to the parent history")
	}

	step := NewConversationStep(0, "s", "g", "")
	st.Plan.Steps = []*ConversationStep{step}
	id := 0
	st.Plan.ActiveStepID = &id
	if st.ActiveMemory() != step.History {
		t.Error("active step must isolate writes into its own history")
	}
}
