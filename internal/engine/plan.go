package engine

import (
	"fmt"
	"strings"
)

// StepStatus represents the status of a plan step. Transitions are
// monotonic: pending -> in_progress -> completed | failed.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
)

func rank(s StepStatus) int {
	switch s {
	case StepStatusPending:
		return 0
	case StepStatusInProgress:
		return 1
	case StepStatusCompleted, StepStatusFailed:
		return 2
	}
	return -1
}

// ConversationStep is one unit of a decomposed goal. Each step owns an
// isolated Memory so its working transcript never leaks into the parent
// conversation; only the fold-back summary crosses that boundary.
type ConversationStep struct {
	StepID  int        `json:"step_id"`
	Name    string     `json:"name"`
	Goal    string     `json:"goal"`
	Hint    string     `json:"hint,omitempty"`
	Status  StepStatus `json:"status"`
	History *Memory    `json:"history"`
}

// NewConversationStep creates a pending step with an empty history.
func NewConversationStep(id int, name, goal, hint string) *ConversationStep {
	return &ConversationStep{
		StepID:  id,
		Name:    name,
		Goal:    goal,
		Hint:    hint,
		Status:  StepStatusPending,
		History: NewMemory(),
	}
}

// SetStatus advances the step status. Regressions (completed back to
// pending, failed back to in_progress) are rejected.
func (s *ConversationStep) SetStatus(status StepStatus) error {
	if rank(status) < rank(s.Status) {
		return fmt.Errorf("step %d: cannot move from %s to %s", s.StepID, s.Status, status)
	}
	s.Status = status
	return nil
}

// Terminal reports whether the step finished, either way.
func (s *ConversationStep) Terminal() bool {
	return s.Status == StepStatusCompleted || s.Status == StepStatusFailed
}

// LastToolOutputs returns the contents of tool messages in the step
// history, most recent last. Feeds the fold-back summary.
func (s *ConversationStep) LastToolOutputs(n int) []string {
	var outs []string
	for _, msg := range s.History.All() {
		if msg.Role == RoleTool {
			outs = append(outs, msg.Content)
		}
	}
	if n > 0 && len(outs) > n {
		outs = outs[len(outs)-n:]
	}
	return outs
}

// Plan is the ordered list of steps decomposing the current goal,
// with a pointer at the step being executed.
type Plan struct {
	CurrentGoal  string              `json:"current_goal"`
	Steps        []*ConversationStep `json:"steps"`
	ActiveStepID *int                `json:"active_step_id,omitempty"`
}

// Empty reports whether there is no plan at all.
func (p *Plan) Empty() bool {
	return len(p.Steps) == 0
}

// ActiveStep returns the step the pointer designates, or nil.
func (p *Plan) ActiveStep() *ConversationStep {
	if p.ActiveStepID == nil {
		return nil
	}
	for _, s := range p.Steps {
		if s.StepID == *p.ActiveStepID {
			return s
		}
	}
	return nil
}

// NextPending activates the lowest-ID pending step: it is marked
// in_progress and becomes the active step. Returns nil when the plan
// is exhausted, in which case goal, steps and pointer are all cleared.
func (p *Plan) NextPending() *ConversationStep {
	for _, s := range p.Steps {
		if s.Status == StepStatusPending {
			s.Status = StepStatusInProgress
			id := s.StepID
			p.ActiveStepID = &id
			return s
		}
	}
	p.CurrentGoal = ""
	p.Steps = nil
	p.ActiveStepID = nil
	return nil
}

// PreviousResults renders the completed lower-ID steps' tool outputs as
// a context block for the step about to run. Each completed step
// contributes one line per tool result it produced.
func (p *Plan) PreviousResults(beforeID int) string {
	var sb strings.Builder
	for _, s := range p.Steps {
		if s.StepID >= beforeID || s.Status != StepStatusCompleted {
			continue
		}
		for _, msg := range s.History.All() {
			if msg.Role != RoleTool {
				continue
			}
			fmt.Fprintf(&sb, "Step %d - %s result: %s\n", s.StepID+1, msg.Name, msg.Content)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FoldBackSummary is the one-line report appended to the parent
// conversation when a step reaches a terminal status. Step numbers are
// 1-based, matching the rendering everywhere else.
func (s *ConversationStep) FoldBackSummary() string {
	icon := "✅"
	if s.Status == StepStatusFailed {
		icon = "❌"
	}
	summary := s.Goal
	if outs := s.LastToolOutputs(1); len(outs) > 0 {
		summary = truncate(outs[len(outs)-1], 160)
	}
	return fmt.Sprintf("%s Step %d %s: %s", icon, s.StepID+1, s.Status, summary)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
