package engine

import (
	"context"
	"strings"
	"testing"
)

func TestGateYoloBypass(t *testing.T) {
	st := NewState("m", "")
	st.YoloMode = true
	st.PendingToolCalls = []ToolCall{{ID: "c1", Name: "search"}}

	g := &ConfirmationGate{Confirmer: &cannedConfirmer{}}
	res, err := g.Decide(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed || !st.ToolExecutionAllowed {
		t.Error("yolo mode must grant execution without confirmation")
	}
	if len(st.PendingToolCalls) != 1 {
		t.Error("pending calls must survive a grant")
	}
}

func TestGateApproval(t *testing.T) {
	st := NewState("m", "")
	st.PendingToolCalls = []ToolCall{{ID: "c1", Name: "search"}}

	c := &cannedConfirmer{decisions: []ConfirmResult{{Allowed: true, Content: "y"}}}
	g := &ConfirmationGate{Confirmer: c}
	res, err := g.Decide(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed || !st.ToolExecutionAllowed {
		t.Error("approval must grant execution")
	}
	if len(c.seen) != 1 || c.seen[0][0].ID != "c1" {
		t.Errorf("confirmer saw %+v", c.seen)
	}
}

func TestGateDenial(t *testing.T) {
	st := NewState("m", "")
	st.ToolExecutionAllowed = true // stale grant from a previous cycle
	st.PendingToolCalls = []ToolCall{
		{ID: "c1", Name: "delete_file"},
		{ID: "c2", Name: "send_mail"},
	}

	g := &ConfirmationGate{Confirmer: &cannedConfirmer{decisions: []ConfirmResult{{Allowed: false, Content: "n"}}}}
	res, err := g.Decide(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("expected denial")
	}
	if len(st.PendingToolCalls) != 0 || st.ToolExecutionAllowed {
		t.Error("denial must clear pending calls and revoke the grant")
	}

	last := st.History.Messages[st.History.Len()-1]
	if last.Role != RoleAssistant {
		t.Fatalf("expected assistant denial message, got %+v", last)
	}
	if !strings.Contains(last.Content, "delete_file") || !strings.Contains(last.Content, "send_mail") {
		t.Errorf("denial message must name the denied tools: %q", last.Content)
	}
}

func TestDenyIdempotent(t *testing.T) {
	st := NewState("m", "")
	Deny(st)
	Deny(st)
	if len(st.PendingToolCalls) != 0 || st.ToolExecutionAllowed {
		t.Error("Deny must always leave empty pending and revoked grant")
	}
	if st.History.Len() != 0 {
		t.Error("Deny with no pending calls must not append a message")
	}
}
