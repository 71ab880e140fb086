package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMemoryAppendCoalescesSameRole(t *testing.T) {
	m := NewMemory()
	m.Append(AssistantMessage("part one"))
	m.Append(AssistantMessage("part two"))

	if m.Len() != 1 {
		t.Fatalf("expected 1 coalesced message, got %d", m.Len())
	}
	if got := m.Messages[0].Content; got != "part one\npart two" {
		t.Errorf("coalesced content = %q", got)
	}
}

func TestMemoryAppendMergesToolCalls(t *testing.T) {
	m := NewMemory()
	m.Append(ChatMessage{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "a", Name: "search"}}})
	m.Append(ChatMessage{Role: RoleAssistant, Content: "done", ToolCalls: []ToolCall{{ID: "b", Name: "fetch"}}})

	if m.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", m.Len())
	}
	msg := m.Messages[0]
	if len(msg.ToolCalls) != 2 || msg.ToolCalls[0].ID != "a" || msg.ToolCalls[1].ID != "b" {
		t.Errorf("tool calls not concatenated in order: %+v", msg.ToolCalls)
	}
	if msg.Content != "done" {
		t.Errorf("content = %q, want %q (empty side skipped)", msg.Content, "done")
	}
}

func TestMemoryAppendDistinctRoles(t *testing.T) {
	m := NewMemory(
		SystemMessage("sys"),
		UserMessage("hi"),
		AssistantMessage("hello"),
		UserMessage("more"),
	)
	if m.Len() != 4 {
		t.Fatalf("expected 4 messages, got %d", m.Len())
	}
	roles := []MessageRole{RoleSystem, RoleUser, RoleAssistant, RoleUser}
	for i, want := range roles {
		if m.Messages[i].Role != want {
			t.Errorf("message %d role = %s, want %s", i, m.Messages[i].Role, want)
		}
	}
}

func TestMemoryClearExceptRoles(t *testing.T) {
	m := NewMemory(
		SystemMessage("keep me"),
		UserMessage("drop"),
		AssistantMessage("drop"),
		ToolMessage("drop", "search", "call_1"),
	)
	m.Clear(RoleSystem)

	if m.Len() != 1 || m.Messages[0].Role != RoleSystem {
		t.Fatalf("expected only the system message to survive, got %+v", m.Messages)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Errorf("bare Clear should empty the log, got %d messages", m.Len())
	}
}

func TestMemoryMessagesExceptSystem(t *testing.T) {
	m := NewMemory(
		SystemMessage("sys"),
		UserMessage("u"),
		AssistantMessage("a"),
	)
	got := m.MessagesExceptSystem()
	if len(got) != 2 || got[0].Role != RoleUser || got[1].Role != RoleAssistant {
		t.Errorf("MessagesExceptSystem = %+v", got)
	}
}

func TestMemoryRecent(t *testing.T) {
	m := NewMemory(
		SystemMessage("s"),
		UserMessage("1"),
		AssistantMessage("2"),
		UserMessage("3"),
	)
	got := m.Recent(2)
	if len(got) != 2 || got[0].Content != "2" || got[1].Content != "3" {
		t.Errorf("Recent(2) = %+v", got)
	}
	if len(m.Recent(10)) != 4 {
		t.Errorf("Recent larger than log should return everything")
	}
	if m.Recent(0) != nil {
		t.Errorf("Recent(0) should be nil")
	}
}

func TestMemoryContentSize(t *testing.T) {
	m := NewMemory()
	m.Append(UserMessage("abcd"))
	m.Append(ChatMessage{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "go", Arguments: `{"x":1}`}}})

	want := 4 + len("go") + len(`{"x":1}`)
	if got := m.ContentSize(); got != want {
		t.Errorf("ContentSize = %d, want %d", got, want)
	}
}

func TestChatMessageWireFormatOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(UserMessage("hi"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, field := range []string{"tool_calls", "name", "tool_call_id"} {
		if strings.Contains(s, field) {
			t.Errorf("serialized user message should omit %q: %s", field, s)
		}
	}

	data, err = json.Marshal(ToolMessage("out", "search", "call_9"))
	if err != nil {
		t.Fatal(err)
	}
	s = string(data)
	if !strings.Contains(s, `"tool_call_id":"call_9"`) || !strings.Contains(s, `"name":"search"`) {
		t.Errorf("tool message must carry name and tool_call_id: %s", s)
	}
}
