package prompts

import (
	"strings"
	"testing"
)

func TestRegistryGetAndLatest(t *testing.T) {
	r := NewPromptRegistry()
	r.Register(&Prompt{ID: "greet", Version: PromptV1, Content: "hello v1"})
	r.Register(&Prompt{ID: "greet", Version: PromptV2, Content: "hello v2", Deprecated: true})

	p, err := r.Get("greet", PromptV1)
	if err != nil || p.Content != "hello v1" {
		t.Fatalf("Get = %v, %v", p, err)
	}

	latest, err := r.Latest("greet")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Version != PromptV1 {
		t.Errorf("Latest must skip deprecated versions, got %s", latest.Version)
	}

	if _, err := r.Get("greet", PromptV2); err != nil {
		t.Errorf("deprecated versions stay addressable: %v", err)
	}
	if _, err := r.Latest("missing"); err == nil {
		t.Error("Latest of unknown ID must fail")
	}
}

func TestRegistryLatestAllDeprecated(t *testing.T) {
	r := NewPromptRegistry()
	r.Register(&Prompt{ID: "old", Version: PromptV1, Content: "v1", Deprecated: true})
	r.Register(&Prompt{ID: "old", Version: PromptV2, Content: "v2", Deprecated: true})

	latest, err := r.Latest("old")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Version != PromptV2 {
		t.Errorf("all-deprecated falls back to highest version, got %s", latest.Version)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewPromptRegistry()
	r.Register(&Prompt{ID: "b", Version: PromptV1})
	r.Register(&Prompt{ID: "a", Version: PromptV1})

	ids := r.List()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("List = %v, want sorted [a b]", ids)
	}
}

func TestMustBuildSubstitution(t *testing.T) {
	r := NewPromptRegistry()
	r.Register(&Prompt{ID: "t", Version: PromptV1, Content: "Goal: {{goal}} with {{tools}}"})

	out := MustBuild(r, "t", map[string]string{"goal": "book flights", "tools": "search, calendar"})
	if out != "Goal: book flights with search, calendar" {
		t.Errorf("MustBuild = %q", out)
	}
}

func TestDefaultRegistryPromptsRegistered(t *testing.T) {
	for _, id := range []string{"chat", "planner", "step"} {
		if _, err := DefaultRegistry().Get(id, PromptV1); err != nil {
			t.Errorf("prompt %q missing from default registry: %v", id, err)
		}
	}
}

func TestToolCallMarkdown(t *testing.T) {
	out := ToolCallMarkdown([]CallView{
		{Name: "calculator", Args: `{"operation":"add"}`},
		{Name: "current_time", Args: ""},
	})
	for _, want := range []string{"**calculator**", "```json", `{"operation":"add"}`, "**current_time**", "{}"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}
