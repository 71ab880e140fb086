package prompts

import "strings"

func init() {
	registry := DefaultRegistry()
	registry.Register(&Prompt{
		ID:          "step",
		Version:     PromptV1,
		Content:     stepPromptContent,
		Description: "System prompt scoping a sub-agent to a single plan step",
		Tags:        []string{"planning", "sub-agent"},
	})
}

const stepPromptContent = `You are a sub-agent focused on a single task: '{{task}}'. You have access to these tools: {{tools}}. {{context}}Your goal is to use these tools to achieve your task. Use the actual results from previous steps, not placeholder values. You must respond with one or more tool calls. Do not respond with conversational text.`

// Step renders the sub-agent system prompt for one plan step.
// previousResults is the context block built from completed steps; empty
// means no context section is emitted.
func Step(task, hint string, toolNames []string, previousResults string) string {
	if hint != "" {
		task = task + " (" + hint + ")"
	}
	context := ""
	if previousResults != "" {
		context = "\nContext from previous steps:\n" + previousResults + "\n"
	}
	return MustBuild(DefaultRegistry(), "step", map[string]string{
		"task":    task,
		"tools":   strings.Join(toolNames, ", "),
		"context": context,
	})
}
