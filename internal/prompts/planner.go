package prompts

import "strings"

func init() {
	registry := DefaultRegistry()
	registry.Register(&Prompt{
		ID:          "planner",
		Version:     PromptV1,
		Content:     plannerPromptContent,
		Description: "Goal decomposition into a numbered step plan",
		Tags:        []string{"planning"},
	})
}

const plannerPromptContent = `Break down this goal into 3-5 concrete, actionable steps: "{{goal}}"

Available tools: {{tools}}

Create a step-by-step plan where each step:
1. Is a specific, actionable task that can be completed with a single tool call or set of related tool calls
2. Can be accomplished using the available tools
3. Builds sequentially toward the overall goal
4. Is clear enough for a sub-agent to execute independently
5. Uses specific values, not placeholders (if doing calculations, specify the actual numbers)

IMPORTANT: For multi-step calculations or processes:
- Each step should be self-contained but build on previous results
- Specify exact numbers and operations where possible
- Each step should produce a clear, usable result for the next step

Format your response as a numbered list of steps, like:
1. [Brief description of what to do with specific details]
2. [Brief description of what to do with specific details]
3. [Brief description of what to do with specific details]

Keep steps concise but specific and actionable.`

// Planner renders the goal decomposition prompt.
func Planner(goal string, toolNames []string) string {
	tools := "None"
	if len(toolNames) > 0 {
		tools = strings.Join(toolNames, ", ")
	}
	return MustBuild(DefaultRegistry(), "planner", map[string]string{
		"goal":  goal,
		"tools": tools,
	})
}
