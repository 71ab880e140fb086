package prompts

func init() {
	registry := DefaultRegistry()
	registry.Register(&Prompt{
		ID:          "chat",
		Version:     PromptV1,
		Content:     chatPromptContent,
		Description: "Default system prompt for the interactive chat workflow",
		Tags:        []string{"chat", "interactive"},
	})
}

const chatPromptContent = `You are a helpful assistant with access to external tools.

Guidelines:
- Answer directly when you can; call tools when the question needs them.
- When a tool result arrives, ground your answer in it instead of guessing.
- Keep responses concise. Do not narrate tool usage beyond what the user needs.`

// ChatSystem returns the default chat system prompt.
func ChatSystem() string {
	return MustBuild(DefaultRegistry(), "chat", nil)
}
