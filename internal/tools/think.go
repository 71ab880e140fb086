package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"vibeagent/internal/engine"
)

// NewThinkTool creates an engine.Tool that records the model's
// reasoning. The note is logged for the user and acknowledged back to
// the model; nothing else happens.
func NewThinkTool() engine.Tool {
	return engine.Tool{
		Name: "think",
		Description: `Record your reasoning before acting. Use this to explain your approach, note something important you discovered, or justify a choice between options. The note is shown to the user.`,
		SchemaJSON:  `{"type":"object","properties":{"reasoning":{"type":"string","description":"Your reasoning or plan, stated specifically"}},"required":["reasoning"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			reasoning, _ := args["reasoning"].(string)
			if reasoning == "" {
				return "", fmt.Errorf("reasoning cannot be empty")
			}
			log.Printf("🧠 Agent reasoning: %s", reasoning)

			resultJSON, err := json.Marshal(map[string]any{"status": "noted"})
			if err != nil {
				return "", err
			}
			return string(resultJSON), nil
		},
		Retryable: true,
	}
}
