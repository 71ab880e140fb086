package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vibeagent/internal/engine"
)

// NewCurrentTimeTool creates an engine.Tool reporting the current time,
// optionally in a named IANA timezone.
func NewCurrentTimeTool() engine.Tool {
	return engine.Tool{
		Name:        "current_time",
		Description: "Returns the current date and time. Optionally pass an IANA timezone name such as 'Europe/Paris'; defaults to UTC.",
		SchemaJSON:  `{"type":"object","properties":{"timezone":{"type":"string","description":"IANA timezone name, defaults to UTC"}},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			loc := time.UTC
			if tz, ok := args["timezone"].(string); ok && tz != "" {
				parsed, err := time.LoadLocation(tz)
				if err != nil {
					return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
				}
				loc = parsed
			}

			now := time.Now().In(loc)
			resultJSON, err := json.Marshal(map[string]any{
				"time":     now.Format(time.RFC3339),
				"timezone": loc.String(),
				"weekday":  now.Weekday().String(),
			})
			if err != nil {
				return "", err
			}
			return string(resultJSON), nil
		},
		Retryable: true,
	}
}
