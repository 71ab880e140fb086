package mcptool

import (
	"encoding/json"
	"fmt"
	"strings"

	"vibeagent/internal/engine"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// SchemasFromTools maps MCP tool listings onto engine schemas. The
// input schema is carried as raw JSON; providers re-parse it on their
// side of the wire.
func SchemasFromTools(tools []mcptypes.Tool) ([]engine.ToolSchema, error) {
	schemas := make([]engine.ToolSchema, 0, len(tools))
	for _, tool := range tools {
		schemaJSON, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal input schema for %s: %w", tool.Name, err)
		}
		schemas = append(schemas, engine.ToolSchema{
			Name:        tool.Name,
			Description: tool.Description,
			JSONSchema:  string(schemaJSON),
			Retryable:   toolIsRetryable(tool),
		})
	}
	return schemas, nil
}

// toolIsRetryable flags read-only tools as safe to retry. MCP annotates
// this through ReadOnlyHint; without the hint a retried call could
// repeat a side effect, so the default is false.
func toolIsRetryable(tool mcptypes.Tool) bool {
	if tool.Annotations.ReadOnlyHint != nil {
		return *tool.Annotations.ReadOnlyHint
	}
	return false
}

// ResultText flattens a tool result into a single string. Text blocks
// are joined with newlines; anything else is carried as its JSON form
// so no content is silently dropped.
func ResultText(result *mcptypes.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	var parts []string
	for _, item := range result.Content {
		if tc, ok := item.(mcptypes.TextContent); ok {
			parts = append(parts, tc.Text)
			continue
		}
		raw, err := json.Marshal(item)
		if err != nil {
			parts = append(parts, fmt.Sprintf("%v", item))
			continue
		}
		parts = append(parts, string(raw))
	}
	return strings.Join(parts, "\n")
}
