// Package tools provides the built-in local tool set. It backs the
// agent when no MCP server is configured and doubles as the degraded
// fallback when one is configured but unreachable.
package tools

import (
	"vibeagent/internal/engine"
)

// NewBuiltinRegistry creates the in-process tool registry.
func NewBuiltinRegistry() engine.ToolRegistry {
	reg := make(engine.ToolRegistry)
	for _, t := range []engine.Tool{
		NewCalculatorTool(),
		NewCurrentTimeTool(),
		NewThinkTool(),
	} {
		reg[t.Name] = t
	}
	return reg
}
