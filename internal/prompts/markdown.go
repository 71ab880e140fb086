package prompts

import (
	"fmt"
	"strings"
)

// CallView is the subset of a tool call the confirmation prompt shows.
type CallView struct {
	Name string
	Args string
}

// ToolCallMarkdown renders pending tool calls as fenced JSON blocks for
// the confirmation prompt. Args is the raw JSON argument string of the
// call; it is shown verbatim.
func ToolCallMarkdown(calls []CallView) string {
	var sb strings.Builder
	sb.WriteString("Proposed tool calls:\n")
	for _, c := range calls {
		args := c.Args
		if args == "" {
			args = "{}"
		}
		fmt.Fprintf(&sb, "\n**%s**\n```json\n%s\n```\n", c.Name, args)
	}
	return sb.String()
}
