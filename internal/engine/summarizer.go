package engine

import (
	"context"
	"strings"
)

const summarizeSystem = `You compress prior chat history for a conversational assistant. Preserve user goals, decisions, tool names, tool results, and open questions. Omit pleasantries and redundant back-and-forth.`

// CompressMemory folds older non-system history into a single user
// message once the content size crosses the configured trigger. System
// messages and the most recent window survive untouched.
func CompressMemory(ctx context.Context, llm LLMClient, st *State, cfg CompressionConfig, hooks Hooks) error {
	if !cfg.Enabled || st.History.ContentSize() <= cfg.TriggerBytes {
		return nil
	}

	msgs := st.History.MessagesExceptSystem()
	if len(msgs) <= cfg.KeepRecent {
		return nil
	}
	older := msgs[:len(msgs)-cfg.KeepRecent]
	recent := append([]ChatMessage(nil), msgs[len(msgs)-cfg.KeepRecent:]...)

	summary, err := SummarizeOld(ctx, llm, st, older)
	if err != nil {
		return err
	}
	st.Totals.Add(summary.usage)

	before := st.History.ContentSize()
	st.History.Clear(RoleSystem)
	st.History.Append(UserMessage("Summary of earlier conversation:\n" + summary.text))
	st.History.Extend(recent)

	hooks.OnCompression(ctx, st, before, st.History.ContentSize())
	hooks.OnHistoryChanged(ctx, st)
	return nil
}

type summaryResult struct {
	text  string
	usage Usage
}

// SummarizeOld asks the model for a compact summary of a history window.
func SummarizeOld(ctx context.Context, llm LLMClient, st *State, window []ChatMessage) (summaryResult, error) {
	msgs := []ChatMessage{
		SystemMessage(summarizeSystem),
		UserMessage("Summarize the following history in <= 200 tokens, preserve facts and decisions:\n\n" + RenderForSummary(window)),
	}
	resp, err := llm.Chat(ctx, st.Model, msgs, nil, ChatOptions{MaxOutputTokens: 256})
	if err != nil {
		return summaryResult{}, err
	}
	return summaryResult{text: resp.Assistant.Content, usage: resp.Usage}, nil
}

// RenderForSummary flattens a history window into role-tagged text.
func RenderForSummary(ms []ChatMessage) string {
	var b strings.Builder
	for _, m := range ms {
		b.WriteString("[" + string(m.Role) + "] ")
		b.WriteString(m.Content)
		for _, c := range m.ToolCalls {
			b.WriteString("\n(called " + c.Name + ")")
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
