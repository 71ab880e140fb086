package engine

// Memory is the ordered, role-tagged message log backing a conversation.
// Append coalesces consecutive messages of the same role so the history
// stays compact across multi-part assistant turns.
type Memory struct {
	Messages []ChatMessage `json:"messages"`
}

// NewMemory creates a Memory seeded with the given messages.
func NewMemory(seed ...ChatMessage) *Memory {
	m := &Memory{}
	for _, msg := range seed {
		m.Append(msg)
	}
	return m
}

// Append adds a message to the log. When the incoming message has the
// same role as the last one, the two merge in place: contents join with
// a newline (empty sides are skipped) and tool call lists concatenate
// preserving order. Different roles append normally.
func (m *Memory) Append(msg ChatMessage) {
	n := len(m.Messages)
	if n > 0 && m.Messages[n-1].Role == msg.Role {
		last := &m.Messages[n-1]
		switch {
		case last.Content == "":
			last.Content = msg.Content
		case msg.Content != "":
			last.Content += "\n" + msg.Content
		}
		last.ToolCalls = append(last.ToolCalls, msg.ToolCalls...)
		return
	}
	m.Messages = append(m.Messages, msg)
}

// Extend appends a sequence of messages, applying coalescing per message.
func (m *Memory) Extend(msgs []ChatMessage) {
	for _, msg := range msgs {
		m.Append(msg)
	}
}

// Clear removes all messages except those whose role is listed.
// Relative order of survivors is preserved.
func (m *Memory) Clear(exceptRoles ...MessageRole) {
	if len(exceptRoles) == 0 {
		m.Messages = nil
		return
	}
	keep := make(map[MessageRole]bool, len(exceptRoles))
	for _, r := range exceptRoles {
		keep[r] = true
	}
	out := m.Messages[:0]
	for _, msg := range m.Messages {
		if keep[msg.Role] {
			out = append(out, msg)
		}
	}
	m.Messages = out
}

// All returns the full message log in order.
func (m *Memory) All() []ChatMessage {
	return m.Messages
}

// MessagesExceptSystem returns every non-system message in order.
func (m *Memory) MessagesExceptSystem() []ChatMessage {
	out := make([]ChatMessage, 0, len(m.Messages))
	for _, msg := range m.Messages {
		if msg.Role != RoleSystem {
			out = append(out, msg)
		}
	}
	return out
}

// Recent returns the last n messages, or all of them when fewer exist.
func (m *Memory) Recent(n int) []ChatMessage {
	if n <= 0 {
		return nil
	}
	if n >= len(m.Messages) {
		return m.Messages
	}
	return m.Messages[len(m.Messages)-n:]
}

// Len reports the number of messages.
func (m *Memory) Len() int {
	return len(m.Messages)
}

// ContentSize is the total byte length of message contents plus tool
// call argument payloads. Drives the compression trigger.
func (m *Memory) ContentSize() int {
	size := 0
	for _, msg := range m.Messages {
		size += len(msg.Content)
		for _, call := range msg.ToolCalls {
			size += len(call.Name) + len(call.Arguments)
		}
	}
	return size
}
