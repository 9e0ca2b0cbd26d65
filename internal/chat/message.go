// Package chat persists LLM chat sessions and runs one exchange at a time per session.
package chat

import "time"

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Document is the on-disk form of a session: chats/<session_id>.json.
// Messages hold at most one system message, and only at index 0.
type Document struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// Summary describes a stored session without its transcript.
type Summary struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSystemPrompt reports whether messages already start with a system message.
func HasSystemPrompt(messages []Message) bool {
	return len(messages) > 0 && messages[0].Role == RoleSystem
}

// WithSystemPrompt returns messages with prompt inserted at index 0, unless
// prompt is empty or a system message is already present.
func WithSystemPrompt(messages []Message, prompt string) []Message {
	if prompt == "" || HasSystemPrompt(messages) {
		return messages
	}
	result := make([]Message, 0, len(messages)+1)
	result = append(result, Message{Role: RoleSystem, Content: prompt})
	return append(result, messages...)
}
