package domain

import "time"

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ConversationTurn is a single message in an assistant conversation.
type ConversationTurn struct {
	Speaker   Speaker   `json:"role"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
