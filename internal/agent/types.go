// Package agent exposes the chat and voice assistants over HTTP and websockets.
package agent

import (
	"errors"
	"time"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/domain"
)

// ChatRequest is a typed chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// VoiceRequest is a typed voice command or a quick-action button press.
type VoiceRequest struct {
	Command string `json:"command"`
}

// Reply is the wire form of an assistant answer.
type Reply struct {
	Intent   string `json:"intent"`
	Response string `json:"response"`
	// ErrorKind is set when the answer stands in for a failure:
	// "timeout", "unrecognized", "recognition" or "unavailable".
	ErrorKind string `json:"error_kind,omitempty"`
}

// Turn is the wire form of one history entry.
type Turn struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// QuickAction is a canned voice command offered by the dashboard.
type QuickAction struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// QuickActions are the voice panel's shortcut buttons.
var QuickActions = []QuickAction{
	{Label: "Check Stock", Command: "check stock"},
	{Label: "Low Stock Items", Command: "low stock items"},
	{Label: "Sales Report", Command: "show sales"},
	{Label: "Help", Command: "help"},
}

func newReply(r assistant.Reply) Reply {
	return Reply{
		Intent:    string(r.Intent.Kind),
		Response:  r.Text,
		ErrorKind: errorKind(r.Err),
	}
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, assistant.ErrTranscriptionTimeout):
		return "timeout"
	case errors.Is(err, assistant.ErrTranscriptionUnrecognized):
		return "unrecognized"
	case errors.Is(err, assistant.ErrTranscriptionFailure):
		return "recognition"
	default:
		return "unavailable"
	}
}

func newTurns(turns []domain.ConversationTurn) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = Turn{Speaker: string(t.Speaker), Text: t.Text, Timestamp: t.Timestamp}
	}
	return out
}
