package assistant

import "github.com/ashureev/stockflow/internal/domain"

// DefaultHistoryLimit is the number of turns a chat session keeps.
const DefaultHistoryLimit = 20

// History is a bounded, oldest-first list of conversation turns.
// When full, appending evicts the oldest turn.
type History struct {
	turns []domain.ConversationTurn
	limit int
}

// NewHistory creates an empty history that keeps at most limit turns.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		turns: make([]domain.ConversationTurn, 0, limit+1),
		limit: limit,
	}
}

// Append adds a turn and drops the oldest ones beyond the limit.
func (h *History) Append(turn domain.ConversationTurn) {
	h.turns = append(h.turns, turn)
	if over := len(h.turns) - h.limit; over > 0 {
		n := copy(h.turns, h.turns[over:])
		h.turns = h.turns[:n]
	}
}

// Turns returns a copy of the current turns, oldest first.
func (h *History) Turns() []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Clear removes all turns.
func (h *History) Clear() {
	h.turns = h.turns[:0]
}
