package assistant

import (
	"context"
	"errors"
)

// Transcription errors are terminal for the current turn only.
var (
	ErrTranscriptionTimeout      = errors.New("transcription timed out")
	ErrTranscriptionUnrecognized = errors.New("speech not recognized")
	ErrTranscriptionFailure      = errors.New("transcription failed")
)

const (
	apologyTimeout      = "I didn't hear anything. Please try again."
	apologyUnrecognized = "I didn't understand that. Please try again."
	apologyFailure      = "There was an error with voice recognition. Please try again."
	apologyUnavailable  = "I couldn't reach the inventory right now. Please try again."
)

// Transcriber turns the user's speech into text.
type Transcriber interface {
	// Listen blocks until a phrase is recognized or ctx is done.
	Listen(ctx context.Context) (string, error)
}

// Synthesizer speaks text back to the user.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Apology maps a transcription error onto the message shown to the user.
func Apology(err error) string {
	switch {
	case errors.Is(err, ErrTranscriptionTimeout), errors.Is(err, context.DeadlineExceeded):
		return apologyTimeout
	case errors.Is(err, ErrTranscriptionUnrecognized):
		return apologyUnrecognized
	default:
		return apologyFailure
	}
}
