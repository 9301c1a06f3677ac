package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/stockflow/internal/domain"
)

// Config holds assistant configuration.
type Config struct {
	HistoryLimit    int
	ListenTimeout   time.Duration
	VoiceVocabulary Vocabulary
	ChatVocabulary  Vocabulary
}

// DefaultConfig returns default assistant configuration.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:    DefaultHistoryLimit,
		ListenTimeout:   10 * time.Second,
		VoiceVocabulary: DefaultVoiceVocabulary(),
		ChatVocabulary:  DefaultChatVocabulary(),
	}
}

// Reply is one assistant answer.
type Reply struct {
	Intent Intent
	Text   string
	// Err is the speech or data error the text stands in for, if any.
	Err error
}

// Unavailable is the reply given when the inventory snapshot could not be loaded.
func Unavailable(err error) Reply {
	return Reply{Intent: Intent{Kind: IntentUnknown}, Text: apologyUnavailable, Err: err}
}

// ChatSession is the chat assistant owned by one dashboard session.
type ChatSession struct {
	classifier *Classifier
	renderer   chatRenderer
	now        func() time.Time

	mu      sync.Mutex
	history *History
}

// NewChatSession creates a chat assistant with an empty history.
func NewChatSession(cfg Config) *ChatSession {
	vocab := cfg.ChatVocabulary
	if vocab == nil {
		vocab = DefaultChatVocabulary()
	}
	return &ChatSession{
		classifier: NewClassifier(ModeChat, vocab),
		now:        time.Now,
		history:    NewHistory(cfg.HistoryLimit),
	}
}

// Respond answers a message and records both sides of the exchange.
func (s *ChatSession) Respond(message string, snap Snapshot) Reply {
	intent := s.classifier.Classify(message)
	text := s.renderer.Render(intent, snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Append(domain.ConversationTurn{Speaker: domain.SpeakerUser, Text: message, Timestamp: s.now()})
	s.history.Append(domain.ConversationTurn{Speaker: domain.SpeakerAssistant, Text: text, Timestamp: s.now()})

	return Reply{Intent: intent, Text: text}
}

// History returns the conversation so far, oldest first.
func (s *ChatSession) History() []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Turns()
}

// ClearHistory empties the conversation.
func (s *ChatSession) ClearHistory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
	return chatHistoryClear
}

// VoiceSession is the voice assistant owned by one dashboard session.
// It keeps no history.
type VoiceSession struct {
	classifier    *Classifier
	renderer      voiceRenderer
	listenTimeout time.Duration
	logger        *slog.Logger
}

// NewVoiceSession creates a voice assistant.
func NewVoiceSession(cfg Config, logger *slog.Logger) *VoiceSession {
	if logger == nil {
		logger = slog.Default()
	}
	vocab := cfg.VoiceVocabulary
	if vocab == nil {
		vocab = DefaultVoiceVocabulary()
	}
	timeout := cfg.ListenTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ListenTimeout
	}
	return &VoiceSession{
		classifier:    NewClassifier(ModeVoice, vocab),
		listenTimeout: timeout,
		logger:        logger,
	}
}

// Respond answers a typed or already-transcribed command without speaking it.
func (s *VoiceSession) Respond(command string, snap Snapshot) Reply {
	intent := s.classifier.Classify(command)
	return Reply{Intent: intent, Text: s.renderer.Render(intent, snap)}
}

// Answer renders a reply and speaks it. Synthesis failures are logged only.
func (s *VoiceSession) Answer(ctx context.Context, command string, snap Snapshot, synth Synthesizer) Reply {
	reply := s.Respond(command, snap)
	s.speak(ctx, synth, reply.Text)
	return reply
}

// Converse runs one listen, answer, speak cycle. The returned reply always
// carries displayable text; reply.Err reports why a turn was cut short.
func (s *VoiceSession) Converse(ctx context.Context, tr Transcriber, synth Synthesizer, load SnapshotLoader) Reply {
	listenCtx, cancel := context.WithTimeout(ctx, s.listenTimeout)
	command, err := tr.Listen(listenCtx)
	cancel()
	if err == nil && strings.TrimSpace(command) == "" {
		err = ErrTranscriptionUnrecognized
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", ErrTranscriptionTimeout, err)
		}
		s.logger.Info("voice transcription ended turn", "error", err)
		return Reply{Intent: Intent{Kind: IntentUnknown}, Text: Apology(err), Err: err}
	}

	snap, err := load(ctx)
	if err != nil {
		s.logger.Error("failed to load assistant snapshot", "error", err)
		return Unavailable(err)
	}

	return s.Answer(ctx, strings.ToLower(command), snap, synth)
}

func (s *VoiceSession) speak(ctx context.Context, synth Synthesizer, text string) {
	if synth == nil {
		return
	}
	if err := synth.Speak(ctx, text); err != nil {
		s.logger.Warn("text-to-speech failed", "error", err)
	}
}
