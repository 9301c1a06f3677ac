package agent

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/identity"
	"github.com/ashureev/stockflow/internal/session"
	"github.com/ashureev/stockflow/internal/voicews"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// defaultMaxRequestBodySize is the maximum allowed request body size (64KB).
const defaultMaxRequestBodySize = 64 << 10

// Options configures a Handler.
type Options struct {
	// RateLimit is the number of assistant requests allowed per user per minute.
	RateLimit int
	// Limiter overrides the in-memory limiter built from RateLimit.
	Limiter       Limiter
	AllowedOrigin string
	IsDev         bool
}

// Handler serves the assistant endpoints.
type Handler struct {
	svc         *Service
	rateLimiter Limiter
	registry    *voicews.Registry
	log         ConversationLogger
	opts        Options
}

// NewHandler creates an assistant handler. A nil conversationLogger disables logging.
func NewHandler(svc *Service, registry *voicews.Registry, conversationLogger ConversationLogger, opts Options) *Handler {
	if conversationLogger == nil {
		conversationLogger = noopConversationLogger{}
	}
	if registry == nil {
		registry = voicews.NewRegistry()
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 30
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(opts.RateLimit, time.Minute)
	}
	return &Handler{
		svc:         svc,
		rateLimiter: limiter,
		registry:    registry,
		log:         conversationLogger,
		opts:        opts,
	}
}

// RegisterRoutes registers the assistant routes on r, which is mounted under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assistant", func(r chi.Router) {
		r.Use(identity.RequireRole())
		r.Use(h.limit)

		r.Post("/chat", h.HandleChat)
		r.Get("/chat/history", h.HandleHistory)
		r.Delete("/chat/history", h.HandleClearHistory)

		r.Post("/voice", h.HandleVoice)
		r.Get("/voice/quick-actions", h.HandleQuickActions)
		r.Get("/voice/ws", h.HandleVoiceSocket)
	})
}

// Close releases handler resources.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
	if err := h.log.Close(); err != nil {
		slog.Warn("failed to close conversation logger", "error", err)
	}
}

// EndSession closes the voice socket of a session that has ended.
// The close handshake runs in the background.
func (h *Handler) EndSession(s *session.Session) {
	go h.registry.CloseSession(s.User.ID, s.ID)
}

func (h *Handler) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.rateLimiter.Allow(r.Context(), identity.UserIDFromContext(r.Context())) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleChat handles POST /api/assistant/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	s := identity.SessionFromContext(r.Context())

	var req ChatRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	h.logMessage(s, ChannelChatHTTP, req.Message, reqID)

	var reply assistant.Reply
	snap, err := h.svc.Snapshot(r.Context(), s.User)
	if err != nil {
		slog.Error("Failed to load assistant snapshot", "error", err, "user_id", s.User.ID)
		reply = assistant.Unavailable(err)
	} else {
		reply = s.Chat.Respond(req.Message, snap)
	}

	h.logReply(s, ChannelChatHTTP, reply, reqID)
	writeJSON(w, http.StatusOK, newReply(reply))
}

// HandleHistory handles GET /api/assistant/chat/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	s := identity.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"turns": newTurns(s.Chat.History()),
	})
}

// HandleClearHistory handles DELETE /api/assistant/chat/history.
func (h *Handler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	s := identity.SessionFromContext(r.Context())
	text := s.Chat.ClearHistory()
	h.log.Log(ConversationLogEvent{
		UserID:     userKey(s),
		SessionID:  s.ID,
		Channel:    ChannelChatHTTP,
		Direction:  "outbound",
		EventType:  EventHistoryCleared,
		ContentRaw: text,
	})
	writeJSON(w, http.StatusOK, map[string]string{"response": text})
}

// HandleVoice handles POST /api/assistant/voice with a typed or quick-action command.
func (h *Handler) HandleVoice(w http.ResponseWriter, r *http.Request) {
	s := identity.SessionFromContext(r.Context())

	var req VoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	h.logMessage(s, ChannelVoiceHTTP, req.Command, reqID)

	var reply assistant.Reply
	snap, err := h.svc.Snapshot(r.Context(), s.User)
	if err != nil {
		slog.Error("Failed to load assistant snapshot", "error", err, "user_id", s.User.ID)
		reply = assistant.Unavailable(err)
	} else {
		reply = s.Voice.Respond(req.Command, snap)
	}

	h.logReply(s, ChannelVoiceHTTP, reply, reqID)
	writeJSON(w, http.StatusOK, newReply(reply))
}

// HandleQuickActions handles GET /api/assistant/voice/quick-actions.
func (h *Handler) HandleQuickActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, QuickActions)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) logMessage(s *session.Session, channel, text, requestID string) {
	h.log.Log(ConversationLogEvent{
		UserID:     userKey(s),
		SessionID:  s.ID,
		Channel:    channel,
		Direction:  "inbound",
		EventType:  EventUserMessage,
		ContentRaw: text,
		Meta: map[string]any{
			"request_id": requestID,
			"role":       string(s.User.Role),
		},
	})
}

func (h *Handler) logReply(s *session.Session, channel string, reply assistant.Reply, requestID string) {
	meta := map[string]any{"request_id": requestID}
	if kind := errorKind(reply.Err); kind != "" {
		meta["error_kind"] = kind
		meta["error"] = reply.Err.Error()
	}
	h.log.Log(ConversationLogEvent{
		UserID:     userKey(s),
		SessionID:  s.ID,
		Channel:    channel,
		Direction:  "outbound",
		EventType:  EventAssistantMessage,
		Intent:     string(reply.Intent.Kind),
		ContentRaw: reply.Text,
		Meta:       meta,
	})
}

func userKey(s *session.Session) string {
	return strconv.FormatInt(s.User.ID, 10)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
