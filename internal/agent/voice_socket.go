package agent

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ashureev/stockflow/internal/identity"
	"github.com/ashureev/stockflow/internal/voicews"
	"github.com/coder/websocket"
)

// HandleVoiceSocket handles GET /api/assistant/voice/ws. Each "start" frame
// from the browser runs one listen, answer, speak cycle.
func (h *Handler) HandleVoiceSocket(w http.ResponseWriter, r *http.Request) {
	s := identity.SessionFromContext(r.Context())
	logger := slog.With("user_id", s.User.ID, "session_id", s.ID)

	if !h.checkOrigin(r) {
		writeError(w, http.StatusForbidden, "origin not allowed")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Error("Failed to accept voice socket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "voice session ended"); closeErr != nil {
			logger.Debug("Failed to close voice socket", "error", closeErr)
		}
	}()

	h.registry.Register(s.User.ID, s.ID, ws)
	defer h.registry.Unregister(s.User.ID, s.ID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := voicews.NewConn(ctx, ws, logger)
	loader := h.svc.Loader(s.User)
	logger.Info("Voice socket connected")

	for {
		f, err := conn.Next(ctx)
		if err != nil {
			logger.Info("Voice socket disconnected", "reason", err)
			return
		}
		if f.Type != voicews.FrameStart {
			logger.Debug("Ignoring voice frame outside a turn", "type", f.Type)
			continue
		}
		if !h.rateLimiter.Allow(ctx, s.User.ID) {
			if err := conn.Send(ctx, voicews.Frame{
				Type:  voicews.FrameReply,
				Error: "rate_limited",
				Text:  "Too many requests. Please wait a moment.",
			}); err != nil {
				logger.Debug("Failed to send rate limit reply", "error", err)
				return
			}
			continue
		}

		reply := s.Voice.Converse(ctx, conn, conn, loader)
		if heard := conn.LastTranscript(); heard != "" {
			h.logMessage(s, ChannelVoiceWS, heard, "")
		}
		h.logReply(s, ChannelVoiceWS, reply, "")

		out := newReply(reply)
		if err := conn.Send(ctx, voicews.Frame{
			Type:   voicews.FrameReply,
			Text:   out.Response,
			Intent: out.Intent,
			Error:  out.ErrorKind,
		}); err != nil {
			logger.Debug("Failed to send voice reply", "error", err)
			return
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.opts.IsDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" {
		return true
	}
	if origin == h.opts.AllowedOrigin {
		return true
	}
	slog.Warn("Voice socket origin rejected", "origin", origin, "allowed", h.opts.AllowedOrigin)
	return false
}
