// Package voicews carries the voice assistant's speech boundary over a
// websocket. The browser performs speech recognition and synthesis; the
// server only exchanges text frames with it.
package voicews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/coder/websocket"
)

// Client frame types.
const (
	FrameStart        = "start"
	FrameTranscript   = "transcript"
	FrameUnrecognized = "unrecognized"
	FrameError        = "error"
	FramePing         = "ping"
)

// Server frame types.
const (
	FrameListen = "listen"
	FrameSpeak  = "speak"
	FrameReply  = "reply"
	FramePong   = "pong"
)

// ErrClosed is returned once the peer has gone away.
var ErrClosed = errors.New("voice connection closed")

// Frame is a single JSON message in either direction.
type Frame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Intent  string `json:"intent,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Conn adapts a websocket to assistant.Transcriber and assistant.Synthesizer.
// A single reader goroutine owns the socket's read side so that listen
// deadlines do not tear the connection down.
type Conn struct {
	ws     *websocket.Conn
	frames chan Frame
	done   chan struct{}
	err    error

	writeMu sync.Mutex
	logger  *slog.Logger

	// last is written by Listen and read by the same caller.
	last string
}

var (
	_ assistant.Transcriber = (*Conn)(nil)
	_ assistant.Synthesizer = (*Conn)(nil)
)

// NewConn starts reading from ws until ctx is cancelled or the peer closes.
func NewConn(ctx context.Context, ws *websocket.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		ws:     ws,
		frames: make(chan Frame, 8),
		done:   make(chan struct{}),
		logger: logger,
	}
	go c.readLoop(ctx)
	return c
}

func (c *Conn) readLoop(ctx context.Context) {
	defer close(c.done)
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				c.logger.Debug("Voice socket closed", "reason", err)
			} else {
				c.logger.Warn("Voice socket read error", "error", err)
			}
			c.err = err
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Debug("Ignoring malformed voice frame", "error", err)
			continue
		}
		if f.Type == FramePing {
			if err := c.Send(ctx, Frame{Type: FramePong}); err != nil {
				c.logger.Debug("Failed to send pong", "error", err)
			}
			continue
		}

		select {
		case c.frames <- f:
		case <-ctx.Done():
			c.err = ctx.Err()
			return
		}
	}
}

// Next returns the next client frame.
func (c *Conn) Next(ctx context.Context) (Frame, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.done:
		return Frame{}, fmt.Errorf("%w: %v", ErrClosed, c.err)
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Listen asks the browser to start recognition and waits for the outcome.
func (c *Conn) Listen(ctx context.Context) (string, error) {
	c.last = ""
	if err := c.Send(ctx, Frame{Type: FrameListen}); err != nil {
		return "", fmt.Errorf("%w: %w", assistant.ErrTranscriptionFailure, err)
	}

	for {
		f, err := c.Next(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: %w", assistant.ErrTranscriptionTimeout, err)
			}
			return "", fmt.Errorf("%w: %w", assistant.ErrTranscriptionFailure, err)
		}

		switch f.Type {
		case FrameTranscript:
			c.last = f.Text
			return f.Text, nil
		case FrameUnrecognized:
			return "", assistant.ErrTranscriptionUnrecognized
		case FrameError:
			return "", fmt.Errorf("%w: %s", assistant.ErrTranscriptionFailure, f.Message)
		default:
			c.logger.Debug("Ignoring frame while listening", "type", f.Type)
		}
	}
}

// LastTranscript returns the text recognized by the most recent Listen, if any.
func (c *Conn) LastTranscript() string {
	return c.last
}

// Speak sends text for the browser to read aloud.
func (c *Conn) Speak(ctx context.Context, text string) error {
	return c.Send(ctx, Frame{Type: FrameSpeak, Text: text})
}

// Send writes one frame.
func (c *Conn) Send(ctx context.Context, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.Write(ctx, websocket.MessageText, data)
}
