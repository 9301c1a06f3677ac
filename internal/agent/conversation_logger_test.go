package agent

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConversationLoggerWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewConversationLogger(ConversationLogConfig{
		Enabled:   true,
		Dir:       dir,
		QueueSize: 16,
	}, slog.Default())
	if err != nil {
		t.Fatalf("NewConversationLogger failed: %v", err)
	}
	defer func() { _ = logger.Close() }()

	event := ConversationLogEvent{
		UserID:     "3",
		SessionID:  "sess-1",
		Channel:    ChannelChatHTTP,
		Direction:  "inbound",
		EventType:  EventUserMessage,
		ContentRaw: "what is the **price** of iphone",
	}
	logger.Log(event)

	path := filepath.Join(dir, "3", "sess-1.ndjson")
	line := waitForLogLine(t, path)
	var got ConversationLogEvent
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if got.ContentRaw != event.ContentRaw {
		t.Fatalf("unexpected ContentRaw: %q", got.ContentRaw)
	}
	if got.Content != "what is the price of iphone" {
		t.Fatalf("expected cleaned content, got %q", got.Content)
	}
	if got.EventID == "" || got.Timestamp == "" {
		t.Fatalf("expected event id and timestamp to be populated: %+v", got)
	}
}

func TestConversationLoggerGlobalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	global := filepath.Join(dir, "all", "conversations.ndjson")
	logger, err := NewConversationLogger(ConversationLogConfig{
		Enabled:       true,
		Dir:           dir,
		GlobalEnabled: true,
		GlobalPath:    global,
		QueueSize:     16,
		MaxSizeMB:     1,
	}, slog.Default())
	if err != nil {
		t.Fatalf("NewConversationLogger failed: %v", err)
	}

	for _, sess := range []string{"a", "b"} {
		logger.Log(ConversationLogEvent{UserID: "1", SessionID: sess, ContentRaw: "hi"})
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(global)
	if err != nil {
		t.Fatalf("read global log: %v", err)
	}
	if n := len(strings.Split(strings.TrimSpace(string(data)), "\n")); n != 2 {
		t.Fatalf("expected 2 global lines, got %d", n)
	}

	// Events after Close are ignored rather than panicking.
	logger.Log(ConversationLogEvent{UserID: "1", SessionID: "a"})
}

func TestDisabledConversationLoggerIsNoop(t *testing.T) {
	t.Parallel()

	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewConversationLogger failed: %v", err)
	}
	if _, ok := logger.(noopConversationLogger); !ok {
		t.Fatalf("expected noop logger, got %T", logger)
	}
}

func TestCleanForReadability(t *testing.T) {
	t.Parallel()

	raw := "\x1b[31merror\x1b[0m   plain\n**Total Spent:** ₹21,000"
	clean := cleanForReadability(raw)
	if strings.Contains(clean, "\x1b[31m") {
		t.Fatalf("expected ANSI sequence to be stripped: %q", clean)
	}
	if clean != "error plain\nTotal Spent: ₹21,000" {
		t.Fatalf("unexpected cleaned text: %q", clean)
	}
}

func TestSafePathPart(t *testing.T) {
	t.Parallel()

	if got := safePathPart("../../etc"); strings.Contains(got, "/") {
		t.Fatalf("path separators must be replaced: %q", got)
	}
	if got := safePathPart(""); got != "unknown" {
		t.Fatalf("empty id should map to unknown, got %q", got)
	}
}

func waitForLogLine(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) > 0 {
				return lines[len(lines)-1]
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return ""
}
