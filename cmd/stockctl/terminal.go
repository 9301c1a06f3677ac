package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// lineReader turns a blocking reader into context-aware line reads.
type lineReader struct {
	lines chan string
	err   error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string)}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lr.lines <- scanner.Text()
		}
		lr.err = scanner.Err()
		if lr.err == nil {
			lr.err = io.EOF
		}
		close(lr.lines)
	}()
	return lr
}

func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case line, ok := <-lr.lines:
		if !ok {
			return "", lr.err
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// terminalListener stands in for a microphone: each Listen reads one line.
type terminalListener struct {
	lines *lineReader
	eof   bool
}

func (l *terminalListener) Listen(ctx context.Context) (string, error) {
	fmt.Print(yellow("🎤 Listening... "))
	line, err := l.lines.next(ctx)
	if errors.Is(err, io.EOF) {
		l.eof = true
	}
	if err != nil {
		fmt.Println()
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// terminalSpeaker prints what a synthesizer would say.
type terminalSpeaker struct{}

func (terminalSpeaker) Speak(_ context.Context, text string) error {
	_, err := fmt.Println(boldCyan("🔊 ") + text)
	return err
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func fatal(op string, err error) {
	fmt.Fprintln(os.Stderr, red("Error:"), op+":", err)
	os.Exit(1)
}
