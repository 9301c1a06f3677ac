// stockctl seeds the StockFlow database and talks to the assistants from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ashureev/stockflow/internal/agent"
	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: stockctl [flags] <command> [args]

Commands:
  seed                 create demo users and catalog in an empty database
  products             list the catalog
  ask [question...]    ask the assistant; without a question start an interactive session

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("DB_PATH", "./data/stockflow.db"), "SQLite database path")
	mode := flag.String("mode", "chat", "assistant mode: chat or voice")
	username := flag.String("user", "admin", "username to answer as")
	password := flag.String("password", "admin123", "password for -user")
	vocab := flag.String("vocab", os.Getenv("ASSISTANT_VOCABULARY_FILE"), "YAML file overriding the assistant product keywords")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := store.NewSQLite(*dbPath)
	if err != nil {
		fatal("open database", err)
	}
	defer func() { _ = repo.Close() }()

	switch cmd := flag.Arg(0); cmd {
	case "seed":
		if err := repo.Seed(ctx); err != nil {
			fatal("seed", err)
		}
		fmt.Println(boldGreen("✓ Database ready"), *dbPath)
	case "products":
		err = listProducts(ctx, repo)
	case "ask":
		var cfg assistant.Config
		if cfg, err = assistantConfig(*vocab); err == nil {
			err = ask(ctx, repo, cfg, assistant.Mode(*mode), *username, *password, strings.Join(flag.Args()[1:], " "))
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal(flag.Arg(0), err)
	}
}

func listProducts(ctx context.Context, repo store.Repository) error {
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		status := boldGreen("In Stock")
		switch p.Availability() {
		case domain.LowStock:
			status = yellow("Low Stock")
		case domain.OutOfStock:
			status = red("Out of Stock")
		}
		fmt.Printf("%3d  %-28s %-10s ₹%-10s %4d  %s\n",
			p.ID, p.Name, p.Brand, humanize.Comma(p.Price), p.Stock, status)
	}
	return nil
}

func assistantConfig(vocabPath string) (assistant.Config, error) {
	cfg := assistant.DefaultConfig()
	if vocabPath == "" {
		return cfg, nil
	}
	voice, chat, err := assistant.LoadVocabularyFile(vocabPath)
	if err != nil {
		return cfg, err
	}
	if voice != nil {
		cfg.VoiceVocabulary = voice
	}
	if chat != nil {
		cfg.ChatVocabulary = chat
	}
	return cfg, nil
}

func ask(ctx context.Context, repo store.Repository, cfg assistant.Config, mode assistant.Mode, username, password, question string) error {
	user, err := repo.VerifyUser(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login as %s: %w", username, err)
	}
	loader := agent.NewService(repo).Loader(*user)

	switch mode {
	case assistant.ModeChat:
		return askChat(ctx, assistant.NewChatSession(cfg), loader, question)
	case assistant.ModeVoice:
		return askVoice(ctx, assistant.NewVoiceSession(cfg, slog.Default()), loader, question)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func askChat(ctx context.Context, chat *assistant.ChatSession, load assistant.SnapshotLoader, question string) error {
	answer := func(text string) error {
		snap, err := load(ctx)
		if err != nil {
			return err
		}
		fmt.Println(boldCyan("Assistant: ") + chat.Respond(text, snap).Text)
		fmt.Println()
		return nil
	}

	if question != "" {
		return answer(question)
	}

	fmt.Println(boldGreen("StockFlow Chat Assistant"))
	fmt.Println("Type your message and press Enter. Type 'quit' or press Ctrl+C to leave.")
	fmt.Println()

	lines := newLineReader(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		line, err := lines.next(ctx)
		if err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "quit":
			return nil
		case "clear":
			fmt.Println(boldCyan("Assistant: ") + chat.ClearHistory())
			continue
		}
		if err := answer(line); err != nil {
			fmt.Fprintln(os.Stderr, red("Error: "), err)
		}
	}
}

func askVoice(ctx context.Context, voice *assistant.VoiceSession, load assistant.SnapshotLoader, question string) error {
	speaker := terminalSpeaker{}

	if question != "" {
		snap, err := load(ctx)
		if err != nil {
			return err
		}
		voice.Answer(ctx, question, snap, speaker)
		return nil
	}

	fmt.Println(boldGreen("StockFlow Voice Assistant"))
	fmt.Println("Each prompt listens for one command. Press Ctrl+D or Ctrl+C to leave.")
	fmt.Println()

	listener := &terminalListener{lines: newLineReader(os.Stdin)}
	for ctx.Err() == nil {
		reply := voice.Converse(ctx, listener, speaker, load)
		if listener.eof {
			return nil
		}
		if reply.Err != nil {
			fmt.Println(yellow("🔇 ") + reply.Text)
		}
	}
	return ctx.Err()
}
