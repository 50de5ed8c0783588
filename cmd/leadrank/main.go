package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/leadrank/leadrank/internal/app"
	"github.com/leadrank/leadrank/internal/config"
	"github.com/leadrank/leadrank/internal/prompt"
	"github.com/leadrank/leadrank/internal/server"
	"github.com/leadrank/leadrank/internal/session"
	"github.com/leadrank/leadrank/internal/version"
	"github.com/leadrank/leadrank/pkg/logger"
	"github.com/leadrank/leadrank/pkg/redact"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	case "version":
		fmt.Println("leadrank " + version.Current)
		return
	case "validate":
		os.Exit(runValidate(ctx, os.Args[2:]))
	case "score":
		os.Exit(runScore(ctx, os.Args[2:]))
	case "emails":
		os.Exit(runEmails(ctx, os.Args[2:]))
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runValidate(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, log, code := boot(true)
	if code != 0 {
		return code
	}
	defer log.Sync()

	if err := app.RunValidate(ctx, cfg, log); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "validate failed: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	fmt.Println("credential ok")
	return 0
}

func runScore(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	inputPath := fs.String("in", "", "Input leads file (.csv, .xlsx, or tab-separated text)")
	outputPath := fs.String("out", "lead_analysis.md", "Output markdown file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "score requires -in")
		return 2
	}

	cfg, log, code := boot(true)
	if code != 0 {
		return code
	}
	defer log.Sync()

	if err := app.RunScore(ctx, cfg, log, *inputPath, *outputPath); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "score failed: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	return 0
}

func runEmails(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("emails", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	inputPath := fs.String("in", "", "Input leads file, read as raw text")
	outputPath := fs.String("out", "email_templates.md", "Output markdown file")
	promptFile := fs.String("prompt-file", "", "File whose contents replace the default email system prompt")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "emails requires -in")
		return 2
	}

	cfg, log, code := boot(true)
	if code != 0 {
		return code
	}
	defer log.Sync()

	if err := app.RunEmails(ctx, cfg, log, *inputPath, *outputPath, *promptFile); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "emails failed: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	return 0
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addr := fs.String("addr", "", "Listen address (overrides LEADRANK_ADDR)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Sessions bring their own credentials, so the server does not need one.
	cfg, log, code := boot(false)
	if code != 0 {
		return code
	}
	defer log.Sync()
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(prompt.DefaultEmailSystemPrompt, cfg.SessionTTL)
	defer store.Close()

	srv := server.New(cfg, store, log)
	log.Info("server starting", "addr", cfg.Addr, "provider", cfg.Provider, "model", cfg.Model)
	if err := srv.Run(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "serve failed: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	return 0
}

// boot loads configuration and builds the logger shared by every command.
// requireKey commands refuse to start without a provider credential.
func boot(requireKey bool) (config.Config, *logger.Logger, int) {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return config.Config{}, nil, 2
	}
	if requireKey && strings.TrimSpace(cfg.APIKey) == "" {
		_, _ = fmt.Fprintln(os.Stderr, "config error: LEADRANK_API_KEY (or OPENAI_API_KEY / GEMINI_API_KEY) is required")
		return config.Config{}, nil, 2
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger error: %s\n", err)
		return config.Config{}, nil, 2
	}
	return cfg, log, 0
}

func usage(w *os.File) {
	_, _ = fmt.Fprintf(w, `leadrank: lead scoring and outreach email drafts over a chat-completion gateway

Usage:
  leadrank <command> [flags]

Commands:
  validate  Probe the configured provider credential
  score     Score a leads file and write a markdown analysis
  emails    Draft outreach emails from a leads file
  serve     Run the HTTP session service
  version   Print the version

Examples:
  leadrank score -in leads.csv -out lead_analysis.md
  leadrank emails -in leads.txt -prompt-file persona.txt
  leadrank serve -addr :8080

Environment:
  LEADRANK_PROVIDER     Model provider: openai (default) or gemini
  LEADRANK_MODEL        Model name (default gpt-4 for openai, required for gemini)
  LEADRANK_API_KEY      Provider API key (falls back to OPENAI_API_KEY / GEMINI_API_KEY)
  LEADRANK_BASE_URL     Provider base URL override (proxies/testing)
  LEADRANK_ADDR         serve listen address (default :8080)
  LEADRANK_CONFIG_FILE  Optional YAML config file path

`)
}
