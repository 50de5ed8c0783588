package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leadrank/leadrank/internal/config"
	"github.com/leadrank/leadrank/internal/leads"
	"github.com/leadrank/leadrank/internal/prompt"
	"github.com/leadrank/leadrank/pkg/llm"
	"github.com/leadrank/leadrank/pkg/logger"
)

// RunValidate probes the configured provider with the configured credential.
func RunValidate(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	if err := client.Validate(ctx); err != nil {
		return err
	}
	log.Info("credential validated", "provider", cfg.Provider, "model", cfg.Model)
	return nil
}

// RunScore reads a leads file, runs one scoring completion over the whole
// collection, and writes the returned markdown analysis to outputPath.
func RunScore(ctx context.Context, cfg config.Config, log *logger.Logger, inputPath, outputPath string) error {
	inF, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = inF.Close()
	}()

	col, err := leads.FromFile(inputPath, "", inF)
	if err != nil {
		return err
	}
	if len(col) == 0 {
		return fmt.Errorf("no leads found in %s", inputPath)
	}
	log.Info("leads loaded", "path", inputPath, "count", len(col))

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	markdown, err := client.Complete(ctx, prompt.Scoring(col), llm.DefaultOptions())
	if err != nil {
		return err
	}

	if err := writeDocument(outputPath, markdown); err != nil {
		return err
	}
	log.Info("analysis written", "path", outputPath, "leads", len(col))
	return nil
}

// RunEmails reads a file as raw lead text, parses it, and writes the
// generated email templates to outputPath. A non-empty promptFile replaces
// the default email system prompt for this run.
func RunEmails(ctx context.Context, cfg config.Config, log *logger.Logger, inputPath, outputPath, promptFile string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	col := leads.ParseText(string(raw))
	if len(col) == 0 {
		return fmt.Errorf("no leads found in %s", inputPath)
	}
	log.Info("leads loaded", "path", inputPath, "count", len(col))

	systemPrompt := prompt.DefaultEmailSystemPrompt
	if promptFile != "" {
		b, err := os.ReadFile(promptFile)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			return fmt.Errorf("prompt file %s is empty", promptFile)
		}
		systemPrompt = string(b)
	}

	client, err := newClient(ctx, cfg)
	if err != nil {
		return err
	}
	markdown, err := client.Complete(ctx, prompt.Emails(col, systemPrompt), llm.DefaultOptions())
	if err != nil {
		return err
	}

	if err := writeDocument(outputPath, markdown); err != nil {
		return err
	}
	log.Info("emails written", "path", outputPath, "leads", len(col))
	return nil
}

func newClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	return llm.New(ctx, llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
}

func writeDocument(path, markdown string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, markdown); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
