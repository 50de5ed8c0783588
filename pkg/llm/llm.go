// Package llm is a minimal chat-completion gateway over multiple providers.
//
// It sends one conversation per call, blocks until the provider answers, and
// collapses every failure mode into a single *CommunicationError. There is no
// retry policy and no streaming.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Provider constants for gateway provider selection.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Fixed generation parameters. Callers pass these via DefaultOptions; only the
// model identifier and endpoint are configurable, never the sampling settings.
const (
	DefaultModel       = "gpt-4"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

// Credential validation probe: a minimal conversation with a tiny output bound,
// sent purely to prove reachability and authentication.
const (
	validateProbeText      = "Hello, can you confirm this API key is working?"
	validateProbeMaxTokens = 10
)

// Role identifies who a conversation message belongs to.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Conversation is an ordered message sequence: at most one system message
// followed by exactly one user message in this system's usage.
type Conversation []Message

// Options are per-call generation settings. Zero values mean "provider
// default" and are omitted from the request.
type Options struct {
	// Model overrides the client's configured model for this call.
	Model string

	Temperature float64
	MaxTokens   int64
}

// DefaultOptions returns the fixed generation parameters used by both the
// scoring and the email tasks.
func DefaultOptions() Options {
	return Options{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Client sends conversations to a remote text-generation service.
//
// Complete returns the generated text, or ("", *CommunicationError) on any
// failure: the non-nil error is the explicit no-result signal, so call sites
// branch on err without inspecting content. The input Conversation is never
// mutated.
type Client interface {
	Complete(ctx context.Context, conv Conversation, opts Options) (string, error)
	Validate(ctx context.Context) error
}

// Config selects and configures a provider.
type Config struct {
	// Provider is "openai" (default when empty) or "gemini".
	Provider string

	// APIKey is required.
	APIKey string

	// Model defaults to DefaultModel for the OpenAI provider and is required
	// for Gemini (the providers share no model namespace).
	Model string

	// BaseURL overrides the provider endpoint. Useful for proxies/testing.
	BaseURL string

	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// New constructs the configured provider client.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderGemini:
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported model provider: %q", cfg.Provider)
	}
}

func systemText(conv Conversation) string {
	var parts []string
	for _, m := range conv {
		if m.Role == RoleSystem && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func userText(conv Conversation) string {
	var parts []string
	for _, m := range conv {
		if m.Role == RoleUser && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
