package consumer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leadrank/leadrank/pkg/llm"
	"github.com/leadrank/leadrank/pkg/logger"
	"github.com/leadrank/leadrank/pkg/redact"
)

func TestPublicPackagesCompile(t *testing.T) {
	t.Parallel()

	got := redact.Secrets("api_key=sk-live-abcdef123456")
	if strings.Contains(got, "sk-live") {
		t.Fatalf("expected key to be redacted, got %q", got)
	}

	log := logger.NewNop()
	log.Info("consumer smoke test")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "ok"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer ts.Close()

	client, err := llm.New(context.Background(), llm.Config{APIKey: "sk-test", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("llm.New failed: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Conversation{
		{Role: llm.RoleSystem, Content: "You reply with ok."},
		{Role: llm.RoleUser, Content: "ping"},
	}, llm.DefaultOptions())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "ok" {
		t.Fatalf("unexpected completion: %q", out)
	}
}
