package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leadrank/leadrank/pkg/llm"
)

// clearEnv blanks every variable Load consults so ambient shell state cannot
// leak into assertions. t.Setenv also restores prior values on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LEADRANK_PROVIDER", "LEADRANK_MODEL", "LEADRANK_API_KEY",
		"LEADRANK_BASE_URL", "LEADRANK_ADDR", "LEADRANK_ENV",
		"LEADRANK_RATE_RPS", "LEADRANK_RATE_BURST", "LEADRANK_SESSION_TTL",
		"LEADRANK_SHUTDOWN_TIMEOUT", "LEADRANK_CONFIG_FILE",
		"OPENAI_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != llm.ProviderOpenAI {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.Model != llm.DefaultModel {
		t.Fatalf("model = %q", cfg.Model)
	}
	if cfg.Addr != ":8080" || cfg.Env != "dev" {
		t.Fatalf("addr = %q env = %q", cfg.Addr, cfg.Env)
	}
	if cfg.RateRPS != 5 || cfg.RateBurst != 10 {
		t.Fatalf("rate = %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ttl = %v shutdown = %v", cfg.SessionTTL, cfg.ShutdownTimeout)
	}
	if cfg.APIKey != "" {
		t.Fatalf("api key should default empty, got %q", cfg.APIKey)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEADRANK_PROVIDER", "openai")
	t.Setenv("LEADRANK_MODEL", "gpt-4")
	t.Setenv("LEADRANK_API_KEY", "sk-env-key")
	t.Setenv("LEADRANK_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("LEADRANK_ADDR", ":9090")
	t.Setenv("LEADRANK_ENV", "prod")
	t.Setenv("LEADRANK_RATE_RPS", "2.5")
	t.Setenv("LEADRANK_RATE_BURST", "3")
	t.Setenv("LEADRANK_SESSION_TTL", "30m")
	t.Setenv("LEADRANK_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "sk-env-key" || cfg.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("credentials not applied: %+v", cfg)
	}
	if cfg.Addr != ":9090" || cfg.Env != "prod" {
		t.Fatalf("addr = %q env = %q", cfg.Addr, cfg.Env)
	}
	if cfg.RateRPS != 2.5 || cfg.RateBurst != 3 {
		t.Fatalf("rate = %v/%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("ttl = %v shutdown = %v", cfg.SessionTTL, cfg.ShutdownTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "leadrank.yaml")
	doc := strings.Join([]string{
		"addr: :7070",
		"env: prod",
		"rate_rps: 1",
		"rate_burst: 2",
		"session_ttl: 15m",
		"api_key: sk-file-key",
	}, "\n")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("LEADRANK_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Env != "prod" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.RateRPS != 1 || cfg.RateBurst != 2 || cfg.SessionTTL != 15*time.Minute {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.APIKey != "sk-file-key" {
		t.Fatalf("api key = %q", cfg.APIKey)
	}
	// Fields the file does not mention keep their defaults.
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown = %v", cfg.ShutdownTimeout)
	}
}

func TestEnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "leadrank.yaml")
	if err := os.WriteFile(path, []byte("addr: :7070\napi_key: sk-file-key\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("LEADRANK_CONFIG_FILE", path)
	t.Setenv("LEADRANK_ADDR", ":9090")
	t.Setenv("LEADRANK_API_KEY", "sk-env-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr = %q, env should win over file", cfg.Addr)
	}
	if cfg.APIKey != "sk-env-key" {
		t.Fatalf("api key = %q, env should win over file", cfg.APIKey)
	}
}

func TestCredentialFallbacks(t *testing.T) {
	t.Run("openai falls back to OPENAI_API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai-fallback")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.APIKey != "sk-openai-fallback" {
			t.Fatalf("api key = %q", cfg.APIKey)
		}
	})

	t.Run("gemini falls back to GEMINI_API_KEY", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LEADRANK_PROVIDER", "gemini")
		t.Setenv("LEADRANK_MODEL", "gemini-2.0-flash")
		t.Setenv("GEMINI_API_KEY", "gm-fallback")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.APIKey != "gm-fallback" {
			t.Fatalf("api key = %q", cfg.APIKey)
		}
	})

	t.Run("explicit key beats fallback", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LEADRANK_API_KEY", "sk-explicit")
		t.Setenv("OPENAI_API_KEY", "sk-openai-fallback")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.APIKey != "sk-explicit" {
			t.Fatalf("api key = %q", cfg.APIKey)
		}
	})
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		set  map[string]string
	}{
		{"unknown provider", map[string]string{"LEADRANK_PROVIDER": "anthropic"}},
		{"gemini without model", map[string]string{"LEADRANK_PROVIDER": "gemini"}},
		{"zero rps", map[string]string{"LEADRANK_RATE_RPS": "0"}},
		{"negative burst", map[string]string{"LEADRANK_RATE_BURST": "-1"}},
		{"garbage rps", map[string]string{"LEADRANK_RATE_RPS": "fast"}},
		{"garbage ttl", map[string]string{"LEADRANK_SESSION_TTL": "soon"}},
		{"negative ttl", map[string]string{"LEADRANK_SESSION_TTL": "-1h"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.set {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEADRANK_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
