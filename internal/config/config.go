// Package config resolves runtime configuration for the service and the CLI.
// Precedence: environment variables, then the optional YAML config file, then
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leadrank/leadrank/pkg/llm"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Provider selects the chat-completion backend.
	Provider string
	// Model is the model identifier sent upstream. Defaults to the fixed
	// scoring model for the openai provider; gemini has no default and must
	// be set explicitly.
	Model string
	// APIKey is the process-wide credential used by the CLI. The HTTP
	// service ignores it: sessions carry their own validated keys.
	APIKey string
	// BaseURL overrides the provider endpoint, mainly for tests and proxies.
	BaseURL string

	Addr            string
	Env             string
	RateRPS         float64
	RateBurst       int
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

// fileConfig mirrors Config for the YAML file. Pointers distinguish absent
// fields from zero values so the file never clobbers defaults it does not
// mention.
type fileConfig struct {
	Provider        *string  `yaml:"provider"`
	Model           *string  `yaml:"model"`
	APIKey          *string  `yaml:"api_key"`
	BaseURL         *string  `yaml:"base_url"`
	Addr            *string  `yaml:"addr"`
	Env             *string  `yaml:"env"`
	RateRPS         *float64 `yaml:"rate_rps"`
	RateBurst       *int     `yaml:"rate_burst"`
	SessionTTL      *string  `yaml:"session_ttl"`
	ShutdownTimeout *string  `yaml:"shutdown_timeout"`
}

// Load reads .env (best-effort), the optional LEADRANK_CONFIG_FILE, and the
// LEADRANK_* environment, then validates the result. OPENAI_API_KEY and
// GEMINI_API_KEY are honored as credential fallbacks for their providers.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Provider:        llm.ProviderOpenAI,
		Addr:            ":8080",
		Env:             "dev",
		RateRPS:         5,
		RateBurst:       10,
		SessionTTL:      2 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}

	if path := strings.TrimSpace(os.Getenv("LEADRANK_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case llm.ProviderOpenAI:
			cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		case llm.ProviderGemini:
			cfg.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		}
	}
	if cfg.Model == "" && cfg.Provider == llm.ProviderOpenAI {
		cfg.Model = llm.DefaultModel
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Provider {
	case llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("unsupported model provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("LEADRANK_MODEL is required for provider %s", c.Provider)
	}
	if c.RateRPS <= 0 {
		return fmt.Errorf("LEADRANK_RATE_RPS must be positive, got %v", c.RateRPS)
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("LEADRANK_RATE_BURST must be positive, got %d", c.RateBurst)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("LEADRANK_SESSION_TTL must not be negative, got %v", c.SessionTTL)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("LEADRANK_SHUTDOWN_TIMEOUT must not be negative, got %v", c.ShutdownTimeout)
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read LEADRANK_CONFIG_FILE: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.Provider, fc.Provider)
	setString(&cfg.Model, fc.Model)
	setString(&cfg.APIKey, fc.APIKey)
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.Addr, fc.Addr)
	setString(&cfg.Env, fc.Env)
	if fc.RateRPS != nil {
		cfg.RateRPS = *fc.RateRPS
	}
	if fc.RateBurst != nil {
		cfg.RateBurst = *fc.RateBurst
	}
	if err := setDuration(&cfg.SessionTTL, fc.SessionTTL, "session_ttl"); err != nil {
		return err
	}
	return setDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout, "shutdown_timeout")
}

func applyEnv(cfg *Config) error {
	envString("LEADRANK_PROVIDER", &cfg.Provider)
	envString("LEADRANK_MODEL", &cfg.Model)
	envString("LEADRANK_API_KEY", &cfg.APIKey)
	envString("LEADRANK_BASE_URL", &cfg.BaseURL)
	envString("LEADRANK_ADDR", &cfg.Addr)
	envString("LEADRANK_ENV", &cfg.Env)
	if err := envFloat("LEADRANK_RATE_RPS", &cfg.RateRPS); err != nil {
		return err
	}
	if err := envInt("LEADRANK_RATE_BURST", &cfg.RateBurst); err != nil {
		return err
	}
	if err := envDuration("LEADRANK_SESSION_TTL", &cfg.SessionTTL); err != nil {
		return err
	}
	return envDuration("LEADRANK_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
}

func setString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

func setDuration(dst *time.Duration, v *string, field string) error {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*v))
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}

func envString(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func envFloat(name string, dst *float64) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = f
	return nil
}

func envInt(name string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	*dst = d
	return nil
}
