package redact

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (JWTs and opaque tokens). The charset is RFC 6750
	// token68, so surrounding punctuation in error strings survives.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]+`)

	// OpenAI-style secret keys ("sk-...", including project-scoped "sk-proj-..." forms).
	openAIKeyRe = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}\b`)

	// Common key=value formats that sometimes leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|openai[_-]?api[_-]?key|gemini[_-]?api[_-]?key)\b\s*[:=]\s*[^\s"']+`)
)

// Secrets removes obvious secret-bearing substrings from error/log strings.
//
// This is intentionally conservative: it should be safe to call on any message,
// including user-provided inputs and upstream error strings.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = openAIKeyRe.ReplaceAllString(out, "<redacted_key>")
	return strings.TrimSpace(out)
}
