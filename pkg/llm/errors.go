package llm

import (
	"fmt"
	"strings"

	"github.com/leadrank/leadrank/pkg/redact"
)

// CommunicationError is the single failure kind for all gateway calls: bad
// credential, network failure, quota/rate limit, malformed or empty response.
// Subtypes are deliberately not distinguished; the structured fields exist so
// callers and tests can inspect context without parsing the message.
//
// Important: Message is redacted and truncated before it is stored here, so
// the error is safe to log and to show to the operator.
type CommunicationError struct {
	Op         string // "complete" or "validate"
	Provider   string // "openai" or "gemini"
	StatusCode int    // HTTP status when known, else 0
	Code       string // upstream error code when present
	Message    string

	err error
}

func (e *CommunicationError) Error() string {
	if e == nil {
		return "model gateway error"
	}
	parts := []string{
		fmt.Sprintf("%s %s error", strings.TrimSpace(e.Provider), strings.TrimSpace(e.Op)),
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if strings.TrimSpace(e.Code) != "" {
		parts = append(parts, "code="+strings.TrimSpace(e.Code))
	}
	if strings.TrimSpace(e.Message) != "" {
		parts = append(parts, "message="+strings.TrimSpace(e.Message))
	}
	return strings.Join(parts, " ")
}

func (e *CommunicationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func newCommunicationError(provider, op string, statusCode int, code, message string, err error) *CommunicationError {
	return &CommunicationError{
		Op:         op,
		Provider:   provider,
		StatusCode: statusCode,
		Code:       strings.TrimSpace(code),
		Message:    sanitizeMessage(message),
		err:        err,
	}
}

func sanitizeMessage(s string) string {
	if s == "" {
		return ""
	}
	// Keep this small: upstream messages can echo request content.
	const max = 256
	truncated := len(s) > max
	if truncated {
		s = s[:max]
	}
	s = redact.Secrets(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if truncated {
		return s + "..."
	}
	return s
}
