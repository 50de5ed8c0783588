package mockopenai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Message is one recorded conversation turn from a request body.
type Message struct {
	Role    string
	Content string
}

// Call records a chat-completion request made to the mock service.
type Call struct {
	Method        string
	Path          string
	Authorization string
	Model         string
	Messages      []Message

	// Temperature and MaxTokens are nil when the request omitted them.
	Temperature *float64
	MaxTokens   *int64
}

// Server implements a minimal OpenAI-compatible chat-completions surface.
//
// It records every request for assertions and serves a canned reply, a canned
// upstream error, or a choiceless completion, depending on configuration.
type Server struct {
	mu    sync.Mutex
	calls []Call

	expectedAuthorization string

	reply     string
	noChoices bool

	errStatus  int
	errType    string
	errCode    string
	errMessage string

	nextID int
}

// New constructs a mock server that replies with a fixed placeholder completion.
func New() *Server {
	return &Server{
		reply:  "mock completion",
		nextID: 1,
	}
}

// RequireAPIKey enforces that requests carry "Authorization: Bearer <key>".
// An empty key disables enforcement.
func (s *Server) RequireAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key = strings.TrimSpace(key)
	if key == "" {
		s.expectedAuthorization = ""
		return
	}
	s.expectedAuthorization = "Bearer " + key
}

// SetReply sets the assistant content returned by subsequent completions.
func (s *Server) SetReply(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = content
	s.errStatus = 0
	s.noChoices = false
}

// SetNoChoices makes subsequent completions return an empty choices array.
func (s *Server) SetNoChoices(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noChoices = v
}

// FailWith makes subsequent completions fail with an OpenAI-style error payload.
func (s *Server) FailWith(status int, errType, code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errStatus = status
	s.errType = errType
	s.errCode = code
	s.errMessage = message
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/chat/completions", s.handleChatCompletions)
	return mux
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

type chatCompletionsReq struct {
	Model       string            `json:"model"`
	Messages    []json.RawMessage `json:"messages"`
	Temperature *float64          `json:"temperature"`
	MaxTokens   *int64            `json:"max_tokens"`
}

type wireMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatCompletionsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid_body", fmt.Sprintf("decode request: %v", err))
		return
	}

	call := Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Model:         req.Model,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	}
	for _, raw := range req.Messages {
		var m wireMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		call.Messages = append(call.Messages, Message{Role: m.Role, Content: flattenContent(m.Content)})
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	expected := s.expectedAuthorization
	reply := s.reply
	noChoices := s.noChoices
	errStatus, errType, errCode, errMessage := s.errStatus, s.errType, s.errCode, s.errMessage
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	if expected != "" && call.Authorization != expected {
		s.writeError(w, http.StatusUnauthorized, "invalid_request_error", "invalid_api_key", "Incorrect API key provided.")
		return
	}
	if errStatus != 0 {
		s.writeError(w, errStatus, errType, errCode, errMessage)
		return
	}

	choices := []any{}
	if !noChoices {
		choices = append(choices, map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": reply},
			"finish_reason": "stop",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      fmt.Sprintf("chatcmpl-mock-%06d", id),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": choices,
		"usage":   map[string]any{"prompt_tokens": 0, "completion_tokens": 0, "total_tokens": 0},
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, errType, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
			"code":    code,
			"param":   nil,
		},
	})
}

// flattenContent accepts both the plain-string and the typed-parts content forms.
func flattenContent(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p.Text)
		}
		return b.String()
	}
	return string(raw)
}
