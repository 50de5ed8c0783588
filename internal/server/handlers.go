package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadrank/leadrank/internal/leads"
	"github.com/leadrank/leadrank/internal/prompt"
	"github.com/leadrank/leadrank/pkg/llm"
)

// Download filenames are fixed product names.
const (
	analysisFilename = "lead_analysis.md"
	emailsFilename   = "email_templates.md"
)

func (s *Server) createSession(c *gin.Context) {
	sess := s.store.Create()
	c.JSON(http.StatusCreated, gin.H{
		"id":           sess.ID,
		"email_prompt": sess.EmailPrompt,
		"created_at":   sess.CreatedAt,
	})
}

// getSession reports session metadata. The API key itself never leaves the
// store.
func (s *Server) getSession(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"id":            sess.ID,
		"key_validated": sess.KeyValidated,
		"email_prompt":  sess.EmailPrompt,
		"created_at":    sess.CreatedAt,
	})
}

// setCredential probes the provider with the submitted key. Only a key that
// answers the probe is stored; a failed probe also clears any previously
// stored key.
func (s *Server) setCredential(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		respondError(c, http.StatusBadRequest, "bad_request", "api_key is required")
		return
	}

	sess := currentSession(c)
	ctx := c.Request.Context()
	client, err := s.gatewayClient(ctx, key)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if err := client.Validate(ctx); err != nil {
		if clearErr := s.store.ClearCredential(sess.ID); clearErr != nil {
			s.log.Warn("clear credential", "session", sess.ID, "error", clearErr.Error())
		}
		respondError(c, http.StatusBadGateway, "credential_invalid", err.Error())
		return
	}
	if err := s.store.SetCredential(sess.ID, key); err != nil {
		respondError(c, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"validated": true})
}

func (s *Server) getEmailPrompt(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{"prompt": sess.EmailPrompt})
}

func (s *Server) putEmailPrompt(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(c, http.StatusBadRequest, "bad_request", "prompt must not be blank")
		return
	}

	sess := currentSession(c)
	if err := s.store.SetEmailPrompt(sess.ID, req.Prompt); err != nil {
		respondError(c, http.StatusNotFound, "session_not_found", "unknown or expired session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": req.Prompt})
}

// analyzeLeads scores an uploaded file or pasted text in one blocking model
// call and returns the markdown table.
func (s *Server) analyzeLeads(c *gin.Context) {
	col, ok := s.leadsFromRequest(c)
	if !ok {
		return
	}
	if len(col) == 0 {
		respondError(c, http.StatusBadRequest, "empty_input", "no leads found in input")
		return
	}
	s.complete(c, prompt.Scoring(col), len(col), analysisFilename)
}

// generateEmails drafts outreach emails for pasted lead data using the
// session's email prompt.
func (s *Server) generateEmails(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "empty_input", "no lead data provided")
		return
	}
	col := leads.ParseText(req.Text)
	if len(col) == 0 {
		respondError(c, http.StatusBadRequest, "empty_input", "no leads found in input")
		return
	}

	sess := currentSession(c)
	s.complete(c, prompt.Emails(col, sess.EmailPrompt), len(col), emailsFilename)
}

// leadsFromRequest reads lead data from either a multipart file upload or a
// JSON text body. On failure it writes the error response and reports false.
func (s *Server) leadsFromRequest(c *gin.Context) (leads.Collection, bool) {
	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "bad_upload", "multipart upload needs a file field")
			return nil, false
		}
		src, err := fh.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "bad_upload", err.Error())
			return nil, false
		}
		defer func() { _ = src.Close() }()

		col, err := leads.FromFile(fh.Filename, fh.Header.Get("Content-Type"), src)
		if err != nil {
			respondError(c, http.StatusBadRequest, "bad_upload", err.Error())
			return nil, false
		}
		return col, true
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "provide a file upload or a JSON text body")
		return nil, false
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "empty_input", "no lead data provided")
		return nil, false
	}
	return leads.ParseText(req.Text), true
}

// complete runs the gateway call shared by analyze and generate and shapes
// the response, honoring ?download=1.
func (s *Server) complete(c *gin.Context, conv llm.Conversation, leadCount int, filename string) {
	sess := currentSession(c)
	ctx := c.Request.Context()

	client, err := s.gatewayClient(ctx, sess.APIKey)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	start := time.Now()
	markdown, err := client.Complete(ctx, conv, llm.DefaultOptions())
	s.log.Info("gateway call",
		"provider", s.cfg.Provider,
		"model", s.cfg.Model,
		"lead_count", leadCount,
		"duration_ms", time.Since(start).Milliseconds(),
		"ok", err == nil,
	)
	if err != nil {
		respondError(c, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}

	if c.Query("download") == "1" {
		respondMarkdown(c, filename, markdown)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lead_count": leadCount,
		"markdown":   markdown,
	})
}
