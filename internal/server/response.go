package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadrank/leadrank/pkg/redact"
)

// APIError is the wire form of every non-2xx response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps APIError under a fixed key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// respondError writes the error envelope. Messages pass through the secret
// scrubber: upstream errors are pre-redacted by the gateway, but envelope
// text assembled here may still quote request material.
func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Code:    code,
			Message: redact.Secrets(message),
		},
	})
}

// respondMarkdown serves a generated document as a named attachment.
func respondMarkdown(c *gin.Context, filename, content string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}
