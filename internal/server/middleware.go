package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadrank/leadrank/internal/session"
)

// sessionKey is the gin context key carrying the resolved session snapshot.
const sessionKey = "leadrank.session"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		s.log.Error("panic recovered", "path", c.Request.URL.Path, "panic", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	})
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		c.Next()
	}
}

// requireSession resolves :id against the store and stashes a value copy on
// the context. Unknown and expired ids are indistinguishable to callers.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := s.store.Get(c.Param("id"))
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				respondError(c, http.StatusNotFound, "session_not_found", "unknown or expired session")
				return
			}
			respondError(c, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// requireCredential gates the model-calling routes on a validated key.
func (s *Server) requireCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if !sess.KeyValidated {
			respondError(c, http.StatusUnauthorized, "credential_required", "validate your API key first")
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	return c.MustGet(sessionKey).(session.Session)
}
