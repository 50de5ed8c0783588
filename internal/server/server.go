// Package server exposes the lead tooling over HTTP: session management,
// credential validation, lead analysis, and email generation.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/leadrank/leadrank/internal/config"
	"github.com/leadrank/leadrank/internal/session"
	"github.com/leadrank/leadrank/internal/version"
	"github.com/leadrank/leadrank/pkg/llm"
	"github.com/leadrank/leadrank/pkg/logger"
)

// Server ties the session store, the model gateway configuration, and the
// HTTP surface together. One gateway client is built per model call, bound
// to the calling session's credential.
type Server struct {
	cfg     config.Config
	log     *logger.Logger
	store   *session.Store
	limiter *rate.Limiter
	engine  *gin.Engine
}

// New assembles the engine with logging, recovery, and rate limiting wired.
// The caller owns the store and closes it after Run returns.
func New(cfg config.Config, store *session.Store, log *logger.Logger) *Server {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		log:     log,
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, primarily for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening", "addr", s.cfg.Addr, "provider", s.cfg.Provider, "model", s.cfg.Model)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func (s *Server) routes() *gin.Engine {
	e := gin.New()
	e.Use(s.requestLogger(), s.recovery())
	e.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", "no such route")
	})

	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Current})
	})

	api := e.Group("/api/v1", s.rateLimit())
	api.POST("/sessions", s.createSession)

	sess := api.Group("/sessions/:id", s.requireSession())
	sess.GET("", s.getSession)
	sess.POST("/credential", s.setCredential)
	sess.GET("/email-prompt", s.getEmailPrompt)
	sess.PUT("/email-prompt", s.putEmailPrompt)

	gated := sess.Group("", s.requireCredential())
	gated.POST("/leads/analyze", s.analyzeLeads)
	gated.POST("/emails/generate", s.generateEmails)

	return e
}

// gatewayClient builds a provider client bound to one session's credential.
func (s *Server) gatewayClient(ctx context.Context, apiKey string) (llm.Client, error) {
	return llm.New(ctx, llm.Config{
		Provider: s.cfg.Provider,
		APIKey:   apiKey,
		Model:    s.cfg.Model,
		BaseURL:  s.cfg.BaseURL,
	})
}
