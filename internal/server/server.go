// Package server provides the HTTP REST API behind the Resume Genie client.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jonathan/resume-genie/internal/config"
	"github.com/jonathan/resume-genie/internal/logging"
	"github.com/jonathan/resume-genie/internal/optimize"
	"github.com/jonathan/resume-genie/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	config      *config.Config
	optimizer   *optimize.Optimizer
	logger      zerolog.Logger
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	now         func() time.Time
}

// New creates a new server instance. A nil optimizer is allowed: uploads then fail with 503.
func New(cfg *config.Config, optimizer *optimize.Optimizer, logger zerolog.Logger) *Server {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	s := &Server{
		config:      cfg,
		optimizer:   optimizer,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.FromSettings(cfg.RateLimit)),
		validate:    newValidator(),
		now:         time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/export/latex", s.handleExportLatex)
	mux.HandleFunc("POST /api/export/download", s.handleExportDownload)
	mux.HandleFunc("/", s.handleNotFound)

	s.handler = s.withRequestID(s.withLogging(s.withRecovery(s.withCORS(s.withRateLimit(mux)))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // optimization calls can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens for requests until ctx is cancelled or the process receives SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.rateLimiter.Stop()

	if !s.optimizer.Available() {
		s.logger.Warn().Msg("no model API key configured; uploads will fail until GEMINI_API_KEY or OPENAI_API_KEY is set")
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", s.httpServer.Addr).
			Str("environment", s.config.Environment).
			Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.jsonResponse(w, r, status, map[string]string{"error": message})
}

// failureResponse writes {"error": title, "message": ...} with the status err maps to
func (s *Server) failureResponse(w http.ResponseWriter, r *http.Request, title string, err error) {
	status := HTTPStatus(err)
	body := map[string]any{
		"error":   title,
		"message": err.Error(),
	}

	var schemaErr interface{ Fields() []string }
	if errors.As(err, &schemaErr) {
		body["fields"] = schemaErr.Fields()
	}

	event := logging.FromContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.FromContext(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg(strings.ToLower(title))

	s.jsonResponse(w, r, status, body)
}
