// Package server defines the Server struct that composes the app's main
// dependencies and owns the HTTP server lifecycle.
//
// It holds:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the binding options every request body is decoded with
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/minivalidation/internal/binding"
	"github.com/deppfellow/minivalidation/internal/config"
	loggerPkg "github.com/deppfellow/minivalidation/internal/logger"
)

// Server is the application container that holds shared resources.
// It is not the HTTP server itself.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService holds the New Relic application; it may hold none.
	LoggerService *loggerPkg.LoggerService

	// Binding is the JSON configuration handlers bind request bodies with.
	Binding binding.Options

	httpServer *http.Server
}

// New constructs a Server. It resolves the binding configuration so a
// typo in a converter name or naming policy stops startup.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	opts, err := binding.NewOptions(cfg.Binding)
	if err != nil {
		return nil, fmt.Errorf("failed to configure request binding: %w", err)
	}

	logger.Info().
		Bool("case_sensitive", opts.CaseSensitive).
		Str("naming_policy", string(opts.NamingPolicy)).
		Int64("max_body_size", cfg.Binding.MaxBodySize).
		Bool("disallow_unknown_fields", opts.DisallowUnknownFields).
		Strs("converters", cfg.Binding.Converters).
		Msg("request binding configured")

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Binding:       opts,
	}, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server; it blocks until the server stops.
// SetupHTTPServer must be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server, waiting for in-flight requests until ctx
// is done, then flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
