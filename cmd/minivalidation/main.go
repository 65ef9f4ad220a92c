package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/deppfellow/minivalidation/internal/config"
	"github.com/deppfellow/minivalidation/internal/handler"
	"github.com/deppfellow/minivalidation/internal/logger"
	"github.com/deppfellow/minivalidation/internal/repository"
	"github.com/deppfellow/minivalidation/internal/router"
	"github.com/deppfellow/minivalidation/internal/server"
	"github.com/deppfellow/minivalidation/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	appLogger := logger.NewLogger(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &appLogger, loggerService)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize server")
	}

	services, err := service.NewService(srv, repository.NewRepositories())
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to create services")
	}

	r := router.NewRouter(srv, handler.NewHandlers(srv, services))
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		appLogger.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Fatal().Err(err).Msg("server stopped with error")
	}

	appLogger.Info().Msg("server exited properly")
}
