// Package server exposes the webhook receiver and operational endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/srcops/notifyd/internal/config"
	"github.com/srcops/notifyd/internal/observability"
	"github.com/srcops/notifyd/internal/webhook"
)

type Server struct {
	cfg        config.ServerConfig
	secret     string
	engine     *gin.Engine
	dispatcher *webhook.Dispatcher
	logger     zerolog.Logger
	startedAt  time.Time
}

func New(cfg config.ServerConfig, secret string, dispatcher *webhook.Dispatcher, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observability.RequestLogger(logger))
	engine.Use(observability.RequestMetricsMiddleware())
	if len(cfg.CorsOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	s := &Server{
		cfg:        cfg,
		secret:     secret,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
		startedAt:  time.Now(),
	}
	s.registerRoutes()
	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is canceled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
