// Package server assembles the HTTP transport: routing, middleware,
// lifecycle and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pkaul/serverchallenge/internal/config"
	"github.com/pkaul/serverchallenge/internal/handler"
	"github.com/pkaul/serverchallenge/internal/logger"
	"github.com/pkaul/serverchallenge/internal/metrics"
)

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	cfg  *config.Config
	log  *logger.Logger
	http *http.Server
}

// New wires the static content handler, access logging and metrics into a
// ready-to-run server.
func New(cfg *config.Config, lg *logger.Logger) (*Server, error) {
	static, err := handler.NewStatic(cfg.Static, lg)
	if err != nil {
		return nil, fmt.Errorf("initializing static handler: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog(lg))

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	// The document root is served from the root path, so the static
	// handler hangs off NoRoute rather than a wildcard route.
	engine.NoRoute(static.Handle)

	return &Server{
		cfg: cfg,
		log: lg,
		http: &http.Server{
			Addr:    *cfg.Server.Address,
			Handler: engine,
		},
	}, nil
}

// Handler exposes the configured HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run starts the listener and blocks until shutdown completes. SIGINT and
// SIGTERM trigger a graceful shutdown bounded by the configured timeout.
func (s *Server) Run() error {
	shutdownTimeout, err := s.cfg.ShutdownTimeout()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", logger.LogFields{"address": s.http.Addr})
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.log.Info("shutting down", logger.LogFields{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return <-errCh
}

// accessLog records one log entry and one metrics sample per request.
func accessLog(lg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		written := int64(c.Writer.Size())
		if written < 0 {
			written = 0
		}
		duration := time.Since(start)
		lg.Access(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), written, duration)
		metrics.RecordRequest(c.Request.Method, c.Writer.Status(), written, duration)
	}
}
