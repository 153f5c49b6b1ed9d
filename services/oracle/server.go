// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package oracle is the HTTP API over the detection engine.
//
// # Endpoints
//
//	GET  /health       liveness and version
//	GET  /metrics      Prometheus exposition
//	POST /v1/analyze   detect a generator from three OTPs, optionally forecast
//	POST /v1/predict   forecast from explicit model parameters
//	GET  /v1/logs      recent log entries (when a log buffer is configured)
//
// Every response carries an X-Request-ID header. Requests are traced with
// otelgin; spans go wherever the global tracer provider sends them.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/services/oracle/middleware"
	"github.com/AleutianAI/kittycracker/services/oracle/observability"
	"github.com/AleutianAI/kittycracker/services/oracle/routes"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName names the oracle in traces and logs.
const ServiceName = "kittycracker-oracle"

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8089".
	Addr string

	// Version is reported by /health.
	Version string

	// Logger receives access and analysis logs. Default: logging.Default().
	Logger *logging.Logger

	// Logs backs GET /v1/logs. Nil disables the endpoint.
	Logs *logging.BufferedExporter

	// Registry holds the oracle's collectors and is served on /metrics.
	// Default: NewRegistry().
	Registry *prometheus.Registry

	// ShutdownTimeout bounds graceful shutdown. Default: DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Server is a configured oracle.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	metrics *observability.Metrics
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New builds the router. It does not listen; see Run and Handler.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	metrics := observability.NewMetrics(cfg.Registry)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		otelgin.Middleware(ServiceName),
		middleware.AccessLog(cfg.Logger),
	)

	routes.SetupRoutes(engine, routes.Deps{
		Version:  cfg.Version,
		Analysis: analysis.NewService(cfg.Logger.Slog()),
		Metrics:  metrics,
		Gatherer: cfg.Registry,
		Logger:   cfg.Logger,
		Logs:     cfg.Logs,
	})

	return &Server{cfg: cfg, engine: engine, metrics: metrics}
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the oracle's collectors.
func (s *Server) Metrics() *observability.Metrics {
	return s.metrics
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener, which it closes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("oracle listening", "addr", ln.Addr().String(), "version", s.cfg.Version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.cfg.Logger.Info("oracle shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
