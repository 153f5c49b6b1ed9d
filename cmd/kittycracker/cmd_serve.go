// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/kittycracker/cmd/kittycracker/config"
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/services/oracle"
	"github.com/AleutianAI/kittycracker/services/oracle/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Global.Server
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveOracle(ctx, cfg, config.Global.Logging)
}

// serveOracle runs the oracle until ctx is cancelled.
func serveOracle(ctx context.Context, cfg config.ServerConfig, logCfg config.LoggingConfig) error {
	gin.SetMode(gin.ReleaseMode)
	reg := oracle.NewRegistry()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    oracle.ServiceName,
		ServiceVersion: Version,
		TraceExporter:  cfg.TraceExporter,
		MetricExporter: cfg.MetricExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		OTLPInsecure:   cfg.OTLPInsecure,
		Registerer:     reg,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(flushCtx)
	}()

	logConfig := logging.Config{
		Level:   logCfg.LogLevel(),
		LogDir:  logCfg.Dir,
		Service: oracle.ServiceName,
		JSON:    logCfg.JSON,
	}
	var logs *logging.BufferedExporter
	if cfg.LogBuffer > 0 {
		logs = logging.NewBufferedExporter(cfg.LogBuffer)
		logConfig.Exporter = logs
	}
	logger := logging.New(logConfig)
	defer logger.Close()

	return oracle.New(oracle.Config{
		Addr:     cfg.Addr,
		Version:  Version,
		Logger:   logger,
		Logs:     logs,
		Registry: reg,
	}).Run(ctx)
}
