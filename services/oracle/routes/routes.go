// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/services/oracle/handlers"
	"github.com/AleutianAI/kittycracker/services/oracle/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Version  string
	Analysis *analysis.Service
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *logging.Logger

	// Logs backs GET /v1/logs. The route is not registered when nil.
	Logs *logging.BufferedExporter
}

// SetupRoutes registers the oracle's endpoints on router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	router.GET("/health", handlers.HealthCheck(deps.Version))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/analyze", handlers.HandleAnalyze(deps.Analysis, deps.Metrics, deps.Logger))
		v1.POST("/predict", handlers.HandlePredict(deps.Metrics, deps.Logger))
		if deps.Logs != nil {
			v1.GET("/logs", handlers.HandleLogs(deps.Logs))
		}
	}
}
