// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/gin-gonic/gin"
)

// HealthCheck serves GET /health.
func HealthCheck(version string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"version":        version,
			"uptime_seconds": int64(time.Since(started).Seconds()),
		})
	}
}

// logEntryView is the JSON shape of one entry in GET /v1/logs.
type logEntryView struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// HandleLogs serves GET /v1/logs?limit=N with the most recent entries kept
// by buf, oldest first. Without a limit every buffered entry is returned.
func HandleLogs(buf *logging.BufferedExporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := buf.Entries()

		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				respondError(c, http.StatusBadRequest, "limit must be a non-negative integer", nil)
				return
			}
			if limit < len(entries) {
				entries = entries[len(entries)-limit:]
			}
		}

		views := make([]logEntryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, logEntryView{
				Timestamp: e.Timestamp,
				Level:     e.Level.String(),
				Message:   e.Message,
				Attrs:     e.Attrs,
			})
		}
		c.JSON(http.StatusOK, gin.H{"entries": views, "count": len(views)})
	}
}
