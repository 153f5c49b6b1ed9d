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
	"errors"
	"net/http"
	"time"

	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/pkg/model"
	"github.com/AleutianAI/kittycracker/pkg/predict"
	"github.com/AleutianAI/kittycracker/services/oracle/datatypes"
	"github.com/AleutianAI/kittycracker/services/oracle/middleware"
	"github.com/AleutianAI/kittycracker/services/oracle/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var oracleTracer = otel.Tracer("kittycracker.oracle.handlers")

// HandleAnalyze serves POST /v1/analyze.
//
// # Description
//
// Binds and validates an AnalyzeRequest, runs one analysis and returns the
// detected model with its forecast. Finding no model is a successful
// response with "found": false.
//
// # Responses
//
//   - 200: AnalyzeResponse
//   - 400: malformed body or invalid OTPs/moduli/count
//   - 500: unexpected failure
func HandleAnalyze(svc *analysis.Service, m *observability.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, span := oracleTracer.Start(c.Request.Context(), "HandleAnalyze")
		defer span.End()

		requestID := middleware.GetRequestID(c)
		span.SetAttributes(attribute.String("request.id", requestID))

		var req datatypes.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid request body")
			m.RecordError(observability.EndpointAnalyze, observability.ErrorCodeValidation)
			m.ObserveRequest(observability.EndpointAnalyze, start, false)
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation failed")
			m.RecordError(observability.EndpointAnalyze, observability.ErrorCodeValidation)
			m.ObserveRequest(observability.EndpointAnalyze, start, false)
			respondError(c, http.StatusBadRequest, "invalid request: validation failed", err)
			return
		}

		areq, err := req.ToAnalysis()
		if err == nil {
			var res *analysis.Result
			if res, err = svc.Run(ctx, areq); err == nil {
				span.SetAttributes(
					attribute.String("analysis.id", res.AnalysisID),
					attribute.String("analysis.kind", string(res.Model.Kind())),
				)
				m.RecordAnalysis(string(res.Model.Kind()))
				m.RecordPredictions(len(res.Predictions))
				m.ObserveRequest(observability.EndpointAnalyze, start, true)
				logger.Info("analysis served",
					"request_id", requestID,
					"analysis_id", res.AnalysisID,
					"model", res.Model.String(),
					"predictions", len(res.Predictions),
				)
				c.JSON(http.StatusOK, datatypes.NewAnalyzeResponse(res))
				return
			}
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.ObserveRequest(observability.EndpointAnalyze, start, false)
		handleEngineError(c, observability.EndpointAnalyze, m, logger, err)
	}
}

// handleEngineError maps engine errors onto HTTP statuses.
func handleEngineError(c *gin.Context, endpoint observability.Endpoint, m *observability.Metrics, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		m.RecordError(endpoint, observability.ErrorCodeValidation)
		respondError(c, http.StatusBadRequest, "invalid input", err)
	case errors.Is(err, predict.ErrUnsupportedModel):
		m.RecordError(endpoint, observability.ErrorCodeUnsupportedModel)
		respondError(c, http.StatusUnprocessableEntity, "unsupported model", err)
	default:
		m.RecordError(endpoint, observability.ErrorCodeInternal)
		logger.Error("request failed", "endpoint", string(endpoint), "request_id", middleware.GetRequestID(c), "error", err)
		respondError(c, http.StatusInternalServerError, "internal error", nil)
	}
}

func respondError(c *gin.Context, status int, msg string, err error) {
	resp := datatypes.ErrorResponse{Error: msg, RequestID: middleware.GetRequestID(c)}
	if err != nil {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}
