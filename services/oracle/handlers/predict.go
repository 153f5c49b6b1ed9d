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
	"time"

	"github.com/AleutianAI/kittycracker/pkg/analysis"
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/pkg/predict"
	"github.com/AleutianAI/kittycracker/services/oracle/datatypes"
	"github.com/AleutianAI/kittycracker/services/oracle/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandlePredict serves POST /v1/predict: forecast from explicit model
// parameters without re-running detection.
//
// # Responses
//
//   - 200: PredictResponse
//   - 400: malformed body or invalid parameters
//   - 422: the model is "none"
func HandlePredict(m *observability.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		_, span := oracleTracer.Start(c.Request.Context(), "HandlePredict")
		defer span.End()

		var req datatypes.PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid request body")
			m.RecordError(observability.EndpointPredict, observability.ErrorCodeValidation)
			m.ObserveRequest(observability.EndpointPredict, start, false)
			respondError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation failed")
			m.RecordError(observability.EndpointPredict, observability.ErrorCodeValidation)
			m.ObserveRequest(observability.EndpointPredict, start, false)
			respondError(c, http.StatusBadRequest, "invalid request: validation failed", err)
			return
		}

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			m.ObserveRequest(observability.EndpointPredict, start, false)
			handleEngineError(c, observability.EndpointPredict, m, logger, err)
		}

		candidate, seed, err := req.Decode()
		if err != nil {
			fail(err)
			return
		}
		span.SetAttributes(
			attribute.String("model.kind", string(candidate.Kind())),
			attribute.Int("predict.count", req.Count),
		)

		forecast, err := predict.Predict(candidate, seed, req.Count)
		if err != nil {
			fail(err)
			return
		}

		predictions := analysis.Format(forecast, req.Width)
		m.RecordPredictions(len(predictions))
		m.ObserveRequest(observability.EndpointPredict, start, true)
		c.JSON(http.StatusOK, datatypes.PredictResponse{
			Model:       candidate,
			Seed:        seed.String(),
			Predictions: predictions,
		})
	}
}
