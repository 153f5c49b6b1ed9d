// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"github.com/AleutianAI/kittycracker/pkg/logging"
	"github.com/AleutianAI/kittycracker/pkg/modarith"
	"github.com/AleutianAI/kittycracker/pkg/validation"
)

// CurrentConfigVersion is written into new config files.
const CurrentConfigVersion = "1"

type KittyConfig struct {
	Meta MetaConfig `yaml:"meta"`

	// Candidates: which moduli the detectors try
	Candidates CandidatesConfig `yaml:"candidates"`

	// Forecast: how many OTPs to generate after a successful analysis
	Forecast ForecastConfig `yaml:"forecast"`

	Logging LoggingConfig `yaml:"logging"`

	// Server: the oracle HTTP API started by `kittycracker serve`
	Server ServerConfig `yaml:"server"`

	UI UIConfig `yaml:"ui"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type CandidatesConfig struct {
	// Base lists fixed moduli as decimal strings, e.g. ["4294967296", "97"].
	// Omit it to use the built-in list; an empty list disables fixed moduli.
	Base []string `yaml:"base,omitempty" validate:"omitempty,max=64,dive,modulus"`

	// Derive adds 10^digits(max) and the next power of two above max.
	Derive bool `yaml:"derive"`
}

type ForecastConfig struct {
	Count int `yaml:"count" validate:"gte=0,lte=1000"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"loglevel"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// TraceExporter is "none", "stdout" (spans pretty-printed to stderr)
	// or "otlp" (gRPC to OTLPEndpoint).
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`

	// MetricExporter is "none", "prometheus" (OpenTelemetry instruments
	// bridged onto /metrics) or "stdout".
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none prometheus stdout"`

	// OTLPEndpoint is the collector's gRPC host:port. Empty uses the
	// exporter's default, localhost:4317.
	OTLPEndpoint string `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`

	// LogBuffer is how many recent log entries GET /v1/logs keeps; 0 disables it.
	LogBuffer int `yaml:"log_buffer" validate:"gte=0,lte=10000"`
}

type UIConfig struct {
	// Personality is one of full, standard, minimal, machine.
	Personality string `yaml:"personality" validate:"omitempty,oneof=full standard minimal machine"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() KittyConfig {
	return KittyConfig{
		Meta:       MetaConfig{Version: CurrentConfigVersion},
		Candidates: CandidatesConfig{Derive: true},
		Forecast:   ForecastConfig{Count: 10},
		Logging:    LoggingConfig{Level: "info", Dir: "~/.kittycracker/logs"},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8089",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
			LogBuffer:      200,
		},
		UI: UIConfig{Personality: "full"},
	}
}

// CandidateConfig converts the candidates section for the detector. A nil
// Base keeps the built-in list.
func (c CandidatesConfig) CandidateConfig() (modarith.CandidateConfig, error) {
	cfg := modarith.CandidateConfig{Derive: c.Derive}
	if c.Base == nil {
		return cfg, nil
	}
	base, err := validation.ParseModuli(c.Base)
	if err != nil {
		return modarith.CandidateConfig{}, err
	}
	cfg.Base = base
	return cfg, nil
}

// LogLevel returns the parsed logging level, Info when unset.
func (c LoggingConfig) LogLevel() logging.Level {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}
