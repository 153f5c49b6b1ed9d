// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	if LevelDebug.toSlogLevel() != slog.LevelDebug {
		t.Error("LevelDebug should map to slog.LevelDebug")
	}
	if Level(-5).toSlogLevel() != slog.LevelInfo {
		t.Error("unknown levels should map to slog.LevelInfo")
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "cli", Output: &buf})
	defer logger.Close()

	logger.Info("analysis complete", "kind", "linear_congruential")

	out := buf.String()
	for _, want := range []string{"analysis complete", "service=cli", "kind=linear_congruential"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{JSON: true, Output: &buf})

	logger.Warn("config unreadable")

	if !strings.Contains(buf.String(), `"msg":"config unreadable"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewBufferedExporter(0)
	logger := New(Config{Level: LevelWarn, Output: &buf, Exporter: exporter})

	logger.Debug("modulus skipped")
	logger.Info("analysis complete")
	logger.Error("request failed")

	if strings.Contains(buf.String(), "modulus skipped") || strings.Contains(buf.String(), "analysis complete") {
		t.Errorf("messages below Warn leaked: %q", buf.String())
	}
	entries := exporter.Entries()
	if len(entries) != 1 || entries[0].Message != "request failed" {
		t.Errorf("exported entries = %+v, want only the error", entries)
	}
}

func TestNew_QuietWithLogDir(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	logger := New(Config{Quiet: true, LogDir: dir, Service: "oracle", Output: &buf})

	logger.Info("listening", "addr", ":8080")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote to console: %q", buf.String())
	}

	name := "oracle_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"addr":":8080"`) {
		t.Errorf("log file content = %q", data)
	}
}

func TestNew_UnwritableLogDir(t *testing.T) {
	var buf bytes.Buffer
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}

	logger := New(Config{LogDir: filepath.Join(blocker, "logs"), Output: &buf})
	logger.Info("still works")

	if logger.file != nil {
		t.Error("expected file logging to be disabled")
	}
	if !strings.Contains(buf.String(), "still works") {
		t.Errorf("console output missing: %q", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewBufferedExporter(0)
	logger := New(Config{Output: &buf, Exporter: exporter})

	child := logger.With("analysis_id", "abc")
	child.Info("model identified", "kind", "affine_counter")
	logger.Info("parent")

	if !strings.Contains(buf.String(), "analysis_id=abc") {
		t.Errorf("child attrs missing from console: %q", buf.String())
	}

	entries := exporter.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Attrs["analysis_id"] != "abc" || entries[0].Attrs["kind"] != "affine_counter" {
		t.Errorf("child entry attrs = %v", entries[0].Attrs)
	}
	if _, ok := entries[1].Attrs["analysis_id"]; ok {
		t.Error("parent entry should not carry child attrs")
	}
}

type failingExporter struct {
	BufferedExporter
	flushErr error
	closeErr error
}

func (e *failingExporter) Flush(ctx context.Context) error { return e.flushErr }
func (e *failingExporter) Close() error { return e.closeErr }

func TestLogger_Close_ReturnsFirstError(t *testing.T) {
	flushErr := errors.New("flush failed")
	logger := New(Config{Quiet: true, Exporter: &failingExporter{
		flushErr: flushErr,
		closeErr: errors.New("close failed"),
	}})

	err := logger.Close()
	if !errors.Is(err, flushErr) {
		t.Errorf("Close() error = %v, want %v", err, flushErr)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	exporter := NewBufferedExporter(0)
	logger := New(Config{Quiet: true, Exporter: exporter})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.With("worker", i).Info("tick")
		}()
	}
	wg.Wait()

	if got := len(exporter.Entries()); got != 20 {
		t.Errorf("got %d entries, want 20", got)
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestMultiHandler_FansOut(t *testing.T) {
	var text, js bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&text, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h).With("service", "oracle")

	logger.Debug("trace")
	logger.Warn("slow")

	if !strings.Contains(text.String(), "trace") || !strings.Contains(text.String(), "slow") {
		t.Errorf("text handler output = %q", text.String())
	}
	if strings.Contains(js.String(), "trace") || !strings.Contains(js.String(), `"service":"oracle"`) {
		t.Errorf("json handler output = %q", js.String())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/.kittycracker/logs"); got != filepath.Join(home, ".kittycracker/logs") {
		t.Errorf("expandPath(~) = %q", got)
	}
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %q", got)
	}
}

func TestArgsToMap(t *testing.T) {
	got := argsToMap([]any{"a", 1, 2, "skipped", "dangling"})
	if len(got) != 1 || got["a"] != 1 {
		t.Errorf("argsToMap = %v", got)
	}
}

func TestBufferedExporter_Limit(t *testing.T) {
	e := NewBufferedExporter(2)
	for _, msg := range []string{"one", "two", "three"} {
		_ = e.Export(context.Background(), LogEntry{Message: msg})
	}

	entries := e.Entries()
	if len(entries) != 2 || entries[0].Message != "two" || entries[1].Message != "three" {
		t.Errorf("entries = %+v, want [two three]", entries)
	}

	entries[0].Message = "mutated"
	if e.Entries()[0].Message != "two" {
		t.Error("Entries() should return a copy")
	}
}
