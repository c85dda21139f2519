package tracing_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/cliprank/pkg/tracing"
)

var discard = slog.New(slog.DiscardHandler)

func TestConfigDefaults(t *testing.T) {
	var cfg tracing.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Exporter != tracing.ExporterNone {
		t.Errorf("exporter = %q, want %q", cfg.Exporter, tracing.ExporterNone)
	}
	if cfg.ServiceName != "cliprank" {
		t.Errorf("service name = %q", cfg.ServiceName)
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_TRACING_EXPORTER", "stdout")

	cfg := tracing.Config{}
	if err := cfg.Finalize(&tracing.Env{Exporter: "TEST_TRACING_EXPORTER"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Exporter != tracing.ExporterStdout {
		t.Errorf("exporter = %q, want stdout", cfg.Exporter)
	}
}

func TestConfigRejectsUnknownExporter(t *testing.T) {
	cfg := tracing.Config{Exporter: "jaeger"}
	if err := cfg.Finalize(nil); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestConfigMerge(t *testing.T) {
	base := tracing.Config{Exporter: "none", ServiceName: "a"}
	base.Merge(&tracing.Config{ServiceName: "b"})
	if base.Exporter != "none" || base.ServiceName != "b" {
		t.Errorf("merged = %+v", base)
	}
}

func TestSpansRecordWithoutExporter(t *testing.T) {
	cfg := tracing.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := tracing.New(&cfg, "test", discard)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = sys.Shutdown(context.Background()) })

	_, span := sys.Provider().Tracer("test").Start(context.Background(), "op")
	defer span.End()

	if !span.IsRecording() {
		t.Error("span is not recording")
	}
	if !span.SpanContext().HasTraceID() {
		t.Error("span has no trace id")
	}
}

func TestStdoutExporterFlushesOnShutdown(t *testing.T) {
	cfg := tracing.Config{Exporter: tracing.ExporterStdout}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var buf bytes.Buffer
	sys, err := tracing.NewWithWriter(&cfg, "test", &buf, discard)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, span := sys.Provider().Tracer("test").Start(context.Background(), "season.commit")
	span.End()

	if err := sys.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "season.commit") {
		t.Errorf("exported output missing span name: %s", buf.String())
	}
}
