// Package tracing owns the OpenTelemetry tracer provider. Domain systems take
// a trace.TracerProvider from it and never reach for the global one.
package tracing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
)

// System wraps an SDK tracer provider and flushes it on shutdown.
type System struct {
	provider        *sdktrace.TracerProvider
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// New builds the provider and installs it as the global one, so spans from
// instrumented libraries join the same traces.
func New(cfg *Config, version string, logger *slog.Logger) (*System, error) {
	return newSystem(cfg, version, os.Stderr, logger)
}

func newSystem(cfg *Config, version string, w io.Writer, logger *slog.Logger) (*System, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", version),
		)),
	}

	if cfg.Exporter == ExporterStdout {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout span exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(cfg.BatchTimeoutDuration())))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &System{
		provider:        tp,
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
		logger:          logger.With("system", "tracing", "exporter", cfg.Exporter),
	}, nil
}

// Provider returns the tracer provider handed to domain systems.
func (s *System) Provider() trace.TracerProvider {
	return s.provider
}

// Start registers the flush of pending spans with the coordinator.
func (s *System) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting tracing")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.Shutdown(context.Background()); err != nil {
			s.logger.Error("tracer provider shutdown failed", "error", err)
			return
		}
		s.logger.Info("tracing stopped")
	})

	return nil
}

// Shutdown flushes buffered spans and stops the provider.
func (s *System) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.provider.Shutdown(ctx)
}
