package tracing

import (
	"io"
	"log/slog"
)

// NewWithWriter builds a System whose stdout exporter writes to w.
func NewWithWriter(cfg *Config, version string, w io.Writer, logger *slog.Logger) (*System, error) {
	return newSystem(cfg, version, w, logger)
}
