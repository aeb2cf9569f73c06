// Package logs builds the service's slog logger from configuration.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/pkg/constants"
)

// New returns the logger every component receives through fx. Records go to
// stdout and/or a rotating file, and to Loki when enabled. Outside of
// development the local format is always JSON.
func New(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	var handlers []slog.Handler
	if w := localWriter(cfg.Logging.Output); w != nil {
		handlers = append(handlers, localHandler(cfg, w, level))
	}
	if cfg.Logging.Output.Loki.Enabled {
		handlers = append(handlers, newLokiHandler(cfg, level))
	}

	var h slog.Handler = &multiHandler{handlers: handlers}
	if len(handlers) == 1 {
		h = handlers[0]
	}

	return slog.New(contextHandler{h}).With(
		slog.String("service", cfg.Observability.ServiceName),
		slog.String("version", cfg.Observability.ServiceVersion),
		slog.String("env", cfg.Server.Environment),
	)
}

// localWriter is nil only when Loki is the sole configured output.
func localWriter(out config.OutputConfig) io.Writer {
	var ws []io.Writer
	if out.Stdout || (!out.File.Enabled && !out.Loki.Enabled) {
		ws = append(ws, os.Stdout)
	}
	if out.File.Enabled {
		ws = append(ws, &lumberjack.Logger{
			Filename:   out.File.Path,
			MaxSize:    out.File.MaxSizeMB,
			MaxBackups: out.File.MaxBackups,
			MaxAge:     out.File.MaxAgeDays,
			Compress:   out.File.Compress,
		})
	}
	switch len(ws) {
	case 0:
		return nil
	case 1:
		return ws[0]
	}
	return io.MultiWriter(ws...)
}

func localHandler(cfg *config.Config, w io.Writer, level slog.Level) slog.Handler {
	dev := strings.EqualFold(cfg.Server.Environment, "development")
	opts := &slog.HandlerOptions{Level: level, AddSource: dev}
	if dev && strings.EqualFold(cfg.Logging.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Default is the CLI logger used before the config file has been read.
func Default() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", constants.ServiceName))
}

func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
