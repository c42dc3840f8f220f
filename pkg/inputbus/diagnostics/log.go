package diagnostics

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogSink writes diagnostics to a slog.Logger. Misses log at warn level,
// context changes at info.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink over logger, or slog.Default() when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Emit implements Sink.
func (s *LogSink) Emit(ctx context.Context, d Diagnostic) error {
	level := slog.LevelWarn
	if d.Kind == KindContextChanged {
		level = slog.LevelInfo
	}
	s.logger.LogAttrs(ctx, level, d.Message,
		slog.String("kind", string(d.Kind)),
		slog.String("event", d.Event),
		slog.String("context", d.Context),
		slog.String("diagnostic_id", d.ID),
	)
	return nil
}

// FileConfig configures a rotating diagnostics log file.
type FileConfig struct {
	// Path is the log file path. Parent directories are created.
	Path string
	// Level is the minimum level written. Default: info.
	Level slog.Level
	// MaxSizeMB is the size in megabytes before rotation. Default: 10.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept. Default: 5.
	MaxBackups int
	// MaxAgeDays is the number of days rotated files are kept. 0 keeps them.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
	// JSON selects the JSON handler instead of text.
	JSON bool
}

// OpenLogFile returns a logger writing to a rotating file and a func that
// closes the file.
func OpenLogFile(cfg FileConfig) (*slog.Logger, func() error, error) {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(lj, opts)
	} else {
		handler = slog.NewTextHandler(lj, opts)
	}

	return slog.New(handler), lj.Close, nil
}
