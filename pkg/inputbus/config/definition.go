package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
	"github.com/randalmurphal/inputbus/pkg/inputbus/diagnostics"
)

// ErrNoEvents indicates a definition declares no events.
var ErrNoEvents = errors.New("definition declares no events")

// Definition is a bus configuration decoded from a Config.
type Definition struct {
	Events   []string
	Contexts []string

	// InitialContext is reported right after initialization when set.
	InitialContext string

	WarnOnUnmappedEvent       bool
	WarnOnUnrecognizedContext bool

	Metrics bool
	Tracing bool

	// LogFile is nil when no log_file section is present.
	LogFile *diagnostics.FileConfig

	// DiagnosticsDB is a SQLite path for the diagnostics audit trail.
	DiagnosticsDB string
}

// Decode reads a Definition from cfg.
//
// Recognized keys:
//
//	events: [Jump, Move]
//	contexts: [Keyboard, Gamepad]
//	initial_context: Keyboard
//	warn_on_unmapped_event: true
//	warn_on_unrecognized_context: true
//	metrics: false
//	tracing: false
//	diagnostics_db: ./diag.db
//	log_file:
//	  path: ./logs/inputbus.log
//	  level: info
//	  max_size_mb: 10
//	  max_backups: 5
//	  max_age_days: 0
//	  compress: false
//	  json: false
//
// $VAR and ${VAR} in log_file.path and diagnostics_db are expanded from
// the environment.
func Decode(cfg Config) (Definition, error) {
	def := Definition{
		Events:                    cfg.StringSlice("events", nil),
		Contexts:                  cfg.StringSlice("contexts", nil),
		InitialContext:            cfg.String("initial_context", ""),
		WarnOnUnmappedEvent:       cfg.Bool("warn_on_unmapped_event", true),
		WarnOnUnrecognizedContext: cfg.Bool("warn_on_unrecognized_context", true),
		Metrics:                   cfg.Bool("metrics", false),
		Tracing:                   cfg.Bool("tracing", false),
		DiagnosticsDB:             os.ExpandEnv(cfg.String("diagnostics_db", "")),
	}

	if len(def.Events) == 0 {
		return Definition{}, ErrNoEvents
	}

	if cfg.Has("log_file") {
		lf := cfg.Sub("log_file")
		path := os.ExpandEnv(lf.String("path", ""))
		if path == "" {
			return Definition{}, errors.New("log_file.path is required")
		}
		level, err := parseLevel(lf.String("level", "info"))
		if err != nil {
			return Definition{}, err
		}
		def.LogFile = &diagnostics.FileConfig{
			Path:       path,
			Level:      level,
			MaxSizeMB:  lf.Int("max_size_mb", 10),
			MaxBackups: lf.Int("max_backups", 5),
			MaxAgeDays: lf.Int("max_age_days", 0),
			Compress:   lf.Bool("compress", false),
			JSON:       lf.Bool("json", false),
		}
	}

	if def.InitialContext != "" && !contains(def.Contexts, def.InitialContext) {
		return Definition{}, fmt.Errorf("initial_context %q: %w", def.InitialContext, catalog.ErrUnknownContext)
	}

	return def, nil
}

// Catalogs builds the event catalog and context set the definition names.
func (d Definition) Catalogs() (*catalog.Events, *catalog.ContextSet, error) {
	events, err := catalog.NewEvents(d.Events...)
	if err != nil {
		return nil, nil, fmt.Errorf("events: %w", err)
	}
	contexts, err := catalog.NewContextSet(d.Contexts...)
	if err != nil {
		return nil, nil, fmt.Errorf("contexts: %w", err)
	}
	return events, contexts, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log_file.level: %w", err)
	}
	return level, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
