package inputbus

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/inputbus/pkg/inputbus/config"
	"github.com/randalmurphal/inputbus/pkg/inputbus/diagnostics"
)

// Open builds and initializes a bus from a definition.
//
// It opens the rotating log file and the SQLite diagnostics store when the
// definition names them; the returned close func releases both. opts are
// applied after the definition and may override it. Diagnostics go to the
// final logger and the store; WithDiagnostics replaces both.
func Open(def config.Definition, opts ...Option) (*Bus, func() error, error) {
	events, contexts, err := def.Catalogs()
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	all := []Option{WithDefinition(def)}

	if def.LogFile != nil {
		fileLogger, closeLog, err := diagnostics.OpenLogFile(*def.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, closeLog)
		all = append(all, WithLogger(fileLogger))
	}

	if def.DiagnosticsDB != "" {
		store, err := diagnostics.NewSQLiteSink(def.DiagnosticsDB)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("open diagnostics db: %w", err)
		}
		closers = append(closers, store.Close)
		all = append(all, withDiagnosticsStore(store))
	}

	bus := New(append(all, opts...)...)
	if err := bus.Initialize(events, contexts); err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	return bus, closeAll, nil
}
