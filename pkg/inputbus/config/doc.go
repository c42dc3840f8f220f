/*
Package config loads input bus definitions from YAML or JSON.

# Overview

Config wraps a map[string]any with typed accessors that fall back to a
default when a key is missing or has the wrong type. Decode turns a Config
into a Definition: the event and context names a bus is initialized with,
plus the diagnostic switches and observability flags.

# Usage

	def, err := config.LoadDefinition("inputbus.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	events, contexts, err := def.Catalogs()
	bus := inputbus.New(inputbus.WithDefinition(def))
	err = bus.Initialize(events, contexts)

A minimal file:

	events: [Jump, Move, Fire]
	contexts: [Keyboard, Gamepad]
	initial_context: Keyboard
	warn_on_unmapped_event: false

Both warn switches default to true.
*/
package config
