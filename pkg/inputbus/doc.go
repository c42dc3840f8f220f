/*
Package inputbus routes named input events to handlers, filtered by the
host's active input context.

# Overview

A host (a game loop, a terminal UI, a test harness) knows two things the
bus does not: which discrete events exist, and which control scheme the
user is currently on. It hands both catalogs to Initialize, then forwards
input as it happens:

	bus := inputbus.New()
	err := bus.Initialize(
	    catalog.MustEvents("Jump", "Move"),
	    catalog.MustContextSet("Keyboard", "Gamepad"),
	)

	err = bus.
	    Subscribe("Jump", jump).            // every context
	    Subscribe("Move", stick, "Gamepad"). // gamepad only
	    Err()

	bus.OnContextReported(ctx, "Gamepad")
	err = bus.OnEventTriggered(ctx, "Move", delta)

# Dispatch

OnEventTriggered invokes every handler in every group whose context is
unscoped or equal to the active context. A handler registered twice for
the same event and context runs once. Unknown events and events with no
handlers do nothing and raise an "unmapped event" diagnostic.

The first handler error stops the dispatch and is returned as a
*router.HandlerError. Panics propagate; wrap a handler with Recover to
turn them into *PanicError.

# Contexts

The active context starts unset and only changes through
OnContextReported. Unknown names raise an "unrecognized context"
diagnostic and change nothing. Reporting the active context again is a
no-op. Observers added with OnContextChanged run on every real change.

# Diagnostics

Diagnostics go to a diagnostics.Sink; by default a LogSink over the bus
logger. WithWarnOnUnmappedEvent and WithWarnOnUnrecognizedContext switch
the two warnings off without changing behavior.

# Concurrency

A Bus has no internal locking. Drive it from the goroutine that receives
host input.
*/
package inputbus
