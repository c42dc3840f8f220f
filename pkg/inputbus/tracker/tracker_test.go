package tracker_test

import (
	"testing"

	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
	"github.com/randalmurphal/inputbus/pkg/inputbus/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	tr, err := tracker.New(catalog.MustContextSet("Keyboard", "Gamepad"))
	require.NoError(t, err)
	return tr
}

func TestNew_NilSet(t *testing.T) {
	_, err := tracker.New(nil)
	assert.ErrorIs(t, err, tracker.ErrNilContextSet)
}

func TestTracker_StartsUninitialized(t *testing.T) {
	tr := newTracker(t)
	assert.Equal(t, tracker.StateUninitialized, tr.State())
	active, ok := tr.Active()
	assert.False(t, ok)
	assert.True(t, active.IsZero())
}

func TestTracker_Report(t *testing.T) {
	tr := newTracker(t)
	var notified []tracker.Transition
	tr.Observe(func(x tracker.Transition) { notified = append(notified, x) })

	steps := []struct {
		name        string
		report      string
		wantOutcome tracker.Outcome
		wantActive  string
		wantNotes   int
	}{
		{"unknown before any context", "Touch", tracker.OutcomeUnrecognized, "", 0},
		{"first context", "Keyboard", tracker.OutcomeChanged, "Keyboard", 1},
		{"same context again", "Keyboard", tracker.OutcomeUnchanged, "Keyboard", 1},
		{"switch context", "Gamepad", tracker.OutcomeChanged, "Gamepad", 2},
		{"unknown keeps active", "UnknownScheme", tracker.OutcomeUnrecognized, "Gamepad", 2},
		{"empty name", "", tracker.OutcomeUnrecognized, "Gamepad", 2},
		{"switch back", "Keyboard", tracker.OutcomeChanged, "Keyboard", 3},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			got := tr.Report(step.report)
			assert.Equal(t, step.wantOutcome, got.Outcome)
			assert.Equal(t, step.report, got.Reported)

			active, _ := tr.Active()
			assert.Equal(t, step.wantActive, active.Name())
			assert.Len(t, notified, step.wantNotes)
		})
	}

	require.Len(t, notified, 3)
	assert.True(t, notified[0].Previous.IsZero())
	assert.Equal(t, "Keyboard", notified[0].Current.Name())
	assert.Equal(t, "Keyboard", notified[1].Previous.Name())
	assert.Equal(t, "Gamepad", notified[1].Current.Name())
	assert.Equal(t, tracker.StateActive, tr.State())
}

func TestTracker_ObserverOrderAndUnsubscribe(t *testing.T) {
	tr := newTracker(t)
	var calls []string

	tr.Observe(func(tracker.Transition) { calls = append(calls, "a") })
	stopB := tr.Observe(func(tracker.Transition) { calls = append(calls, "b") })
	tr.Observe(func(tracker.Transition) { calls = append(calls, "c") })

	tr.Report("Keyboard")
	assert.Equal(t, []string{"a", "b", "c"}, calls)

	stopB()
	stopB()
	calls = nil
	tr.Report("Gamepad")
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestTracker_UnsubscribeDuringNotify(t *testing.T) {
	tr := newTracker(t)
	var calls int
	var stop func()
	stop = tr.Observe(func(tracker.Transition) {
		calls++
		stop()
	})
	tr.Observe(func(tracker.Transition) { calls++ })

	tr.Report("Keyboard")
	assert.Equal(t, 2, calls)

	tr.Report("Gamepad")
	assert.Equal(t, 3, calls)
}

func TestTracker_NilObserver(t *testing.T) {
	tr := newTracker(t)
	stop := tr.Observe(nil)
	assert.NotPanics(t, func() {
		stop()
		tr.Report("Keyboard")
	})
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "unrecognized", tracker.OutcomeUnrecognized.String())
	assert.Equal(t, "unchanged", tracker.OutcomeUnchanged.String())
	assert.Equal(t, "changed", tracker.OutcomeChanged.String())
	assert.Equal(t, "unknown", tracker.Outcome(99).String())
	assert.Equal(t, "active", tracker.StateActive.String())
}
