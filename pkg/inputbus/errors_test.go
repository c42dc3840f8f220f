package inputbus_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/inputbus/pkg/inputbus"
	"github.com/randalmurphal/inputbus/pkg/inputbus/catalog"
	"github.com/randalmurphal/inputbus/pkg/inputbus/config"
	"github.com/randalmurphal/inputbus/pkg/inputbus/router"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want inputbus.Category
	}{
		{"nil", nil, inputbus.CategoryNone},
		{"empty event", &router.RegistrationError{Err: router.ErrEmptyEventName}, inputbus.CategoryConfiguration},
		{"nil handler", inputbus.ErrNilHandler, inputbus.CategoryConfiguration},
		{"not comparable", inputbus.ErrHandlerNotComparable, inputbus.CategoryConfiguration},
		{"nil catalog", inputbus.ErrNilCatalog, inputbus.CategoryConfiguration},
		{"nil context set", inputbus.ErrNilContextSet, inputbus.CategoryConfiguration},
		{"not initialized", inputbus.ErrNotInitialized, inputbus.CategoryConfiguration},
		{"empty name", fmt.Errorf("event 0: %w", catalog.ErrEmptyName), inputbus.CategoryConfiguration},
		{"no events", config.ErrNoEvents, inputbus.CategoryConfiguration},
		{"unknown event", &router.RegistrationError{Event: "Fly", Err: router.ErrUnknownEvent}, inputbus.CategoryLookup},
		{"unknown context", fmt.Errorf("%w: %q", catalog.ErrUnknownContext, "Touch"), inputbus.CategoryLookup},
		{
			"handler returned a lookup error",
			&router.HandlerError{Event: "Jump", Err: router.ErrUnknownEvent},
			inputbus.CategoryHandler,
		},
		{"panic", &inputbus.PanicError{Event: "Jump", Value: "x"}, inputbus.CategoryHandler},
		{"panicked", inputbus.ErrHandlerPanicked, inputbus.CategoryHandler},
		{"other", errors.New("disk full"), inputbus.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inputbus.Classify(tt.err))
		})
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "none", inputbus.CategoryNone.String())
	assert.Equal(t, "configuration", inputbus.CategoryConfiguration.String())
	assert.Equal(t, "lookup", inputbus.CategoryLookup.String())
	assert.Equal(t, "handler", inputbus.CategoryHandler.String())
	assert.Equal(t, "unknown", inputbus.CategoryUnknown.String())
	assert.Equal(t, "unknown", inputbus.Category(99).String())
}

func TestPanicError(t *testing.T) {
	err := &inputbus.PanicError{Event: "Jump", Value: "kaboom"}
	assert.Equal(t, "handler panic on Jump: kaboom", err.Error())
}
