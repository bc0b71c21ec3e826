// Package guard gates the conversion form on a selected file and drives the
// busy indicator between submission and the next page load.
package guard

import (
	"errors"
	"fmt"
)

const (
	// IdleLabel is the submit button text when no conversion is in flight.
	IdleLabel = "Convert"
	// BusyLabel is the submit button text after a submission was accepted.
	BusyLabel = "Converting..."
	// MissingFileMessage is shown when the form is submitted without a file.
	MissingFileMessage = "Please select a COBOL file first."
)

// ErrMissingFileSelection is returned by HandleSubmit when no file is
// attached. The submission has already been cancelled when it is returned.
var ErrMissingFileSelection = errors.New("guard: no file selected")

// State is the UI condition derived from the overlay and button.
type State string

const (
	StateIdle State = "idle"
	StateBusy State = "busy"
)

// Option customises a Guard.
type Option func(*Guard)

// WithLabels overrides the idle and busy button labels.
func WithLabels(idle, busy string) Option {
	return func(g *Guard) {
		if idle != "" {
			g.idleLabel = idle
		}
		if busy != "" {
			g.busyLabel = busy
		}
	}
}

// WithMissingFileMessage overrides the notification text.
func WithMissingFileMessage(msg string) Option {
	return func(g *Guard) {
		if msg != "" {
			g.missingFileMessage = msg
		}
	}
}

// Guard is the single UI controller for one page instance. Its handlers are
// invoked by the host event loop one at a time, so it holds no locks.
type Guard struct {
	elements Elements

	idleLabel          string
	busyLabel          string
	missingFileMessage string
}

// New builds a Guard over the given element handles.
func New(elements Elements, opts ...Option) (*Guard, error) {
	switch {
	case elements.FileInput == nil:
		return nil, fmt.Errorf("guard: file input is required")
	case elements.Overlay == nil:
		return nil, fmt.Errorf("guard: overlay is required")
	case elements.Button == nil:
		return nil, fmt.Errorf("guard: button is required")
	case elements.Notifier == nil:
		return nil, fmt.Errorf("guard: notifier is required")
	}

	g := &Guard{
		elements:           elements,
		idleLabel:          IdleLabel,
		busyLabel:          BusyLabel,
		missingFileMessage: MissingFileMessage,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Attach subscribes the guard's two handlers to the event source.
func (g *Guard) Attach(src EventSource) {
	src.OnPageLoad(g.HandlePageLoad)
	src.OnSubmit(func(ev SubmitEvent) {
		// The missing-file case is fully handled inside HandleSubmit.
		_ = g.HandleSubmit(ev)
	})
}

// HandlePageLoad puts the page into the idle state regardless of what came
// before. Calling it repeatedly has no further effect.
func (g *Guard) HandlePageLoad() {
	g.setIdle()
}

// Reset returns the page to the idle state outside of a page load, for hosts
// that restore a page without reloading it.
func (g *Guard) Reset() {
	g.setIdle()
}

// HandleSubmit checks that a file is selected. Without one the user is
// alerted, the submission is cancelled and ErrMissingFileSelection is
// returned with the UI untouched. Otherwise the page enters the busy state
// and the submission is left to proceed.
func (g *Guard) HandleSubmit(ev SubmitEvent) error {
	if g.elements.FileInput.FileCount() == 0 {
		g.elements.Notifier.Alert(g.missingFileMessage)
		ev.PreventDefault()
		return ErrMissingFileSelection
	}

	g.elements.Overlay.SetVisible(true)
	g.elements.Button.SetDisabled(true)
	g.elements.Button.SetLabel(g.busyLabel)
	return nil
}

// State reports whether the page is idle or busy.
func (g *Guard) State() State {
	if g.elements.Overlay.Visible() || g.elements.Button.Disabled() {
		return StateBusy
	}
	return StateIdle
}

func (g *Guard) setIdle() {
	g.elements.Overlay.SetVisible(false)
	g.elements.Button.SetDisabled(false)
	g.elements.Button.SetLabel(g.idleLabel)
}
