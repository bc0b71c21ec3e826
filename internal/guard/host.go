// host.go - Element contract the guard expects from its host page
package guard

// FileInput is the file picker control. Only the number of selected files
// matters to the guard.
type FileInput interface {
	FileCount() int
}

// Overlay is the progress indicator shown while a conversion is in flight.
type Overlay interface {
	SetVisible(visible bool)
	Visible() bool
}

// Button is the form's submit control.
type Button interface {
	SetDisabled(disabled bool)
	Disabled() bool
	SetLabel(label string)
	Label() string
}

// Notifier shows a blocking message to the user (window.alert in a browser).
type Notifier interface {
	Alert(message string)
}

// SubmitEvent is a pending form submission.
type SubmitEvent interface {
	PreventDefault()
	DefaultPrevented() bool
}

// EventSource delivers page lifecycle and form events to subscribers.
type EventSource interface {
	OnPageLoad(handler func())
	OnSubmit(handler func(SubmitEvent))
}

// Elements holds the handles the guard reads and writes. All fields are
// required; the host page owns the underlying elements.
type Elements struct {
	FileInput FileInput
	Overlay   Overlay
	Button    Button
	Notifier  Notifier
}
