// fake_page.go - In-memory host page for exercising the form guard
package testutil

import (
	"github.com/cobol-converter/backend/internal/guard"
)

// FakeFileInput is a file picker holding file names.
type FakeFileInput struct {
	Files []string
}

func (f *FakeFileInput) FileCount() int { return len(f.Files) }

// FakeOverlay records the overlay display state.
type FakeOverlay struct {
	Shown bool
}

func (o *FakeOverlay) SetVisible(visible bool) { o.Shown = visible }
func (o *FakeOverlay) Visible() bool           { return o.Shown }

// FakeButton records the submit button state.
type FakeButton struct {
	IsDisabled bool
	Text       string
}

func (b *FakeButton) SetDisabled(disabled bool) { b.IsDisabled = disabled }
func (b *FakeButton) Disabled() bool            { return b.IsDisabled }
func (b *FakeButton) SetLabel(label string)     { b.Text = label }
func (b *FakeButton) Label() string             { return b.Text }

// FakeNotifier collects alert messages in order.
type FakeNotifier struct {
	Messages []string
}

func (n *FakeNotifier) Alert(message string) {
	n.Messages = append(n.Messages, message)
}

// FakeSubmitEvent is a submit event whose default action can be suppressed.
type FakeSubmitEvent struct {
	prevented bool
}

func (e *FakeSubmitEvent) PreventDefault()        { e.prevented = true }
func (e *FakeSubmitEvent) DefaultPrevented() bool { return e.prevented }

// FakePage wires the fake elements together and acts as the event source.
type FakePage struct {
	FileInput *FakeFileInput
	Overlay   *FakeOverlay
	Button    *FakeButton
	Notifier  *FakeNotifier

	loadHandlers   []func()
	submitHandlers []func(guard.SubmitEvent)
}

// NewFakePage creates a page as the server renders it: overlay hidden,
// button enabled and labelled "Convert", no file selected.
func NewFakePage() *FakePage {
	return &FakePage{
		FileInput: &FakeFileInput{},
		Overlay:   &FakeOverlay{},
		Button:    &FakeButton{Text: guard.IdleLabel},
		Notifier:  &FakeNotifier{},
	}
}

// Elements returns the guard handles for this page.
func (p *FakePage) Elements() guard.Elements {
	return guard.Elements{
		FileInput: p.FileInput,
		Overlay:   p.Overlay,
		Button:    p.Button,
		Notifier:  p.Notifier,
	}
}

// OnPageLoad implements guard.EventSource.
func (p *FakePage) OnPageLoad(handler func()) {
	p.loadHandlers = append(p.loadHandlers, handler)
}

// OnSubmit implements guard.EventSource.
func (p *FakePage) OnSubmit(handler func(guard.SubmitEvent)) {
	p.submitHandlers = append(p.submitHandlers, handler)
}

// Load fires the page load event.
func (p *FakePage) Load() {
	for _, h := range p.loadHandlers {
		h()
	}
}

// Submit fires a submit event and returns it for inspection.
func (p *FakePage) Submit() *FakeSubmitEvent {
	ev := &FakeSubmitEvent{}
	for _, h := range p.submitHandlers {
		h(ev)
	}
	return ev
}

// SelectFiles replaces the file input selection.
func (p *FakePage) SelectFiles(names ...string) {
	p.FileInput.Files = append([]string(nil), names...)
}

// HandlerCounts reports how many load and submit handlers are registered.
func (p *FakePage) HandlerCounts() (load, submit int) {
	return len(p.loadHandlers), len(p.submitHandlers)
}
