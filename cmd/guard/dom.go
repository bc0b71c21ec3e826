//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cobol-converter/backend/internal/guard"
)

// fileInput wraps an <input type="file">.
type fileInput struct{ el js.Value }

func (f fileInput) FileCount() int {
	files := f.el.Get("files")
	if files.IsNull() || files.IsUndefined() {
		return 0
	}
	return files.Get("length").Int()
}

// overlay toggles style.display on the progress overlay.
type overlay struct{ el js.Value }

func (o overlay) SetVisible(visible bool) {
	display := "none"
	if visible {
		display = "block"
	}
	o.el.Get("style").Set("display", display)
}

func (o overlay) Visible() bool {
	return o.el.Get("style").Get("display").String() == "block"
}

type button struct{ el js.Value }

func (b button) SetDisabled(disabled bool) { b.el.Set("disabled", disabled) }
func (b button) Disabled() bool            { return b.el.Get("disabled").Bool() }
func (b button) SetLabel(label string)     { b.el.Set("textContent", label) }
func (b button) Label() string             { return b.el.Get("textContent").String() }

// alerter uses window.alert, which blocks until dismissed.
type alerter struct{ window js.Value }

func (a alerter) Alert(message string) { a.window.Call("alert", message) }

// submitEvent wraps a DOM submit Event.
type submitEvent struct{ ev js.Value }

func (s submitEvent) PreventDefault()        { s.ev.Call("preventDefault") }
func (s submitEvent) DefaultPrevented() bool { return s.ev.Get("defaultPrevented").Bool() }

// events subscribes to window load and form submit. Callbacks live for the
// page lifetime, so they are never released.
type events struct {
	window js.Value
	form   js.Value
}

func (e events) OnPageLoad(handler func()) {
	e.window.Call("addEventListener", "load", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		handler()
		return nil
	}))
}

func (e events) OnSubmit(handler func(guard.SubmitEvent)) {
	e.form.Call("addEventListener", "submit", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		handler(submitEvent{ev: args[0]})
		return nil
	}))
}

// onRestore calls handler when the page comes back from the back/forward
// cache, where no load event fires.
func (e events) onRestore(handler func()) {
	e.window.Call("addEventListener", "pageshow", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 && args[0].Get("persisted").Bool() {
			handler()
		}
		return nil
	}))
}
