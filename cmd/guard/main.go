//go:build js && wasm

// Command guard is the browser side of the converter page, compiled to
// WebAssembly and loaded by static/guard.js.
package main

import (
	"syscall/js"

	"github.com/cobol-converter/backend/internal/guard"
)

func main() {
	window := js.Global().Get("window")
	document := js.Global().Get("document")

	form := document.Call("getElementById", "convertForm")
	progress := document.Call("getElementById", "progressOverlay")
	convertBtn := document.Call("getElementById", "convertBtn")
	picker := document.Call("querySelector", `input[type="file"]`)

	for _, el := range []js.Value{form, progress, convertBtn, picker} {
		if el.IsNull() || el.IsUndefined() {
			js.Global().Get("console").Call("warn", "guard: converter form elements not found")
			return
		}
	}

	g, err := guard.New(guard.Elements{
		FileInput: fileInput{el: picker},
		Overlay:   overlay{el: progress},
		Button:    button{el: convertBtn},
		Notifier:  alerter{window: window},
	})
	if err != nil {
		js.Global().Get("console").Call("error", err.Error())
		return
	}

	src := events{window: window, form: form}
	g.Attach(src)
	src.onRestore(g.Reset)

	// The wasm module may start after window load already fired.
	if document.Get("readyState").String() == "complete" {
		g.HandlePageLoad()
	}

	select {}
}
