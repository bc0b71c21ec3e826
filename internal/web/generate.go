package web

// Builds the form guard into static/. The server falls back to server-side
// validation when these files are absent.
//go:generate sh -c "GOOS=js GOARCH=wasm go build -o static/guard.wasm ../../cmd/guard"
//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" static/wasm_exec.js"
