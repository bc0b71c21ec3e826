// Package web provides the embedded converter page and its static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cobol-converter/backend/internal/guard"
	"github.com/cobol-converter/backend/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// HomeTemplate is the name of the converter page template.
const HomeTemplate = "home.html"

// PageData is rendered into the converter page.
type PageData struct {
	Title      string
	Accept     string
	Errors     []string
	Conversion *models.Conversion
	Recent     []models.ConversionSummary

	// Set by the renderer.
	ButtonLabel  string
	GuardEnabled bool
}

// GetFileSystem returns the embedded static assets with static/ as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// GuardBuildCommand builds guard.wasm and wasm_exec.js into static/.
const GuardBuildCommand = "go generate ./internal/web"

// GuardStatus describes the page's upload validation for the startup banner.
func GuardStatus() string {
	return guardStatus(HasGuardWasm())
}

func guardStatus(embedded bool) string {
	if embedded {
		return "wasm form guard embedded"
	}
	return "server-side only (" + GuardBuildCommand + ")"
}

// HasGuardWasm reports whether the compiled form guard has been embedded.
func HasGuardWasm() bool {
	staticFS, err := GetFileSystem()
	if err != nil {
		return false
	}
	for _, name := range []string{"guard.wasm", "wasm_exec.js"} {
		if _, err := fs.Stat(staticFS, name); err != nil {
			return false
		}
	}
	return true
}

// Renderer renders the converter page. It implements echo.Renderer.
type Renderer struct {
	tmpl  *template.Template
	guard bool
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, guard: HasGuardWasm()}, nil
}

// Page renders the converter page. The submit button always starts idle;
// the guard takes over once the page has loaded.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "COBOL to Java Converter"
	}
	if data.Accept == "" {
		data.Accept = ".cbl,.cob,.cpy,.txt"
	}
	data.ButtonLabel = guard.IdleLabel
	data.GuardEnabled = r.guard
	return r.tmpl.ExecuteTemplate(w, HomeTemplate, data)
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	if name != HomeTemplate {
		return fmt.Errorf("unknown template: %s", name)
	}
	switch d := data.(type) {
	case PageData:
		return r.Page(w, d)
	case *PageData:
		return r.Page(w, *d)
	case nil:
		return r.Page(w, PageData{})
	}
	return fmt.Errorf("unexpected page data %T", data)
}

// RegisterStaticRoutes serves the embedded assets under /static/.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	e.GET("/static/*", func(c echo.Context) error {
		if strings.HasSuffix(c.Request().URL.Path, "/") {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})
	return nil
}
