// handlers_page.go - Converter page handlers
package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/cobol-converter/backend/internal/records"
	"github.com/cobol-converter/backend/internal/web"
)

const recentOnPage = 10

// PageHandlerImpl implements the PageHandler interface
type PageHandlerImpl struct {
	uploads  *Uploader
	runner   JobRunner
	records  records.Store
	renderer *web.Renderer
}

// NewPageHandler creates a new page handler
func NewPageHandler(uploads *Uploader, runner JobRunner, recs records.Store, renderer *web.Renderer) PageHandler {
	return &PageHandlerImpl{
		uploads:  uploads,
		runner:   runner,
		records:  recs,
		renderer: renderer,
	}
}

// HandleHome renders the converter page in its idle state
func (h *PageHandlerImpl) HandleHome(c echo.Context) error {
	return h.render(c, http.StatusOK, web.PageData{})
}

// HandleConvertPage converts the submitted file and renders the result.
// Failures are shown as form errors on the same page.
func (h *PageHandlerImpl) HandleConvertPage(c echo.Context) error {
	info, apiErr := h.uploads.Receive(c)
	if apiErr != nil {
		return h.render(c, apiErr.Status, web.PageData{Errors: []string{apiErr.Message}})
	}

	conv, err := h.runner.Convert(c.Request().Context(), info)
	if err != nil {
		apiErr := conversionError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			log.Errorf("[Page] Conversion of %s failed: %v", info.Name, err)
		}
		return h.render(c, apiErr.Status, web.PageData{Errors: []string{apiErr.Message}})
	}

	return h.render(c, http.StatusOK, web.PageData{Conversion: conv})
}

func (h *PageHandlerImpl) render(c echo.Context, status int, data web.PageData) error {
	data.Accept = strings.Join(h.uploads.allowed, ",")

	recent, err := h.records.List(c.Request().Context(), recentOnPage)
	if err != nil {
		log.Warnf("[Page] Could not list recent conversions: %v", err)
	}
	data.Recent = recent

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, data); err != nil {
		return NewInternalError("failed to render page", err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}
