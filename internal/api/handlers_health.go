// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cobol-converter/backend/internal/models"
	"github.com/cobol-converter/backend/internal/records"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	rules   models.RulesInfo
	ai      string
	records records.Store
}

// NewHealthHandler creates a new health handler. ai names the language
// model in use, empty when conversions are rule-based only.
func NewHealthHandler(version string, rules models.RulesInfo, ai string, recs records.Store) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		rules:   rules,
		ai:      ai,
		records: recs,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	ai := h.ai
	if ai == "" {
		ai = "disabled"
	}
	body := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"ai":      ai,
		"rules":   h.rules,
	}

	if _, err := h.records.List(c.Request().Context(), 1); err != nil {
		body["status"] = "degraded"
		body["error"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}
