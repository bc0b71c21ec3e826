// handlers_convert.go - JSON conversion and job handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ConvertHandlerImpl implements the ConvertHandler interface
type ConvertHandlerImpl struct {
	uploads *Uploader
	runner  JobRunner
}

// NewConvertHandler creates a new convert handler
func NewConvertHandler(uploads *Uploader, runner JobRunner) ConvertHandler {
	return &ConvertHandlerImpl{uploads: uploads, runner: runner}
}

// HandleConvert converts an uploaded file and returns the recorded conversion
func (h *ConvertHandlerImpl) HandleConvert(c echo.Context) error {
	info, apiErr := h.uploads.Receive(c)
	if apiErr != nil {
		return apiErr
	}

	conv, err := h.runner.Convert(c.Request().Context(), info)
	if err != nil {
		return conversionError(err)
	}
	return c.JSON(http.StatusCreated, conv)
}

// HandleStartJob stores an upload and converts it in the background
func (h *ConvertHandlerImpl) HandleStartJob(c echo.Context) error {
	info, apiErr := h.uploads.Receive(c)
	if apiErr != nil {
		return apiErr
	}

	job := h.runner.Start(info)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":     job.ID,
		"status":    job.Status,
		"fileId":    info.ID,
		"statusUrl": "/api/jobs/" + job.ID,
	})
}

// HandleGetJob returns the current state of a conversion job
func (h *ConvertHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("id")
	job, ok := h.runner.Get(id)
	if !ok {
		return NewNotFoundError("job", id)
	}
	return c.JSON(http.StatusOK, job)
}
