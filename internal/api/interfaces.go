// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/cobol-converter/backend/internal/jobs"
	"github.com/cobol-converter/backend/internal/models"
)

// PageHandler serves the converter page and its form submission
type PageHandler interface {
	HandleHome(c echo.Context) error
	HandleConvertPage(c echo.Context) error
}

// ConvertHandler handles JSON conversion requests and async jobs
type ConvertHandler interface {
	HandleConvert(c echo.Context) error
	HandleStartJob(c echo.Context) error
	HandleGetJob(c echo.Context) error
}

// ConversionHandler handles access to recorded conversions
type ConversionHandler interface {
	HandleListConversions(c echo.Context) error
	HandleGetConversion(c echo.Context) error
	HandleDownloadJava(c echo.Context) error
	HandleConversionMsgpack(c echo.Context) error
	HandleDeleteConversion(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// JobRunner defines the conversion runner the handlers use
// This allows mocking in tests
type JobRunner interface {
	Start(info *models.FileInfo) *jobs.Job
	Get(id string) (*jobs.Job, bool)
	Convert(ctx context.Context, info *models.FileInfo) (*models.Conversion, error)
}

var _ JobRunner = (*jobs.Manager)(nil)
