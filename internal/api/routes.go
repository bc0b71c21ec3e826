// routes.go - Route registration helpers
// This file provides a clean way to register all routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/cobol-converter/backend/internal/models"
	"github.com/cobol-converter/backend/internal/records"
	"github.com/cobol-converter/backend/internal/storage"
	"github.com/cobol-converter/backend/internal/web"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	Records           records.Store
	Jobs              JobRunner
	Renderer          *web.Renderer
	AllowedExtensions []string
	AllowDeletion     bool
	Rules             models.RulesInfo
	AIModel           string
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health      HealthHandler
	Page        PageHandler
	Convert     ConvertHandler
	Conversions ConversionHandler
	JobStream   JobStreamHandler

	allowDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	uploads := NewUploader(deps.Store, deps.AllowedExtensions)
	return &Handlers{
		Health:        NewHealthHandler(deps.Version, deps.Rules, deps.AIModel, deps.Records),
		Page:          NewPageHandler(uploads, deps.Jobs, deps.Records, deps.Renderer),
		Convert:       NewConvertHandler(uploads, deps.Jobs),
		Conversions:   NewConversionHandler(deps.Records, deps.Store),
		JobStream:     NewWebSocketHandler(deps.Jobs, 0),
		allowDeletion: deps.AllowDeletion,
	}
}

// RegisterRoutes registers all page and API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Converter page
	e.GET("/", handlers.Page.HandleHome)
	e.POST("/", handlers.Page.HandleConvertPage)

	apiGroup := e.Group("/api")

	// Conversion
	apiGroup.POST("/convert", handlers.Convert.HandleConvert)
	apiGroup.POST("/jobs", handlers.Convert.HandleStartJob)
	apiGroup.GET("/jobs/:id", handlers.Convert.HandleGetJob)
	apiGroup.GET("/jobs/:id/ws", handlers.JobStream.HandleJobSocket)

	// History
	convGroup := apiGroup.Group("/conversions")
	convGroup.GET("", handlers.Conversions.HandleListConversions)
	convGroup.GET("/:id", handlers.Conversions.HandleGetConversion)
	convGroup.GET("/:id/java", handlers.Conversions.HandleDownloadJava)
	convGroup.GET("/:id/msgpack", handlers.Conversions.HandleConversionMsgpack)

	// Conditional delete based on config
	if handlers.allowDeletion {
		convGroup.DELETE("/:id", handlers.Conversions.HandleDeleteConversion)
	}
}

// SetupMiddleware configures the error handler and static assets
func SetupMiddleware(e *echo.Echo, showErrorDetails bool) error {
	e.HTTPErrorHandler = NewErrorHandler(showErrorDetails)
	return web.RegisterStaticRoutes(e)
}
