// handlers_conversions.go - Conversion history handlers
package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cobol-converter/backend/internal/records"
	"github.com/cobol-converter/backend/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

var publicClassPattern = regexp.MustCompile(`(?m)^\s*public\s+(?:final\s+)?class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

// ConversionHandlerImpl implements the ConversionHandler interface
type ConversionHandlerImpl struct {
	records records.Store
	store   storage.Store
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(recs records.Store, store storage.Store) ConversionHandler {
	return &ConversionHandlerImpl{records: recs, store: store}
}

// HandleListConversions returns the most recent conversions
func (h *ConversionHandlerImpl) HandleListConversions(c echo.Context) error {
	limit := defaultListLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			return NewValidationError("limit")
		}
		limit = n
	}

	list, err := h.records.List(c.Request().Context(), limit)
	if err != nil {
		return recordError(err, "")
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetConversion returns one conversion with its code and log
func (h *ConversionHandlerImpl) HandleGetConversion(c echo.Context) error {
	id := c.Param("id")
	conv, err := h.records.Get(c.Request().Context(), id)
	if err != nil {
		return recordError(err, id)
	}
	return c.JSON(http.StatusOK, conv)
}

// HandleDownloadJava returns the Java source as a file download named after
// its public class
func (h *ConversionHandlerImpl) HandleDownloadJava(c echo.Context) error {
	id := c.Param("id")
	conv, err := h.records.Get(c.Request().Context(), id)
	if err != nil {
		return recordError(err, id)
	}

	name := "ConvertedCobol"
	if m := publicClassPattern.FindStringSubmatch(conv.JavaCode); m != nil {
		name = m[1]
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".java"))
	return c.Blob(http.StatusOK, "text/x-java-source; charset=utf-8", []byte(conv.JavaCode))
}

// HandleConversionMsgpack returns a conversion encoded as MessagePack
func (h *ConversionHandlerImpl) HandleConversionMsgpack(c echo.Context) error {
	id := c.Param("id")
	conv, err := h.records.Get(c.Request().Context(), id)
	if err != nil {
		return recordError(err, id)
	}

	data, err := msgpack.Marshal(conv)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleDeleteConversion removes a conversion and its uploaded source
func (h *ConversionHandlerImpl) HandleDeleteConversion(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	conv, err := h.records.Get(ctx, id)
	if err != nil {
		return recordError(err, id)
	}
	if err := h.records.Delete(ctx, id); err != nil {
		return recordError(err, id)
	}
	if err := h.store.Delete(conv.FileID); err != nil {
		log.Warnf("[Conversions] Source %s of %s not removed: %v", conv.FileID, id, err)
	}
	return c.NoContent(http.StatusNoContent)
}
