// handlers.go - Upload intake and error mapping shared by the handlers
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/cobol-converter/backend/internal/convert"
	"github.com/cobol-converter/backend/internal/guard"
	"github.com/cobol-converter/backend/internal/models"
	"github.com/cobol-converter/backend/internal/records"
	"github.com/cobol-converter/backend/internal/storage"
)

// FormFileField is the multipart field carrying the COBOL source.
const FormFileField = "cobol_file"

// Uploader validates and stores COBOL uploads.
type Uploader struct {
	store   storage.Store
	allowed []string
}

// NewUploader creates an uploader accepting the given extensions
func NewUploader(store storage.Store, allowed []string) *Uploader {
	return &Uploader{store: store, allowed: allowed}
}

// Receive stores the file posted in FormFileField.
func (u *Uploader) Receive(c echo.Context) (*models.FileInfo, *APIError) {
	fh, err := c.FormFile(FormFileField)
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return nil, NewPayloadTooLargeError("The uploaded file is too large.")
		}
		return nil, &APIError{Status: http.StatusBadRequest, Code: "MISSING_FILE", Message: guard.MissingFileMessage}
	}
	if fh.Filename == "" {
		return nil, &APIError{Status: http.StatusBadRequest, Code: "MISSING_FILE", Message: guard.MissingFileMessage}
	}
	if !u.allowedName(fh.Filename) {
		return nil, NewUnsupportedTypeError(fmt.Sprintf(
			"Unsupported file type %q. Allowed: %s", filepath.Ext(fh.Filename), strings.Join(u.allowed, ", ")))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, NewBadRequestError("failed to read upload", err)
	}
	defer src.Close()

	info, err := u.store.Save(fh.Filename, src)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, NewPayloadTooLargeError("The uploaded file is too large.")
	}
	if err != nil {
		return nil, NewInternalError("failed to store upload", err)
	}
	log.Infof("[Upload] Stored %s as %s (%d bytes)", info.Name, info.ID, info.Size)
	return info, nil
}

func (u *Uploader) allowedName(name string) bool {
	if len(u.allowed) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range u.allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// conversionError maps pipeline failures to API errors.
func conversionError(err error) *APIError {
	switch {
	case errors.Is(err, convert.ErrEmptySource):
		return NewBadRequestError("The uploaded file is empty.", nil)
	case errors.Is(err, convert.ErrInvalidEncoding):
		return NewBadRequestError("The uploaded file is not UTF-8 text.", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return NewServiceUnavailableError("The conversion took too long. Please try again.")
	case errors.Is(err, context.Canceled):
		return NewServiceUnavailableError("The conversion was cancelled.")
	}
	return NewInternalError("conversion failed", err)
}

// recordError maps record store failures to API errors.
func recordError(err error, id string) *APIError {
	if errors.Is(err, records.ErrNotFound) {
		return NewNotFoundError("conversion", id)
	}
	return NewInternalError("failed to access conversion records", err)
}
