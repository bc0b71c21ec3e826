// Package records keeps the history of conversions together with their logs.
package records

import (
	"context"
	"errors"

	"github.com/cobol-converter/backend/internal/models"
)

// ErrNotFound is returned when no conversion has the requested ID.
var ErrNotFound = errors.New("conversion not found")

// Store persists conversions.
type Store interface {
	Insert(ctx context.Context, c *models.Conversion) error
	Get(ctx context.Context, id string) (*models.Conversion, error)
	List(ctx context.Context, limit int) ([]models.ConversionSummary, error)
	Delete(ctx context.Context, id string) error
}
