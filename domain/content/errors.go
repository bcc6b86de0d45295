package content

import (
	"errors"

	"github.com/google/uuid"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
)

// ErrNotFound is returned by stores when no row matches the id.
var ErrNotFound = errors.New("record not found")

// NotFound is the 404 for a record kind, e.g. "Client not found".
func NotFound(kind string) *apperrors.AppError {
	return apperrors.NewNotFound(apperrors.ErrCodeRecordNotFound, kind+" not found")
}

// StoreError maps a store failure to a 404 or a generic 500.
func StoreError(kind string, err error) *apperrors.AppError {
	if errors.Is(err, ErrNotFound) {
		return NotFound(kind)
	}
	return apperrors.NewInternal(apperrors.ErrCodeDatabaseError, "Internal server error", err)
}

// ValidID reports whether id can name a record. Anything that is not a
// UUID cannot exist and is reported as not found.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
