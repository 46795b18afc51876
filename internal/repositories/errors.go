package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/kryptohire/internal/apperrors"
)

// wrapFind turns gorm.ErrRecordNotFound into a NotFoundError and wraps everything else.
func wrapFind(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, id)
	}
	return fmt.Errorf("failed to find %s: %w", resource, err)
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
