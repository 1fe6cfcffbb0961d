package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = fmt.Errorf("record not found: %w", gorm.ErrRecordNotFound)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// findOrCreateByName reads the row owned by userID with the given normalized name,
// inserting row when none exists. A concurrent insert of the same name loses the
// unique index race and re-reads the winner.
func findOrCreateByName[T any](ctx context.Context, db *gorm.DB, userID uuid.UUID, normalized string, row *T) (*T, error) {
	lookup := func() (*T, error) {
		var existing T
		err := db.WithContext(ctx).
			Where("user_id = ? AND normalized_name = ?", userID, normalized).
			First(&existing).Error
		if err != nil {
			return nil, err
		}
		return &existing, nil
	}

	existing, err := lookup()
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return lookup()
		}
		return nil, err
	}
	return row, nil
}
