package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service provides audit logging functionality
type Service struct {
	db *gorm.DB
}

// NewService creates a new audit service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Log creates a new audit log entry
func (s *Service) Log(ctx context.Context, entry *AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// Record writes an entry and only logs a failure; the audited operation has already succeeded
func (s *Service) Record(ctx context.Context, e Entry) {
	row, err := e.toLog()
	if err == nil {
		err = s.Log(ctx, row)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", e.UserID.String()).
			Str("action", e.Action).
			Str("entity", e.Entity).
			Str("entity_id", e.EntityID).
			Msg("❌ Failed to write audit log")
	}
}

func (e Entry) toLog() (*AuditLog, error) {
	oldJSON, err := toJSON(e.OldValue)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize old value: %w", err)
	}
	newJSON, err := toJSON(e.NewValue)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize new value: %w", err)
	}

	return &AuditLog{
		UserID:      e.UserID,
		Action:      e.Action,
		Entity:      e.Entity,
		EntityID:    e.EntityID,
		OldValue:    oldJSON,
		NewValue:    newJSON,
		Description: e.Description,
	}, nil
}

// toJSON converts a value to datatypes.JSON
func toJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(data), nil
}
