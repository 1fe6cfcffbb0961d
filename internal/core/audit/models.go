package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions recorded in the audit trail
const (
	ActionConfirm          = "confirm"
	ActionConfirmDuplicate = "confirm_duplicate"
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionDelete           = "delete"
)

// Entities recorded in the audit trail
const (
	EntityTransaction = "transaction"
	EntityInventory   = "inventory"
)

// AuditLog represents a system audit log entry
type AuditLog struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;index"`

	// Action details
	Action   string `json:"action" gorm:"type:text;not null;index"` // confirm, create, update, delete
	Entity   string `json:"entity" gorm:"type:text;not null;index"` // transaction, inventory
	EntityID string `json:"entity_id" gorm:"type:text;index"`

	// Change tracking
	OldValue datatypes.JSON `json:"old_value,omitempty" gorm:"type:jsonb"`
	NewValue datatypes.JSON `json:"new_value,omitempty" gorm:"type:jsonb"`

	Description string `json:"description,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Entry is what callers hand to Record; values are serialized to JSON
type Entry struct {
	UserID      uuid.UUID
	Action      string
	Entity      string
	EntityID    string
	OldValue    any
	NewValue    any
	Description string
}
