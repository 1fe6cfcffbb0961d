package models

import (
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// Amounts go out as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionStatus tells whether money is still owed on a transaction
type TransactionStatus string

const (
	StatusPaid   TransactionStatus = "paid"
	StatusUnpaid TransactionStatus = "unpaid"
)

// StatusFor applies the status rule: debts and loans start unpaid, everything else is paid
func StatusFor(t extraction.TransactionType) TransactionStatus {
	if t.IsLiability() {
		return StatusUnpaid
	}
	return StatusPaid
}

// TransactionSource records the channel a transaction came in through
type TransactionSource string

const (
	SourceChat     TransactionSource = "chat"
	SourceManual   TransactionSource = "manual"
	SourceWhatsApp TransactionSource = "whatsapp"
)

// TransactionItem is one persisted line, linked to the catalog when resolved
type TransactionItem struct {
	ItemID     *uuid.UUID `json:"item_id,omitempty"`
	Name       string     `json:"name"`
	Quantity   float64    `json:"quantity"`
	Unit       string     `json:"unit"`
	UnitPrice  float64    `json:"unit_price"`
	TotalPrice float64    `json:"total_price"`
}

// Transaction is a confirmed ledger entry
type Transaction struct {
	ID             uuid.UUID                           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID                           `gorm:"type:uuid;not null;index:idx_transactions_user_created,priority:1" json:"user_id"`
	Type           extraction.TransactionType          `gorm:"type:varchar(20);not null;index" json:"type"`
	Amount         decimal.Decimal                     `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Items          datatypes.JSONSlice[TransactionItem] `gorm:"type:jsonb" json:"items"`
	CustomerID     *uuid.UUID                          `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CustomerName   *string                             `gorm:"type:varchar(200)" json:"customer_name,omitempty"`
	OccurredAt     time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"occurred_at"`
	Status         TransactionStatus                   `gorm:"type:varchar(20);not null;default:'paid'" json:"status"`
	Notes          *string                             `gorm:"type:text" json:"notes,omitempty"`
	UserMessage    string                              `gorm:"type:text" json:"user_message,omitempty"`
	ConversationID *string                             `gorm:"type:varchar(64)" json:"conversation_id,omitempty"`
	Source         TransactionSource                   `gorm:"type:varchar(20);not null;default:'chat'" json:"source"`
	ExtractedData  datatypes.JSON                      `gorm:"type:jsonb" json:"extracted_data,omitempty"` // candidate as extracted, kept for audit
	CreatedAt      time.Time                           `gorm:"autoCreateTime;index:idx_transactions_user_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt                      `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate sets UUID before creating
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Description joins item names for exports and receipts
func (t *Transaction) Description() string {
	names := make([]string, 0, len(t.Items))
	for _, item := range t.Items {
		names = append(names, item.Name)
	}
	if len(names) == 0 && t.Notes != nil {
		return *t.Notes
	}
	return strings.Join(names, ", ")
}

// Customer is a named counterparty, unique per user by normalized name
type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_user_name,priority:1" json:"user_id"`
	Name           string    `gorm:"type:varchar(200);not null" json:"name"`
	NormalizedName string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_customers_user_name,priority:2" json:"-"`
	Phone          *string   `gorm:"type:varchar(32)" json:"phone,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CatalogItem is a product name the user has traded, unique per user by normalized name
type CatalogItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_items_user_name,priority:1" json:"user_id"`
	Name           string          `gorm:"type:varchar(200);not null" json:"name"`
	NormalizedName string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_items_user_name,priority:2" json:"-"`
	Unit           string          `gorm:"type:varchar(50)" json:"unit"`
	DefaultPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"default_price"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CatalogItem) TableName() string {
	return "items"
}

func (i *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
