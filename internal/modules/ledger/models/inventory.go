package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultLowStockThreshold applies when an item is created without its own threshold
const DefaultLowStockThreshold = 5

// InventoryItem owns the on-hand quantity of one product.
// CurrentQuantity only changes together with a StockMovement insert.
type InventoryItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_user_name,priority:1" json:"user_id"`
	ItemID            *uuid.UUID      `gorm:"type:uuid" json:"item_id,omitempty"`
	Name              string          `gorm:"type:varchar(200);not null" json:"name"`
	NormalizedName    string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_inventory_user_name,priority:2" json:"-"`
	CurrentQuantity   float64         `gorm:"type:numeric(15,3);not null;default:0" json:"current_quantity"`
	Unit              string          `gorm:"type:varchar(50);not null;default:'pieces'" json:"unit"`
	BuyingPrice       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"buying_price"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"selling_price"`
	SupplierName      *string         `gorm:"type:varchar(200)" json:"supplier_name,omitempty"`
	LowStockThreshold float64         `gorm:"type:numeric(15,3);not null;default:5" json:"low_stock_threshold"`
	LastRestocked     *time.Time      `json:"last_restocked,omitempty"`
	LowStock          bool            `gorm:"-" json:"is_low_stock"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// AfterFind fills the computed low-stock flag
func (i *InventoryItem) AfterFind(tx *gorm.DB) error {
	i.LowStock = i.IsLowStock()
	return nil
}

// IsLowStock reports whether quantity is at or below the threshold
func (i *InventoryItem) IsLowStock() bool {
	return i.CurrentQuantity <= i.LowStockThreshold
}

// StockValue is quantity times buying price
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.BuyingPrice.Mul(decimal.NewFromFloat(i.CurrentQuantity))
}

// MovementType names why a quantity changed
type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementRestock    MovementType = "restock"
	MovementSpoilage   MovementType = "spoilage"
	MovementAdjustment MovementType = "adjustment"
)

// StockMovement is an append-only ledger row. NewQuantity = PreviousQuantity + Quantity.
type StockMovement struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_user_created,priority:1" json:"user_id"`
	InventoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_id"`
	Type             MovementType    `gorm:"type:varchar(20);not null" json:"type"`
	Quantity         float64         `gorm:"type:numeric(15,3);not null" json:"quantity"`
	PreviousQuantity float64         `gorm:"type:numeric(15,3);not null" json:"previous_quantity"`
	NewQuantity      float64         `gorm:"type:numeric(15,3);not null" json:"new_quantity"`
	// RequestedQuantity is the quantity the user asked for, used to spot repeated confirmations
	RequestedQuantity *float64        `gorm:"type:numeric(15,3)" json:"requested_quantity,omitempty"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"unit_price"`
	Reason            string          `gorm:"type:text" json:"reason"`
	SupplierName      *string         `gorm:"type:varchar(200)" json:"supplier_name,omitempty"`
	TransactionID     *uuid.UUID      `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime;index:idx_movements_user_created,priority:2" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
