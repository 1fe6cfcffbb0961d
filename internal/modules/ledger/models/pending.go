package models

import (
	"strings"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
)

// DefaultStockUnit is used when a stock update names no unit
const DefaultStockUnit = "pieces"

// PendingTransaction is a gated candidate waiting for the user's confirmation.
// It is never persisted; the client sends it back on confirm.
type PendingTransaction struct {
	extraction.Candidate
	UserMessage    string `json:"userMessage" validate:"max=2000"`
	ConversationID string `json:"conversationId" validate:"max=64"`
}

// NewPendingTransaction wraps a candidate with the message that produced it
func NewPendingTransaction(c extraction.Candidate, userMessage, conversationID string) *PendingTransaction {
	return &PendingTransaction{
		Candidate:      c,
		UserMessage:    userMessage,
		ConversationID: conversationID,
	}
}

// PendingStockUpdate is a stock action waiting for confirmation
type PendingStockUpdate struct {
	ActionType         extraction.StockAction `json:"actionType" validate:"required,oneof=add_stock remove_stock update_stock"`
	ItemName           string                 `json:"itemName" validate:"required,max=200"`
	Quantity           float64                `json:"quantity" validate:"gt=0"`
	Unit               string                 `json:"unit" validate:"max=50"`
	BuyingPricePerUnit float64                `json:"buyingPricePerUnit" validate:"gte=0"`
	SellingPrice       float64                `json:"sellingPrice" validate:"gte=0"`
	SupplierName       *string                `json:"supplierName" validate:"omitempty,max=200"`
}

// NewPendingStockUpdate turns a complete stock candidate into a pending update.
// Returns nil when the candidate lacks an action or an item name.
func NewPendingStockUpdate(s extraction.StockCandidate) *PendingStockUpdate {
	if !s.Complete() {
		return nil
	}
	unit := strings.TrimSpace(s.Unit)
	if unit == "" {
		unit = DefaultStockUnit
	}
	return &PendingStockUpdate{
		ActionType:         s.ActionType,
		ItemName:           strings.TrimSpace(s.ItemName),
		Quantity:           s.Quantity,
		Unit:               unit,
		BuyingPricePerUnit: s.BuyingPricePerUnit,
		SellingPrice:       s.SellingPrice,
		SupplierName:       s.SupplierName,
	}
}
