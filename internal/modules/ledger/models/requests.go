package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChatRequest is the body of POST /chat/message
type ChatRequest struct {
	Text           string `json:"text" validate:"required,max=2000"`
	ConversationID string `json:"conversationId" validate:"omitempty,max=64"`
}

// ChatResponse is the reply to one chat message
type ChatResponse struct {
	Reply              string              `json:"reply"`
	ConversationID     string              `json:"conversationId"`
	PendingTransaction *PendingTransaction `json:"pendingTransaction,omitempty"`
	PendingStock       *PendingStockUpdate `json:"pendingStock,omitempty"`
	ExtractedData      any                 `json:"extractedData"`
	Report             *BusinessSummary    `json:"reportData,omitempty"`
	DownloadURL        string              `json:"downloadUrl,omitempty"`
	Timestamp          time.Time           `json:"timestamp"`
}

// ConfirmTransactionRequest is the body of POST /chat/confirm-transaction
type ConfirmTransactionRequest struct {
	TransactionData *PendingTransaction `json:"transactionData" validate:"required"`
}

// ConfirmStockRequest is the body of POST /chat/confirm-stock
type ConfirmStockRequest struct {
	StockData *PendingStockUpdate `json:"stockData" validate:"required"`
}

// ConfirmResult is returned by a transaction confirmation, duplicate or not
type ConfirmResult struct {
	Success     bool         `json:"success"`
	Duplicate   bool         `json:"duplicate,omitempty"`
	Message     string       `json:"message,omitempty"`
	Transaction *Transaction `json:"transaction"`
}

// StockResult is returned by a stock confirmation
type StockResult struct {
	Success       bool           `json:"success"`
	Duplicate     bool           `json:"duplicate,omitempty"`
	Message       string         `json:"message,omitempty"`
	InventoryItem *InventoryItem `json:"inventoryItem,omitempty"`
	Movement      *StockMovement `json:"movement,omitempty"`
}

// TransactionItemInput is one line of a manual transaction
type TransactionItemInput struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	Unit      string  `json:"unit" validate:"max=50"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// CreateTransactionRequest is the body of POST /transactions
type CreateTransactionRequest struct {
	Type         string                 `json:"type" validate:"required,oneof=sale purchase expense debt loan"`
	Amount       float64                `json:"amount" validate:"gt=0"`
	Items        []TransactionItemInput `json:"items" validate:"dive"`
	CustomerName *string                `json:"customer_name" validate:"omitempty,max=200"`
	OccurredAt   *time.Time             `json:"occurred_at"`
	Notes        *string                `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateTransactionRequest is the body of PUT /transactions/:id
type UpdateTransactionRequest struct {
	Status       *string `json:"status" validate:"omitempty,oneof=paid unpaid"`
	Notes        *string `json:"notes" validate:"omitempty,max=1000"`
	CustomerName *string `json:"customer_name" validate:"omitempty,max=200"`
}

// TransactionFilter narrows GET /transactions
type TransactionFilter struct {
	From   *time.Time
	To     *time.Time
	Type   string
	Status string
	Page   int
	Limit  int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps paging to sane bounds
func (f *TransactionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

// Offset is the row offset of the current page
func (f TransactionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TransactionListResponse is the paged list of transactions
type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

// DebtSummary lists unpaid debts and loans with what is still owed
type DebtSummary struct {
	Transactions []Transaction   `json:"transactions"`
	Count        int             `json:"count"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}
