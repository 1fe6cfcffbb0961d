package handlers

import (
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/gofiber/fiber/v2"
)

// Handlers groups every ledger handler for route registration
type Handlers struct {
	Chat         *ChatHandler
	Transactions *TransactionHandler
	Inventory    *InventoryHandler
	Reports      *ReportHandler
	Health       *HealthHandler
}

// RegisterRoutes mounts the ledger API. Everything except /health sits behind requireAuth.
func (h *Handlers) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/health", h.Health.GetHealth)

	chat := router.Group("/chat", requireAuth)
	chat.Post("/message", h.Chat.SendMessage)
	chat.Post("/confirm-transaction", h.Chat.ConfirmTransaction)
	chat.Post("/confirm-stock", h.Chat.ConfirmStock)
	chat.Get("/history", h.Chat.GetHistory)
	chat.Get("/conversations", h.Chat.ListConversations)

	// static paths before /:id
	transactions := router.Group("/transactions", requireAuth)
	transactions.Get("/", h.Transactions.ListTransactions)
	transactions.Post("/", h.Transactions.CreateTransaction)
	transactions.Get("/debts", h.Transactions.ListDebts)
	transactions.Get("/export", h.Transactions.ExportTransactions)
	transactions.Get("/:id", h.Transactions.GetTransaction)
	transactions.Put("/:id", h.Transactions.UpdateTransaction)
	transactions.Delete("/:id", h.Transactions.DeleteTransaction)
	transactions.Get("/:id/receipt-qr", h.Transactions.GetReceiptQR)

	inventory := router.Group("/inventory", requireAuth)
	inventory.Get("/", h.Inventory.ListInventory)
	inventory.Get("/:id/movements", h.Inventory.ListMovements)

	reports := router.Group("/reports", requireAuth)
	reports.Get("/summary", h.Reports.GetSummary)

	admin := router.Group("/admin", requireAuth, auth.RequireRole(auth.RoleAdmin))
	admin.Get("/ai-usage", h.Reports.GetAIUsage)
}
