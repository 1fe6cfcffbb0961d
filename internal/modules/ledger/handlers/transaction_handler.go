package handlers

import (
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const receiptQRSize = 256

type TransactionHandler struct {
	transactionService *services.TransactionService
	exportService      *export.Service
}

func NewTransactionHandler(transactionService *services.TransactionService, exportService *export.Service) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		exportService:      exportService,
	}
}

// ListTransactions godoc
// @Summary List transactions
// @Description Paged ledger with optional date, type and status filters
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param type query string false "sale, purchase, expense, debt or loan"
// @Param status query string false "paid or unpaid"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} models.TransactionListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	filter := models.TransactionFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", models.DefaultPageLimit),
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		period, err := periodFromQuery(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		if c.Query("from") != "" {
			filter.From = &period.Start
		}
		if c.Query("to") != "" {
			filter.To = &period.End
		}
	}

	resp, err := h.transactionService.List(c.UserContext(), userID, filter)
	if err != nil {
		return writeError(c, err, "Failed to list transactions")
	}

	return c.JSON(resp)
}

// GetTransaction godoc
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} map[string]interface{}
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	tx, err := h.transactionService.Get(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err, "Failed to load transaction")
	}

	return c.JSON(tx)
}

// CreateTransaction godoc
// @Summary Create transaction
// @Description Record a transaction manually. Debts and loans are saved unpaid.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTransactionRequest true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} map[string]interface{}
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tx, err := h.transactionService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return writeError(c, err, "Failed to create transaction")
	}

	return c.Status(fiber.StatusCreated).JSON(tx)
}

// UpdateTransaction godoc
// @Summary Update transaction
// @Description Change status, notes or customer
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body models.UpdateTransactionRequest true "Changes"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	var req models.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tx, err := h.transactionService.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return writeError(c, err, "Failed to update transaction")
	}

	return c.JSON(tx)
}

// DeleteTransaction godoc
// @Summary Delete transaction
// @Description Soft delete. Inventory drawn down by a sale is not restored.
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	if err := h.transactionService.Delete(c.UserContext(), userID, id); err != nil {
		return writeError(c, err, "Failed to delete transaction")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Transaction deleted",
	})
}

// ListDebts godoc
// @Summary Outstanding debts
// @Description Unpaid debts and loans with the total still owed
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DebtSummary
// @Router /transactions/debts [get]
func (h *TransactionHandler) ListDebts(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	debts, err := h.transactionService.Debts(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "Failed to load debts")
	}

	return c.JSON(debts)
}

// ExportTransactions godoc
// @Summary Export transactions
// @Description Download transactions as CSV, Excel or PDF
// @Tags Transactions
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv, excel or pdf" default(csv)
// @Param period query string false "today, this_week, last_month, last_7_days ..." default(last_30_days)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param type query string false "Only this transaction type"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Router /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	period, err := periodFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	data, err := h.transactionService.ExportData(c.UserContext(), userID, period, c.Query("type"))
	if err != nil {
		return writeError(c, err, "Failed to load transactions")
	}

	content, contentType, err := h.exportService.Export(data, format)
	if err != nil {
		return writeError(c, err, "Failed to export transactions")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("format", string(format)).
		Int("rows", len(data.Rows)).
		Msg("📤 Transactions exported")

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, h.exportService.FileName("sokotally-transactions", format, time.Now())))
	return c.Send(content)
}

// GetReceiptQR godoc
// @Summary Receipt QR code
// @Description PNG QR code encoding a short receipt of the transaction
// @Tags Transactions
// @Produce image/png
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {file} image/png
// @Failure 404 {object} map[string]interface{}
// @Router /transactions/{id}/receipt-qr [get]
func (h *TransactionHandler) GetReceiptQR(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	tx, err := h.transactionService.Get(c.UserContext(), userID, id)
	if err != nil {
		return writeError(c, err, "Failed to load transaction")
	}

	png, err := qrcode.Encode(services.Receipt(tx), qrcode.Medium, receiptQRSize)
	if err != nil {
		return writeError(c, err, "Failed to generate QR code")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, "inline; filename=receipt-"+tx.ID.String()+".png")
	return c.Send(png)
}
