package handlers

import (
	"strings"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	chatService    *services.ChatService
	confirmService *services.ConfirmService
}

func NewChatHandler(chatService *services.ChatService, confirmService *services.ConfirmService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		confirmService: confirmService,
	}
}

// SendMessage godoc
// @Summary Send a chat message
// @Description Reply to a shop owner's message and surface a pending transaction or stock update to confirm
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChatRequest true "Message"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /chat/message [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.chatService.ProcessMessage(c.UserContext(), userID, &req)
	if err != nil {
		return writeError(c, err, "Failed to process message")
	}

	return c.JSON(resp)
}

// ConfirmTransaction godoc
// @Summary Confirm a pending transaction
// @Description Save a transaction the user confirmed. Repeating the same confirmation within 30 seconds returns the saved one.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ConfirmTransactionRequest true "Pending transaction"
// @Success 200 {object} models.ConfirmResult
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /chat/confirm-transaction [post]
func (h *ChatHandler) ConfirmTransaction(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.ConfirmTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.confirmService.ConfirmTransaction(c.UserContext(), userID, req.TransactionData, models.SourceChat)
	if err != nil {
		return writeError(c, err, "Failed to save transaction")
	}

	return c.JSON(result)
}

// ConfirmStock godoc
// @Summary Confirm a pending stock update
// @Description Apply an add, remove or update stock action the user confirmed
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ConfirmStockRequest true "Pending stock update"
// @Success 200 {object} models.StockResult
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /chat/confirm-stock [post]
func (h *ChatHandler) ConfirmStock(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.ConfirmStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.confirmService.ConfirmStock(c.UserContext(), userID, req.StockData)
	if err != nil {
		return writeError(c, err, "Failed to update stock")
	}

	return c.JSON(result)
}

// GetHistory godoc
// @Summary Conversation history
// @Description Messages of one conversation, oldest first
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param conversationId query string true "Conversation ID"
// @Param limit query int false "Max messages" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /chat/history [get]
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	conversationID := strings.TrimSpace(c.Query("conversationId"))
	if conversationID == "" {
		return badRequest(c, "conversationId is required")
	}

	messages, err := h.chatService.History(c.UserContext(), userID, conversationID, c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err, "Failed to load history")
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	return c.JSON(fiber.Map{
		"conversationId": conversationID,
		"messages":       messages,
	})
}

// ListConversations godoc
// @Summary List conversations
// @Description Latest message of each conversation, newest first
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ConversationSummary
// @Router /chat/conversations [get]
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	conversations, err := h.chatService.Conversations(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "Failed to load conversations")
	}
	if conversations == nil {
		conversations = []models.ConversationSummary{}
	}

	return c.JSON(conversations)
}
