package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	historyLimit = 10

	// FallbackReply is sent when the assistant model cannot answer
	FallbackReply = "Sorry, I couldn't process that right now. Please try again.\nSamahani, siwezi kujibu sasa hivi. Tafadhali jaribu tena."

	offlineModel = "offline"
)

// UserDirectory looks up the account behind a chat
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

// ChatService runs one inbound message through reply, extraction and gating
type ChatService struct {
	invoker    extraction.Invoker
	extractor  *extraction.Extractor
	classifier *extraction.Classifier
	stock      *extraction.StockExtractor
	chat       repositories.ChatRepo
	usage      repositories.AIUsageRepo
	reports    *ReportService
	users      UserDirectory
	baseURL    string
	now        func() time.Time
}

// NewChatService wires the pipeline. A nil invoker runs everything offline on heuristics.
func NewChatService(invoker extraction.Invoker, repos *repositories.Set, reports *ReportService, users UserDirectory, baseURL string) *ChatService {
	return &ChatService{
		invoker:    invoker,
		extractor:  extraction.NewExtractor(invoker),
		classifier: extraction.NewClassifier(invoker),
		stock:      extraction.NewStockExtractor(invoker),
		chat:       repos.Chat,
		usage:      repos.Usage,
		reports:    reports,
		users:      users,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// ProcessMessage answers a message and surfaces anything worth confirming.
// Only an empty message or a failure to store the conversation is an error.
func (s *ChatService) ProcessMessage(ctx context.Context, userID uuid.UUID, req *models.ChatRequest) (*models.ChatResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidPayload)
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	if extraction.HasRole(text, extraction.RoleReport) {
		return s.reportReply(ctx, userID, conversationID, text)
	}

	started := s.now()
	reply, model := s.assistantReply(ctx, userID, conversationID, text)
	processing := s.now().Sub(started)

	candidate := s.extractor.Extract(ctx, text)

	var pendingStock *models.PendingStockUpdate
	if s.classifier.Classify(ctx, text) == extraction.LabelStock {
		pendingStock = models.NewPendingStockUpdate(s.stock.Extract(ctx, text))
	}

	var pending *models.PendingTransaction
	if extraction.IsStrongIntent(text, candidate) {
		pending = models.NewPendingTransaction(candidate, text, conversationID)
	}

	if err := s.saveTurn(ctx, userID, conversationID, text, candidate, reply, models.AssistantMetadata{
		Model:          model,
		ProcessingTime: processing.Milliseconds(),
		Confidence:     candidate.Confidence,
	}); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("conversation_id", conversationID).
		Str("type", string(candidate.TransactionType)).
		Float64("confidence", candidate.Confidence).
		Bool("pending_transaction", pending != nil).
		Bool("pending_stock", pendingStock != nil).
		Msg("💬 Chat message processed")

	return &models.ChatResponse{
		Reply:              reply,
		ConversationID:     conversationID,
		PendingTransaction: pending,
		PendingStock:       pendingStock,
		ExtractedData:      candidate,
		Timestamp:          s.now(),
	}, nil
}

// assistantReply asks the model for a conversational answer and records usage.
// Any failure degrades to FallbackReply.
func (s *ChatService) assistantReply(ctx context.Context, userID uuid.UUID, conversationID, text string) (string, string) {
	if s.invoker == nil {
		return FallbackReply, offlineModel
	}

	history, err := s.chat.History(ctx, userID, conversationID, historyLimit)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("⚠️ Failed to load chat history")
	}

	prompt := llm.BuildAssistantPrompt(s.snapshot(ctx, userID))

	started := s.now()
	completion, err := s.invoker.Invoke(ctx, text, prompt, toLLMHistory(history))
	elapsed := s.now().Sub(started)

	usage := &models.AIUsage{
		UserID:         userID,
		MessageType:    "chat",
		ResponseTimeMs: elapsed.Milliseconds(),
		Success:        err == nil,
	}
	if err != nil {
		msg := err.Error()
		usage.ErrorMessage = &msg
	} else {
		usage.TokensUsed = completion.TokensUsed
		usage.Model = completion.Model
	}
	if trackErr := s.usage.Create(ctx, usage); trackErr != nil {
		log.Warn().Err(trackErr).Str("user_id", userID.String()).Msg("⚠️ AI usage tracking failed")
	}

	if err != nil || strings.TrimSpace(completion.Reply) == "" {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("⚠️ Assistant reply unavailable, using fallback")
		return FallbackReply, usage.Model
	}
	return strings.TrimSpace(completion.Reply), completion.Model
}

// snapshot never fails; missing figures just leave the prompt thinner
func (s *ChatService) snapshot(ctx context.Context, userID uuid.UUID) *llm.BusinessSnapshot {
	snapshot, err := s.reports.Snapshot(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("⚠️ Failed to build business snapshot")
		snapshot = &llm.BusinessSnapshot{}
	}

	if s.users != nil {
		if user, err := s.users.GetUserByID(ctx, userID.String()); err == nil {
			snapshot.OwnerName = user.Name
			snapshot.BusinessName = user.BusinessName
		}
	}
	return snapshot
}

func (s *ChatService) reportReply(ctx context.Context, userID uuid.UUID, conversationID, text string) (*models.ChatResponse, error) {
	period := analytics.DateRangeAt(analytics.ParsePeriod(text), s.now())

	summary, err := s.reports.Summary(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	downloadURL := s.DownloadURL(period.Period)
	reply := FormatSummary(summary, downloadURL)

	if err := s.saveTurn(ctx, userID, conversationID, text, nil, reply, map[string]any{
		"reportGenerated": true,
		"timePeriod":      period.Period,
		"downloadUrl":     downloadURL,
	}); err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
		ExtractedData:  nil,
		Report:         summary,
		DownloadURL:    downloadURL,
		Timestamp:      s.now(),
	}, nil
}

// DownloadURL points at the CSV export of a period
func (s *ChatService) DownloadURL(period string) string {
	return fmt.Sprintf("%s/transactions/export?format=csv&period=%s", s.baseURL, url.QueryEscape(period))
}

func (s *ChatService) saveTurn(ctx context.Context, userID uuid.UUID, conversationID, text string, extracted any, reply string, metadata any) error {
	userMessage := &models.ChatMessage{
		UserID:         userID,
		ConversationID: conversationID,
		Role:           models.ChatRoleUser,
		Content:        text,
		Metadata:       toJSON(extracted),
	}
	if err := s.chat.Create(ctx, userMessage); err != nil {
		return fmt.Errorf("failed to save user message: %w", err)
	}

	assistantMessage := &models.ChatMessage{
		UserID:         userID,
		ConversationID: conversationID,
		Role:           models.ChatRoleAssistant,
		Content:        reply,
		Metadata:       toJSON(metadata),
	}
	if err := s.chat.Create(ctx, assistantMessage); err != nil {
		return fmt.Errorf("failed to save assistant message: %w", err)
	}
	return nil
}

// History returns the stored turns of one conversation
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, conversationID string, limit int) ([]models.ChatMessage, error) {
	return s.chat.History(ctx, userID, conversationID, limit)
}

// Conversations lists the user's conversations, latest first
func (s *ChatService) Conversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	return s.chat.Conversations(ctx, userID, 50)
}

func toLLMHistory(messages []models.ChatMessage) []llm.Message {
	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		role := llm.RoleUser
		if m.Role == models.ChatRoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
