package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

const (
	// RegistrationHint is sent to numbers not linked to any account
	RegistrationHint = "👋 Karibu SokoTally! This number is not linked to an account yet. Register in the SokoTally app and add this phone number to start recording sales here."

	confirmPrompt  = "Reply *YES* / *NDIO* to save or *NO* / *HAPANA* to discard."
	nothingWaiting = "There is nothing waiting for confirmation. Tell me about a sale, purchase or stock change."
	discardedReply = "❌ Discarded. Nothing was saved."
)

// Messenger delivers a text to a phone number
type Messenger interface {
	SendMessage(ctx context.Context, phone, text string) error
}

// PhoneDirectory resolves WhatsApp senders to accounts
type PhoneDirectory interface {
	GetUserByPhone(ctx context.Context, phone string) (*auth.User, error)
	ListUsersWithPhone(ctx context.Context) ([]auth.User, error)
}

// WhatsAppPending is what one phone number is asked to confirm
type WhatsAppPending struct {
	Transaction *models.PendingTransaction
	Stock       *models.PendingStockUpdate
}

// WhatsAppService runs the chat pipeline for messages that arrive over WhatsApp
type WhatsAppService struct {
	chat      *ChatService
	confirm   *ConfirmService
	reports   *ReportService
	users     PhoneDirectory
	messenger Messenger
	pending   *whatsapp.PendingStore[WhatsAppPending]
}

func NewWhatsAppService(chat *ChatService, confirm *ConfirmService, reports *ReportService, users PhoneDirectory, messenger Messenger, pending *whatsapp.PendingStore[WhatsAppPending]) *WhatsAppService {
	return &WhatsAppService{
		chat:      chat,
		confirm:   confirm,
		reports:   reports,
		users:     users,
		messenger: messenger,
		pending:   pending,
	}
}

// HandleIncomingMessage answers one inbound message and sends the reply back
func (s *WhatsAppService) HandleIncomingMessage(ctx context.Context, phone, text string) {
	log.Info().Str("from", utils.MaskPhone(phone)).Msg("📩 WhatsApp message received")

	reply := s.Reply(ctx, phone, text)
	if reply == "" {
		return
	}
	if err := s.messenger.SendMessage(ctx, phone, reply); err != nil {
		log.Error().Err(err).Str("to", utils.MaskPhone(phone)).Msg("❌ Failed to send WhatsApp reply")
	}
}

// Reply computes the answer to one inbound message
func (s *WhatsAppService) Reply(ctx context.Context, phone, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	user, err := s.lookupUser(ctx, phone)
	if errors.Is(err, auth.ErrUserNotFound) {
		return RegistrationHint
	}
	if err != nil {
		log.Error().Err(err).Str("from", utils.MaskPhone(phone)).Msg("❌ Failed to look up WhatsApp sender")
		return FallbackReply
	}

	switch whatsapp.ParseReply(text) {
	case whatsapp.ReplyConfirm:
		return s.confirmPending(ctx, user, phone)
	case whatsapp.ReplyDiscard:
		if _, ok := s.pending.Take(phone); !ok {
			return nothingWaiting
		}
		return discardedReply
	}

	resp, err := s.chat.ProcessMessage(ctx, user.ID, &models.ChatRequest{
		Text:           text,
		ConversationID: ConversationIDForPhone(phone),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("❌ WhatsApp chat pipeline failed")
		return FallbackReply
	}

	if resp.PendingTransaction == nil && resp.PendingStock == nil {
		return resp.Reply
	}

	s.pending.Put(phone, WhatsAppPending{Transaction: resp.PendingTransaction, Stock: resp.PendingStock})

	var sb strings.Builder
	sb.WriteString(resp.Reply)
	sb.WriteString("\n\n")
	if resp.PendingTransaction != nil {
		sb.WriteString(DescribePendingTransaction(resp.PendingTransaction))
		sb.WriteString("\n")
	}
	if resp.PendingStock != nil {
		sb.WriteString(DescribePendingStock(resp.PendingStock))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(confirmPrompt)
	return sb.String()
}

func (s *WhatsAppService) confirmPending(ctx context.Context, user *auth.User, phone string) string {
	pending, ok := s.pending.Take(phone)
	if !ok {
		return nothingWaiting
	}

	var lines []string
	if pending.Transaction != nil {
		result, err := s.confirm.ConfirmTransaction(ctx, user.ID, pending.Transaction, models.SourceWhatsApp)
		switch {
		case err != nil:
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("❌ WhatsApp transaction confirm failed")
			lines = append(lines, "⚠️ Could not save the transaction. Please try again.")
		case result.Duplicate:
			lines = append(lines, "ℹ️ "+result.Message)
		default:
			lines = append(lines, fmt.Sprintf("✅ Saved %s of KES %s.", result.Transaction.Type, kes(result.Transaction.Amount.InexactFloat64())))
		}
	}

	if pending.Stock != nil {
		result, err := s.confirm.ConfirmStock(ctx, user.ID, pending.Stock)
		switch {
		case err != nil:
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("❌ WhatsApp stock confirm failed")
			lines = append(lines, "⚠️ Could not update stock. Please try again.")
		case result.Duplicate:
			lines = append(lines, "ℹ️ "+result.Message)
		default:
			item := result.InventoryItem
			lines = append(lines, fmt.Sprintf("✅ %s now at %s %s.", item.Name, humanize.Ftoa(item.CurrentQuantity), item.Unit))
		}
	}

	return strings.Join(lines, "\n")
}

// lookupUser tries the number as stored at registration ("+254...") and as sent by WhatsApp ("254...")
func (s *WhatsAppService) lookupUser(ctx context.Context, phone string) (*auth.User, error) {
	digits := whatsapp.NormalizePhone(phone)
	if digits == "" {
		return nil, auth.ErrUserNotFound
	}

	user, err := s.users.GetUserByPhone(ctx, "+"+digits)
	if errors.Is(err, auth.ErrUserNotFound) {
		return s.users.GetUserByPhone(ctx, digits)
	}
	return user, err
}

// SweepPending drops confirmations nobody answered in time
func (s *WhatsAppService) SweepPending(ctx context.Context) error {
	if n := s.pending.Sweep(); n > 0 {
		log.Info().Int("expired", n).Msg("🧹 Expired WhatsApp confirmations dropped")
	}
	return nil
}

// SendDailySummaries sends today's business summary to every linked number.
// A failure for one user is logged and the rest still get theirs.
func (s *WhatsAppService) SendDailySummaries(ctx context.Context) error {
	users, err := s.users.ListUsersWithPhone(ctx)
	if err != nil {
		return fmt.Errorf("list users with phone: %w", err)
	}

	sent := 0
	for _, user := range users {
		if user.PhoneNumber == nil {
			continue
		}

		summary, err := s.reports.Summary(ctx, user.ID, analytics.GetDateRange(analytics.PeriodToday))
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("❌ Daily summary failed")
			continue
		}

		text := FormatSummary(summary, s.chat.DownloadURL(analytics.PeriodToday))
		if err := s.messenger.SendMessage(ctx, *user.PhoneNumber, text); err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("❌ Daily summary not delivered")
			continue
		}
		sent++
	}

	log.Info().Int("sent", sent).Int("users", len(users)).Msg("📨 Daily summaries sent")
	return nil
}

// ConversationIDForPhone keeps every WhatsApp exchange of one number in a single thread
func ConversationIDForPhone(phone string) string {
	return "wa-" + whatsapp.NormalizePhone(phone)
}

// DescribePendingTransaction lists a candidate for the user to check
func DescribePendingTransaction(p *models.PendingTransaction) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝 *%s* of KES %s", transactionLabel(p.TransactionType), kes(p.TotalAmount)))
	for _, item := range p.Items {
		if item.Name == extraction.PlaceholderItemName {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n• %s %s %s", item.Name, humanize.Ftoa(item.Quantity), item.Unit))
		if item.UnitPrice > 0 {
			sb.WriteString(fmt.Sprintf(" @ %s = %s", kes(item.UnitPrice), kes(item.TotalPrice)))
		}
	}
	if name := trimmed(p.CustomerName); name != "" {
		sb.WriteString("\nCustomer: " + name)
	}
	return sb.String()
}

// DescribePendingStock lists a stock update for the user to check
func DescribePendingStock(p *models.PendingStockUpdate) string {
	verb := map[extraction.StockAction]string{
		extraction.StockAdd:    "Add",
		extraction.StockRemove: "Remove",
		extraction.StockUpdate: "Set",
	}[p.ActionType]
	return fmt.Sprintf("📦 *%s stock*: %s %s %s", verb, p.ItemName, humanize.Ftoa(p.Quantity), p.Unit)
}

func transactionLabel(t extraction.TransactionType) string {
	s := string(t)
	if s == "" {
		return "Transaction"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
