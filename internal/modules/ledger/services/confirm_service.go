package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DefaultDedupWindow is how far back a confirmation looks for an identical record
const DefaultDedupWindow = 30 * time.Second

const (
	duplicateTransactionMessage = "Transaction already recorded."
	duplicateStockMessage       = "Stock update already recorded."
)

// Auditor records audit trail entries without failing the caller
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, audit.Entry) {}

// ConfirmService persists what the user confirmed, absorbing repeated confirmations
type ConfirmService struct {
	repos   *repositories.Set
	applier *InventoryApplier
	auditor Auditor
	window  time.Duration
	locks   *keyedMutex
	now     func() time.Time
}

func NewConfirmService(repos *repositories.Set, auditor Auditor, window time.Duration) *ConfirmService {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &ConfirmService{
		repos:   repos,
		applier: NewInventoryApplier(repos.Inventory),
		auditor: auditor,
		window:  window,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
}

// ConfirmTransaction saves a pending transaction, or returns the one saved moments ago
// for the same user, type and amount.
func (s *ConfirmService) ConfirmTransaction(ctx context.Context, userID uuid.UUID, pending *models.PendingTransaction, source models.TransactionSource) (*models.ConfirmResult, error) {
	if err := validatePending(pending); err != nil {
		return nil, err
	}

	txType := pending.TransactionType
	amount := decimal.NewFromFloat(pending.TotalAmount).Round(2)

	unlock := s.locks.Lock(transactionLockKey(userID, txType, amount))
	defer unlock()

	duplicate, err := s.repos.Transactions.FindRecentDuplicate(ctx, userID, string(txType), amount, s.now().Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %w", err)
	}
	if duplicate != nil {
		log.Info().
			Str("user_id", userID.String()).
			Str("transaction_id", duplicate.ID.String()).
			Msg("🔁 Duplicate transaction confirmation absorbed")
		s.auditor.Record(ctx, audit.Entry{
			UserID:      userID,
			Action:      audit.ActionConfirmDuplicate,
			Entity:      audit.EntityTransaction,
			EntityID:    duplicate.ID.String(),
			Description: duplicateTransactionMessage,
		})
		return &models.ConfirmResult{
			Success:     true,
			Duplicate:   true,
			Message:     duplicateTransactionMessage,
			Transaction: duplicate,
		}, nil
	}

	tx := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		OccurredAt:  occurredAt(pending.Date, s.now()),
		Status:      models.StatusFor(txType),
		Notes:       pending.Notes,
		UserMessage: pending.UserMessage,
		Source:      source,
	}
	if pending.ConversationID != "" {
		conversationID := pending.ConversationID
		tx.ConversationID = &conversationID
	}

	if extracted, err := json.Marshal(pending.Candidate); err == nil {
		tx.ExtractedData = datatypes.JSON(extracted)
	}

	if name := trimmed(pending.CustomerName); name != "" {
		customer, err := s.repos.Customers.FindOrCreate(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve customer: %w", err)
		}
		tx.CustomerID = &customer.ID
		tx.CustomerName = &customer.Name
	}

	items, err := s.resolveItems(ctx, userID, pending.Items)
	if err != nil {
		return nil, err
	}
	tx.Items = items

	if err := s.repos.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", tx.ID.String()).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Msg("✅ Transaction confirmed")

	if tx.Type == extraction.TypeSale {
		s.applier.ApplyInventoryEffects(ctx, tx)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionConfirm,
		Entity:      audit.EntityTransaction,
		EntityID:    tx.ID.String(),
		NewValue:    tx,
		Description: fmt.Sprintf("Confirmed %s of %s via %s", tx.Type, tx.Amount.StringFixed(2), source),
	})

	return &models.ConfirmResult{Success: true, Transaction: tx}, nil
}

// resolveItems links every named item to the catalog. The placeholder item stays unlinked.
func (s *ConfirmService) resolveItems(ctx context.Context, userID uuid.UUID, items []extraction.Item) ([]models.TransactionItem, error) {
	resolved := make([]models.TransactionItem, 0, len(items))
	for _, item := range items {
		line := models.TransactionItem{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}

		if name := strings.TrimSpace(item.Name); name != "" && name != extraction.PlaceholderItemName {
			catalogItem, err := s.repos.Items.FindOrCreate(ctx, userID, name, item.Unit, item.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve item %q: %w", name, err)
			}
			line.ItemID = &catalogItem.ID
		}

		resolved = append(resolved, line)
	}
	return resolved, nil
}

// ConfirmStock applies a pending stock update, or reports that an identical one was
// applied moments ago.
func (s *ConfirmService) ConfirmStock(ctx context.Context, userID uuid.UUID, pending *models.PendingStockUpdate) (*models.StockResult, error) {
	if pending == nil {
		return nil, fmt.Errorf("%w: stock data is required", ErrInvalidPayload)
	}
	if err := utils.ValidateStruct(pending); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	name := strings.TrimSpace(pending.ItemName)
	normalized := extraction.NormalizeName(name)
	quantity := pending.Quantity
	unit := strings.TrimSpace(pending.Unit)
	if unit == "" {
		unit = models.DefaultStockUnit
	}

	unlock := s.locks.Lock(stockLockKey(userID, quantity))
	defer unlock()

	duplicate, err := s.repos.Movements.FindRecentAssistantMovement(ctx, userID, quantity, s.now().Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %w", err)
	}
	if duplicate != nil {
		s.auditor.Record(ctx, audit.Entry{
			UserID:      userID,
			Action:      audit.ActionConfirmDuplicate,
			Entity:      audit.EntityInventory,
			EntityID:    duplicate.InventoryID.String(),
			Description: duplicateStockMessage,
		})
		return &models.StockResult{Success: true, Duplicate: true, Message: duplicateStockMessage}, nil
	}

	stock, err := s.repos.Inventory.FindOrCreate(ctx, &models.InventoryItem{
		UserID:            userID,
		Name:              normalized,
		NormalizedName:    normalized,
		Unit:              unit,
		BuyingPrice:       money(pending.BuyingPricePerUnit),
		SellingPrice:      money(pending.SellingPrice),
		SupplierName:      pending.SupplierName,
		LowStockThreshold: models.DefaultLowStockThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inventory item: %w", err)
	}

	requested := quantity
	movement := &models.StockMovement{RequestedQuantity: &requested}
	now := s.now()

	var next repositories.NextQuantity
	switch pending.ActionType {
	case extraction.StockAdd:
		movement.Type = models.MovementRestock
		movement.Reason = "Stock added via assistant"
		movement.UnitPrice = money(pending.BuyingPricePerUnit)
		movement.SupplierName = pending.SupplierName
		next = func(item *models.InventoryItem) (float64, error) {
			refreshDetails(item, unit, pending)
			if pending.SupplierName != nil && *pending.SupplierName != "" {
				item.SupplierName = pending.SupplierName
			}
			item.LastRestocked = &now
			return item.CurrentQuantity + quantity, nil
		}
	case extraction.StockRemove:
		movement.Type = models.MovementSpoilage
		movement.Reason = "Stock removed via assistant"
		movement.UnitPrice = stock.BuyingPrice
		next = func(item *models.InventoryItem) (float64, error) {
			return max(0, item.CurrentQuantity-quantity), nil
		}
	case extraction.StockUpdate:
		movement.Type = models.MovementAdjustment
		movement.Reason = "Stock updated via assistant"
		next = func(item *models.InventoryItem) (float64, error) {
			refreshDetails(item, unit, pending)
			movement.UnitPrice = item.BuyingPrice
			return quantity, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, pending.ActionType)
	}

	updated, err := s.repos.Inventory.ApplyMovement(ctx, stock.ID, movement, next)
	if err != nil {
		return nil, fmt.Errorf("failed to apply stock movement: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("inventory_id", updated.ID.String()).
		Str("action", string(pending.ActionType)).
		Float64("previous", movement.PreviousQuantity).
		Float64("new", movement.NewQuantity).
		Msg("📦 Stock update confirmed")

	s.auditor.Record(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionConfirm,
		Entity:      audit.EntityInventory,
		EntityID:    updated.ID.String(),
		NewValue:    movement,
		Description: movement.Reason,
	})

	return &models.StockResult{Success: true, InventoryItem: updated, Movement: movement}, nil
}

// refreshDetails copies unit and any non-zero prices from the confirmed update
func refreshDetails(item *models.InventoryItem, unit string, pending *models.PendingStockUpdate) {
	item.Unit = unit
	if pending.BuyingPricePerUnit > 0 {
		item.BuyingPrice = money(pending.BuyingPricePerUnit)
	}
	if pending.SellingPrice > 0 {
		item.SellingPrice = money(pending.SellingPrice)
	}
}

func validatePending(pending *models.PendingTransaction) error {
	if pending == nil {
		return fmt.Errorf("%w: transaction data is required", ErrInvalidPayload)
	}
	if err := utils.ValidateStruct(pending); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if pending.TotalAmount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidPayload)
	}
	return nil
}

// occurredAt reads a YYYY-MM-DD or RFC3339 date, falling back to now
func occurredAt(date *string, now time.Time) time.Time {
	if date == nil {
		return now
	}
	value := strings.TrimSpace(*date)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, now.Location()); err == nil {
		return t
	}
	return now
}

// Lock keys mirror the duplicate lookups, so two confirmations that could
// absorb each other always wait on the same lock.
func transactionLockKey(userID uuid.UUID, txType extraction.TransactionType, amount decimal.Decimal) string {
	return strings.Join([]string{"tx", userID.String(), string(txType), amount.String()}, "|")
}

// stockLockKey leaves out the item name because the stock lookup matches
// on user and requested quantity alone.
func stockLockKey(userID uuid.UUID, quantity float64) string {
	return fmt.Sprintf("stock|%s|%g", userID, quantity)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
