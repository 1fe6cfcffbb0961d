package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps every ledger table in process memory. Tests and offline runs use it
// in place of Postgres; rows are exposed for inspection.
type Store struct {
	mu           sync.Mutex
	Transactions []*models.Transaction
	Customers    []*models.Customer
	Items        []*models.CatalogItem
	Inventory    []*models.InventoryItem
	Movements    []*models.StockMovement
	Messages     []*models.ChatMessage
	Usage        []*models.AIUsage

	// FailCreate, when set, is returned by every transaction and chat insert
	FailCreate error
}

func NewStore() *Store {
	return &Store{}
}

// Set exposes the store through the repository interfaces
func (m *Store) Set() *repositories.Set {
	return &repositories.Set{
		Transactions: &transactionTable{m},
		Customers:    &customerTable{m},
		Items:        &itemTable{m},
		Inventory:    &inventoryTable{m},
		Movements:    &movementTable{m},
		Chat:         &chatTable{m},
		Usage:        &usageTable{m},
	}
}

type transactionTable struct{ m *Store }

func (t *transactionTable) Create(ctx context.Context, tx *models.Transaction) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.FailCreate != nil {
		return t.m.FailCreate
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	t.m.Transactions = append(t.m.Transactions, tx)
	return nil
}

func (t *transactionTable) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, tx := range t.m.Transactions {
		if tx.ID == id && tx.UserID == userID && !tx.DeletedAt.Valid {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *transactionTable) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.Transaction
	for _, tx := range t.m.Transactions {
		if tx.UserID != userID || tx.DeletedAt.Valid {
			continue
		}
		if filter.Type != "" && string(tx.Type) != filter.Type {
			continue
		}
		if filter.Status != "" && string(tx.Status) != filter.Status {
			continue
		}
		out = append(out, *tx)
	}
	total := int64(len(out))
	start := min(filter.Offset(), len(out))
	end := min(start+filter.Limit, len(out))
	return out[start:end], total, nil
}

func (t *transactionTable) Update(ctx context.Context, tx *models.Transaction) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i, existing := range t.m.Transactions {
		if existing.ID == tx.ID {
			copied := *tx
			t.m.Transactions[i] = &copied
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (t *transactionTable) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, tx := range t.m.Transactions {
		if tx.ID == id && tx.UserID == userID && !tx.DeletedAt.Valid {
			tx.DeletedAt.Time = time.Now()
			tx.DeletedAt.Valid = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (t *transactionTable) FindRecentDuplicate(ctx context.Context, userID uuid.UUID, txType string, amount decimal.Decimal, since time.Time) (*models.Transaction, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i := len(t.m.Transactions) - 1; i >= 0; i-- {
		tx := t.m.Transactions[i]
		if tx.UserID == userID && !tx.DeletedAt.Valid && string(tx.Type) == txType && tx.Amount.Equal(amount) && !tx.CreatedAt.Before(since) {
			return tx, nil
		}
	}
	return nil, nil
}

func (t *transactionTable) ListUnpaidLiabilities(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.Transaction
	for _, tx := range t.m.Transactions {
		if tx.UserID == userID && !tx.DeletedAt.Valid && tx.Status == models.StatusUnpaid && tx.Type.IsLiability() {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (t *transactionTable) ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.Transaction
	for _, tx := range t.m.Transactions {
		if tx.UserID == userID && !tx.DeletedAt.Valid && !tx.OccurredAt.Before(from) && !tx.OccurredAt.After(to) {
			out = append(out, *tx)
		}
	}
	return out, nil
}

type customerTable struct{ m *Store }

func (t *customerTable) FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*models.Customer, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, c := range t.m.Customers {
		if c.UserID == userID && c.NormalizedName == extraction.NormalizeName(name) {
			return c, nil
		}
	}
	c := &models.Customer{ID: uuid.New(), UserID: userID, Name: name, NormalizedName: extraction.NormalizeName(name)}
	t.m.Customers = append(t.m.Customers, c)
	return c, nil
}

type itemTable struct{ m *Store }

func (t *itemTable) FindOrCreate(ctx context.Context, userID uuid.UUID, name, unit string, price float64) (*models.CatalogItem, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, it := range t.m.Items {
		if it.UserID == userID && it.NormalizedName == extraction.NormalizeName(name) {
			return it, nil
		}
	}
	it := &models.CatalogItem{ID: uuid.New(), UserID: userID, Name: name, NormalizedName: extraction.NormalizeName(name), Unit: unit, DefaultPrice: decimal.NewFromFloat(price)}
	t.m.Items = append(t.m.Items, it)
	return it, nil
}

type inventoryTable struct{ m *Store }

func (t *inventoryTable) FindByNormalizedName(ctx context.Context, userID uuid.UUID, normalized string) (*models.InventoryItem, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, it := range t.m.Inventory {
		if it.UserID == userID && it.NormalizedName == normalized {
			copied := *it
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *inventoryTable) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.InventoryItem, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, it := range t.m.Inventory {
		if it.ID == id && it.UserID == userID {
			copied := *it
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (t *inventoryTable) List(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.InventoryItem
	for _, it := range t.m.Inventory {
		if it.UserID == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (t *inventoryTable) ListLowStock(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	all, _ := t.List(ctx, userID)
	return slices.DeleteFunc(all, func(it models.InventoryItem) bool { return !it.IsLowStock() }), nil
}

func (t *inventoryTable) FindOrCreate(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if existing, err := t.FindByNormalizedName(ctx, item.UserID, item.NormalizedName); err == nil {
		return existing, nil
	}
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	copied := *item
	t.m.Inventory = append(t.m.Inventory, &copied)
	return item, nil
}

func (t *inventoryTable) ApplyMovement(ctx context.Context, inventoryID uuid.UUID, movement *models.StockMovement, next repositories.NextQuantity) (*models.InventoryItem, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, stored := range t.m.Inventory {
		if stored.ID != inventoryID {
			continue
		}
		item := *stored
		previous := item.CurrentQuantity
		quantity, err := next(&item)
		if err != nil {
			return nil, err
		}
		item.CurrentQuantity = quantity
		*stored = item

		movement.ID = uuid.New()
		movement.UserID = item.UserID
		movement.InventoryID = item.ID
		movement.PreviousQuantity = previous
		movement.NewQuantity = quantity
		movement.Quantity = quantity - previous
		movement.CreatedAt = time.Now()
		copied := *movement
		t.m.Movements = append(t.m.Movements, &copied)
		return &item, nil
	}
	return nil, repositories.ErrNotFound
}

// InventoryByName returns a copy of the stock row with the normalized name, or nil
func (m *Store) InventoryByName(name string) *models.InventoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.Inventory {
		if it.NormalizedName == name {
			copied := *it
			return &copied
		}
	}
	return nil
}

type movementTable struct{ m *Store }

func (t *movementTable) FindRecentAssistantMovement(ctx context.Context, userID uuid.UUID, requested float64, since time.Time) (*models.StockMovement, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, mv := range t.m.Movements {
		if mv.UserID == userID && mv.RequestedQuantity != nil && *mv.RequestedQuantity == requested && !mv.CreatedAt.Before(since) {
			return mv, nil
		}
	}
	return nil, nil
}

func (t *movementTable) ListByInventory(ctx context.Context, userID, inventoryID uuid.UUID, limit int) ([]models.StockMovement, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.StockMovement
	for _, mv := range t.m.Movements {
		if mv.UserID == userID && mv.InventoryID == inventoryID {
			out = append(out, *mv)
		}
	}
	return out, nil
}

type chatTable struct{ m *Store }

func (t *chatTable) Create(ctx context.Context, msg *models.ChatMessage) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.FailCreate != nil {
		return t.m.FailCreate
	}
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	t.m.Messages = append(t.m.Messages, msg)
	return nil
}

func (t *chatTable) History(ctx context.Context, userID uuid.UUID, conversationID string, limit int) ([]models.ChatMessage, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range t.m.Messages {
		if msg.UserID == userID && msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (t *chatTable) Conversations(ctx context.Context, userID uuid.UUID, limit int) ([]models.ConversationSummary, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	byID := map[string]*models.ConversationSummary{}
	for _, msg := range t.m.Messages {
		if msg.UserID != userID {
			continue
		}
		summary, ok := byID[msg.ConversationID]
		if !ok {
			summary = &models.ConversationSummary{ConversationID: msg.ConversationID}
			byID[msg.ConversationID] = summary
		}
		summary.MessageCount++
		summary.LastMessage = msg.Content
		summary.LastRole = msg.Role
		summary.UpdatedAt = msg.CreatedAt
	}

	out := make([]models.ConversationSummary, 0, len(byID))
	for _, summary := range byID {
		out = append(out, *summary)
	}
	slices.SortFunc(out, func(a, b models.ConversationSummary) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type usageTable struct{ m *Store }

func (t *usageTable) Create(ctx context.Context, usage *models.AIUsage) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now()
	}
	t.m.Usage = append(t.m.Usage, usage)
	return nil
}

func (t *usageTable) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	before := len(t.m.Usage)
	t.m.Usage = slices.DeleteFunc(t.m.Usage, func(u *models.AIUsage) bool { return u.CreatedAt.Before(cutoff) })
	return int64(before - len(t.m.Usage)), nil
}

func (t *usageTable) Summary(ctx context.Context, period *analytics.DateRange) ([]models.AIUsageStat, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	byModel := map[string]*models.AIUsageStat{}
	var order []string
	for _, u := range t.m.Usage {
		if period != nil && !period.Contains(u.CreatedAt) {
			continue
		}
		stat, ok := byModel[u.Model]
		if !ok {
			stat = &models.AIUsageStat{Model: u.Model}
			byModel[u.Model] = stat
			order = append(order, u.Model)
		}
		stat.Requests++
		if !u.Success {
			stat.Failures++
		}
		stat.TokensUsed += int64(u.TokensUsed)
		stat.AvgResponseTimeMs += float64(u.ResponseTimeMs)
	}

	out := make([]models.AIUsageStat, 0, len(order))
	for _, model := range order {
		stat := byModel[model]
		stat.AvgResponseTimeMs /= float64(stat.Requests)
		out = append(out, *stat)
	}
	return out, nil
}

