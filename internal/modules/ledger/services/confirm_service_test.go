package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newConfirmFixture() (*ConfirmService, *memoryStore, *recordingAuditor) {
	store := newMemoryStore()
	auditor := &recordingAuditor{}
	return NewConfirmService(store.Set(), auditor, 0), store, auditor
}

func salePending() *models.PendingTransaction {
	return models.NewPendingTransaction(extraction.Candidate{
		TransactionType: extraction.TypeSale,
		Items: []extraction.Item{
			{Name: "Maize Flour", Quantity: 2, Unit: "kg", UnitPrice: 150, TotalPrice: 300},
		},
		TotalAmount:  300,
		CustomerName: strPtr(" Mama Njeri "),
		Confidence:   0.9,
	}, "sold 2kg maize flour to mama njeri for 300", "conv-1")
}

func TestConfirmTransaction_StatusFollowsType(t *testing.T) {
	tests := []struct {
		name   string
		txType extraction.TransactionType
		want   models.TransactionStatus
	}{
		{"sale is paid", extraction.TypeSale, models.StatusPaid},
		{"purchase is paid", extraction.TypePurchase, models.StatusPaid},
		{"expense is paid", extraction.TypeExpense, models.StatusPaid},
		{"debt is unpaid", extraction.TypeDebt, models.StatusUnpaid},
		{"loan is unpaid", extraction.TypeLoan, models.StatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newConfirmFixture()
			pending := salePending()
			pending.TransactionType = tt.txType
			pending.PaymentStatus = strPtr("paid")

			result, err := svc.ConfirmTransaction(context.Background(), uuid.New(), pending, models.SourceChat)
			require.NoError(t, err)
			assert.False(t, result.Duplicate)
			assert.Equal(t, tt.want, result.Transaction.Status)
			assert.Equal(t, models.SourceChat, result.Transaction.Source)
		})
	}
}

func TestConfirmTransaction_LinksCustomerAndItems(t *testing.T) {
	svc, store, auditor := newConfirmFixture()
	userID := uuid.New()

	result, err := svc.ConfirmTransaction(context.Background(), userID, salePending(), models.SourceChat)
	require.NoError(t, err)

	tx := result.Transaction
	require.NotNil(t, tx.CustomerID)
	assert.Equal(t, "Mama Njeri", *tx.CustomerName)
	require.Len(t, tx.Items, 1)
	require.NotNil(t, tx.Items[0].ItemID)
	assert.Equal(t, "300", tx.Amount.String())
	assert.Equal(t, "conv-1", *tx.ConversationID)
	assert.NotEmpty(t, tx.ExtractedData)

	assert.Len(t, store.Customers, 1)
	assert.Len(t, store.Items, 1)
	assert.Equal(t, "maize flour", store.Items[0].NormalizedName)
	assert.Equal(t, []string{audit.ActionConfirm}, auditor.actions())
}

func TestConfirmTransaction_PlaceholderItemStaysUnlinked(t *testing.T) {
	svc, store, _ := newConfirmFixture()
	pending := models.NewPendingTransaction(extraction.Candidate{
		TransactionType: extraction.TypeExpense,
		Items:           []extraction.Item{{Name: extraction.PlaceholderItemName, Quantity: 1, UnitPrice: 500, TotalPrice: 500}},
		TotalAmount:     500,
		Confidence:      extraction.PlaceholderConfidence,
	}, "paid 500", "")

	result, err := svc.ConfirmTransaction(context.Background(), uuid.New(), pending, models.SourceChat)
	require.NoError(t, err)
	require.Len(t, result.Transaction.Items, 1)
	assert.Nil(t, result.Transaction.Items[0].ItemID)
	assert.Nil(t, result.Transaction.ConversationID)
	assert.Empty(t, store.Items)
}

func TestConfirmTransaction_InvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		pending *models.PendingTransaction
	}{
		{"nil", nil},
		{"zero amount", models.NewPendingTransaction(extraction.Candidate{TransactionType: extraction.TypeSale}, "", "")},
		{"unknown type", models.NewPendingTransaction(extraction.Candidate{TransactionType: "refund", TotalAmount: 10}, "", "")},
		{"missing type", models.NewPendingTransaction(extraction.Candidate{TotalAmount: 10}, "", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newConfirmFixture()
			_, err := svc.ConfirmTransaction(context.Background(), uuid.New(), tt.pending, models.SourceChat)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.Empty(t, store.Transactions)
		})
	}
}

func TestConfirmTransaction_DuplicateWithinWindow(t *testing.T) {
	svc, store, auditor := newConfirmFixture()
	userID := uuid.New()

	first, err := svc.ConfirmTransaction(context.Background(), userID, salePending(), models.SourceChat)
	require.NoError(t, err)
	second, err := svc.ConfirmTransaction(context.Background(), userID, salePending(), models.SourceChat)
	require.NoError(t, err)

	assert.True(t, second.Success)
	assert.True(t, second.Duplicate)
	assert.Equal(t, "Transaction already recorded.", second.Message)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	assert.Len(t, store.Transactions, 1)
	assert.Equal(t, []string{audit.ActionConfirm, audit.ActionConfirmDuplicate}, auditor.actions())

	// another user is not a duplicate
	other, err := svc.ConfirmTransaction(context.Background(), uuid.New(), salePending(), models.SourceChat)
	require.NoError(t, err)
	assert.False(t, other.Duplicate)
	assert.Len(t, store.Transactions, 2)
}

func TestConfirmTransaction_DuplicateKey(t *testing.T) {
	tests := []struct {
		name       string
		change     func(t *testing.T, svc *ConfirmService, store *memoryStore, first *models.Transaction, pending *models.PendingTransaction)
		wantStatus models.TransactionStatus
	}{
		{
			name: "after the window",
			change: func(_ *testing.T, svc *ConfirmService, _ *memoryStore, _ *models.Transaction, _ *models.PendingTransaction) {
				svc.now = func() time.Time { return time.Now().Add(31 * time.Second) }
			},
			wantStatus: models.StatusPaid,
		},
		{
			name: "different amount",
			change: func(_ *testing.T, _ *ConfirmService, _ *memoryStore, _ *models.Transaction, pending *models.PendingTransaction) {
				pending.TotalAmount = 301
			},
			wantStatus: models.StatusPaid,
		},
		{
			name: "different type",
			change: func(_ *testing.T, _ *ConfirmService, _ *memoryStore, _ *models.Transaction, pending *models.PendingTransaction) {
				pending.TransactionType = extraction.TypeDebt
			},
			wantStatus: models.StatusUnpaid,
		},
		{
			name: "first one was deleted",
			change: func(t *testing.T, _ *ConfirmService, store *memoryStore, first *models.Transaction, _ *models.PendingTransaction) {
				require.NoError(t, store.Set().Transactions.SoftDelete(context.Background(), first.UserID, first.ID))
			},
			wantStatus: models.StatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newConfirmFixture()
			userID := uuid.New()

			first, err := svc.ConfirmTransaction(context.Background(), userID, salePending(), models.SourceChat)
			require.NoError(t, err)

			pending := salePending()
			tt.change(t, svc, store, first.Transaction, pending)

			second, err := svc.ConfirmTransaction(context.Background(), userID, pending, models.SourceChat)
			require.NoError(t, err)
			assert.False(t, second.Duplicate)
			assert.NotEqual(t, first.Transaction.ID, second.Transaction.ID)
			assert.Equal(t, tt.wantStatus, second.Transaction.Status)
			assert.Len(t, store.Transactions, 2)
		})
	}
}

func TestConfirmTransaction_ConcurrentConfirmationsSaveOnce(t *testing.T) {
	svc, store, _ := newConfirmFixture()
	userID := uuid.New()

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*models.ConfirmResult, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.ConfirmTransaction(context.Background(), userID, salePending(), models.SourceChat)
			assert.NoError(t, err)
			results[i] = result
		}()
	}
	wg.Wait()

	fresh := 0
	for _, r := range results {
		require.NotNil(t, r)
		if !r.Duplicate {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
	assert.Len(t, store.Transactions, 1)
	assert.Zero(t, svc.locks.size())
}

func TestConfirmTransaction_DrawsDownInventory(t *testing.T) {
	svc, store, _ := newConfirmFixture()
	userID := uuid.New()
	ctx := context.Background()

	_, err := store.Set().Inventory.FindOrCreate(ctx, &models.InventoryItem{
		UserID: userID, Name: "maize flour", NormalizedName: "maize flour", CurrentQuantity: 10, Unit: "kg",
	})
	require.NoError(t, err)

	result, err := svc.ConfirmTransaction(ctx, userID, salePending(), models.SourceChat)
	require.NoError(t, err)

	stock := store.InventoryByName("maize flour")
	require.NotNil(t, stock)
	assert.Equal(t, 8.0, stock.CurrentQuantity)

	require.Len(t, store.Movements, 1)
	movement := store.Movements[0]
	assert.Equal(t, models.MovementSale, movement.Type)
	assert.Equal(t, -2.0, movement.Quantity)
	assert.Equal(t, 10.0, movement.PreviousQuantity)
	assert.Equal(t, result.Transaction.ID, *movement.TransactionID)
}

func TestInventoryApplier_SkipsWhatItCannotApply(t *testing.T) {
	store := newMemoryStore()
	repos := store.Set()
	ctx := context.Background()
	userID := uuid.New()

	_, err := repos.Inventory.FindOrCreate(ctx, &models.InventoryItem{
		UserID: userID, Name: "sugar", NormalizedName: "sugar", CurrentQuantity: 1,
	})
	require.NoError(t, err)

	applier := NewInventoryApplier(repos.Inventory)

	tests := []struct {
		name string
		tx   *models.Transaction
	}{
		{"nil transaction", nil},
		{"not a sale", &models.Transaction{UserID: userID, Type: extraction.TypePurchase, Items: []models.TransactionItem{{Name: "sugar", Quantity: 1}}}},
		{"insufficient stock", &models.Transaction{UserID: userID, Type: extraction.TypeSale, Items: []models.TransactionItem{{Name: "sugar", Quantity: 5}}}},
		{"unknown item", &models.Transaction{UserID: userID, Type: extraction.TypeSale, Items: []models.TransactionItem{{Name: "bread", Quantity: 1}}}},
		{"zero quantity", &models.Transaction{UserID: userID, Type: extraction.TypeSale, Items: []models.TransactionItem{{Name: "sugar"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, applier.ApplyInventoryEffects(ctx, tt.tx))
		})
	}

	assert.Equal(t, 1.0, store.InventoryByName("sugar").CurrentQuantity)
	assert.Empty(t, store.Movements)
}

func TestConfirmStock_Actions(t *testing.T) {
	svc, store, auditor := newConfirmFixture()
	userID := uuid.New()
	ctx := context.Background()

	added, err := svc.ConfirmStock(ctx, userID, &models.PendingStockUpdate{
		ActionType:         extraction.StockAdd,
		ItemName:           "  Sugar ",
		Quantity:           10,
		Unit:               "kg",
		BuyingPricePerUnit: 120,
		SupplierName:       strPtr("Bidco"),
	})
	require.NoError(t, err)
	assert.False(t, added.Duplicate)
	assert.Equal(t, "sugar", added.InventoryItem.Name)
	assert.Equal(t, 10.0, added.InventoryItem.CurrentQuantity)
	assert.Equal(t, "120", added.InventoryItem.BuyingPrice.String())
	assert.NotNil(t, added.InventoryItem.LastRestocked)
	assert.Equal(t, models.MovementRestock, added.Movement.Type)
	assert.Equal(t, "Stock added via assistant", added.Movement.Reason)

	removed, err := svc.ConfirmStock(ctx, userID, &models.PendingStockUpdate{
		ActionType: extraction.StockRemove,
		ItemName:   "sugar",
		Quantity:   15,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, removed.InventoryItem.CurrentQuantity)
	assert.Equal(t, models.MovementSpoilage, removed.Movement.Type)
	assert.Equal(t, -10.0, removed.Movement.Quantity)
	assert.Equal(t, 15.0, *removed.Movement.RequestedQuantity)

	updated, err := svc.ConfirmStock(ctx, userID, &models.PendingStockUpdate{
		ActionType:   extraction.StockUpdate,
		ItemName:     "SUGAR",
		Quantity:     7,
		Unit:         "kg",
		SellingPrice: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, updated.InventoryItem.CurrentQuantity)
	assert.Equal(t, "120", updated.InventoryItem.BuyingPrice.String())
	assert.Equal(t, "150", updated.InventoryItem.SellingPrice.String())
	assert.Equal(t, models.MovementAdjustment, updated.Movement.Type)

	assert.Len(t, store.Inventory, 1)
	assert.Len(t, store.Movements, 3)
	assert.Equal(t, []string{audit.ActionConfirm, audit.ActionConfirm, audit.ActionConfirm}, auditor.actions())
}

func TestConfirmStock_DuplicateWithinWindow(t *testing.T) {
	svc, store, _ := newConfirmFixture()
	userID := uuid.New()
	ctx := context.Background()
	pending := &models.PendingStockUpdate{ActionType: extraction.StockAdd, ItemName: "rice", Quantity: 4}

	_, err := svc.ConfirmStock(ctx, userID, pending)
	require.NoError(t, err)
	again, err := svc.ConfirmStock(ctx, userID, pending)
	require.NoError(t, err)

	assert.True(t, again.Duplicate)
	assert.Equal(t, "Stock update already recorded.", again.Message)
	assert.Equal(t, 4.0, store.InventoryByName("rice").CurrentQuantity)
	assert.Len(t, store.Movements, 1)
}

func TestConfirmStock_ConcurrentSameQuantityAppliesOnce(t *testing.T) {
	svc, store, _ := newConfirmFixture()
	userID := uuid.New()

	// the duplicate lookup ignores the item name, so neither may the lock
	assert.Equal(t, stockLockKey(userID, 4), stockLockKey(userID, 4.0))
	assert.NotEqual(t, stockLockKey(userID, 4), stockLockKey(userID, 5))
	assert.NotEqual(t, stockLockKey(userID, 4), stockLockKey(uuid.New(), 4))

	names := []string{"rice", "Rice ", "beans", "sugar", "maize", "salt"}
	var wg sync.WaitGroup
	results := make([]*models.StockResult, len(names))
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.ConfirmStock(context.Background(), userID, &models.PendingStockUpdate{
				ActionType: extraction.StockAdd, ItemName: name, Quantity: 4,
			})
			assert.NoError(t, err)
			results[i] = result
		}()
	}
	wg.Wait()

	applied := 0
	for _, r := range results {
		require.NotNil(t, r)
		if !r.Duplicate {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Len(t, store.Movements, 1)
	assert.Zero(t, svc.locks.size())
}

func TestConfirmStock_InvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		pending *models.PendingStockUpdate
	}{
		{"nil", nil},
		{"unknown action", &models.PendingStockUpdate{ActionType: "sell_stock", ItemName: "rice", Quantity: 1}},
		{"missing name", &models.PendingStockUpdate{ActionType: extraction.StockAdd, Quantity: 1}},
		{"zero quantity", &models.PendingStockUpdate{ActionType: extraction.StockAdd, ItemName: "rice"}},
		{"negative price", &models.PendingStockUpdate{ActionType: extraction.StockAdd, ItemName: "rice", Quantity: 1, BuyingPricePerUnit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newConfirmFixture()
			_, err := svc.ConfirmStock(context.Background(), uuid.New(), tt.pending)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			assert.Empty(t, store.Inventory)
		})
	}
}

func TestOccurredAt(t *testing.T) {
	now := mustTime(t, "2026-03-18T10:00:00Z")

	tests := []struct {
		name string
		date *string
		want string
	}{
		{"nil uses now", nil, "2026-03-18T10:00:00Z"},
		{"rfc3339", strPtr("2026-03-01T08:30:00Z"), "2026-03-01T08:30:00Z"},
		{"plain date", strPtr("2026-03-02"), "2026-03-02T00:00:00Z"},
		{"garbage uses now", strPtr("yesterday"), "2026-03-18T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, mustTime(t, tt.want), occurredAt(tt.date, now))
		})
	}
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	locks := newKeyedMutex()
	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	assert.Equal(t, 2, locks.size())

	unlockA()
	unlockB()
	assert.Zero(t, locks.size())

	var counter int
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("shared")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.size())
}
