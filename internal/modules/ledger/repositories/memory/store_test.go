package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMovement(t *testing.T) {
	store := NewStore()
	repos := store.Set()
	ctx := context.Background()
	userID := uuid.New()

	item, err := repos.Inventory.FindOrCreate(ctx, &models.InventoryItem{UserID: userID, Name: "rice", NormalizedName: "rice", CurrentQuantity: 3})
	require.NoError(t, err)

	again, err := repos.Inventory.FindOrCreate(ctx, &models.InventoryItem{UserID: userID, Name: "rice", NormalizedName: "rice"})
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)

	movement := &models.StockMovement{Type: models.MovementRestock}
	updated, err := repos.Inventory.ApplyMovement(ctx, item.ID, movement, func(i *models.InventoryItem) (float64, error) {
		return i.CurrentQuantity + 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.CurrentQuantity)
	assert.Equal(t, 2.0, movement.Quantity)

	boom := errors.New("boom")
	_, err = repos.Inventory.ApplyMovement(ctx, item.ID, &models.StockMovement{}, func(*models.InventoryItem) (float64, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5.0, store.InventoryByName("rice").CurrentQuantity)
	assert.Len(t, store.Movements, 1)

	_, err = repos.Inventory.ApplyMovement(ctx, uuid.New(), &models.StockMovement{}, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestConversationsAndUsage(t *testing.T) {
	store := NewStore()
	repos := store.Set()
	ctx := context.Background()
	userID := uuid.New()

	for _, msg := range []*models.ChatMessage{
		{UserID: userID, ConversationID: "a", Role: models.ChatRoleUser, Content: "hi"},
		{UserID: userID, ConversationID: "a", Role: models.ChatRoleAssistant, Content: "hello"},
		{UserID: userID, ConversationID: "b", Role: models.ChatRoleUser, Content: "sold rice"},
	} {
		require.NoError(t, repos.Chat.Create(ctx, msg))
	}

	conversations, err := repos.Chat.Conversations(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	byID := map[string]models.ConversationSummary{}
	for _, c := range conversations {
		byID[c.ConversationID] = c
	}
	assert.EqualValues(t, 2, byID["a"].MessageCount)
	assert.Equal(t, "hello", byID["a"].LastMessage)

	require.NoError(t, repos.Usage.Create(ctx, &models.AIUsage{Model: "m1", Success: true, TokensUsed: 10, ResponseTimeMs: 100}))
	require.NoError(t, repos.Usage.Create(ctx, &models.AIUsage{Model: "m1", Success: false, ResponseTimeMs: 300}))

	stats, err := repos.Usage.Summary(ctx, analytics.DateRangeAt(analytics.PeriodToday, time.Now()))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, models.AIUsageStat{Model: "m1", Requests: 2, Failures: 1, TokensUsed: 10, AvgResponseTimeMs: 200}, stats[0])
}
