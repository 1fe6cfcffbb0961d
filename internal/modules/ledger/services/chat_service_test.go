package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assistantPrefix  = "You are Soko Assistant"
	extractionPrefix = "You are a transaction extractor"
	classifierPrefix = "Classify the shop owner's message"
	stockPrefix      = "You extract inventory updates"
)

type staticUsers struct{}

func (staticUsers) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return &auth.User{Name: "Wanjiku", BusinessName: "Wanjiku Groceries"}, nil
}

func newChatFixture(invoker extraction.Invoker) (*ChatService, *memoryStore) {
	store := newMemoryStore()
	repos := store.Set()
	return NewChatService(invoker, repos, NewReportService(repos), staticUsers{}, "https://api.test/"), store
}

func TestProcessMessage_Offline(t *testing.T) {
	svc, store := newChatFixture(nil)
	userID := uuid.New()

	resp, err := svc.ProcessMessage(context.Background(), userID, &models.ChatRequest{Text: "Nimeuza nyanya 10 kwa shilingi 200"})
	require.NoError(t, err)

	assert.Equal(t, FallbackReply, resp.Reply)
	assert.NotEmpty(t, resp.ConversationID)
	require.NotNil(t, resp.PendingTransaction)
	assert.Equal(t, extraction.TypeSale, resp.PendingTransaction.TransactionType)
	assert.Equal(t, 200.0, resp.PendingTransaction.TotalAmount)
	assert.Equal(t, resp.ConversationID, resp.PendingTransaction.ConversationID)
	assert.Equal(t, "Nimeuza nyanya 10 kwa shilingi 200", resp.PendingTransaction.UserMessage)
	assert.Nil(t, resp.PendingStock)

	require.Len(t, store.Messages, 2)
	assert.Equal(t, models.ChatRoleUser, store.Messages[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, store.Messages[1].Role)

	var metadata models.AssistantMetadata
	require.NoError(t, json.Unmarshal(store.Messages[1].Metadata, &metadata))
	assert.Equal(t, "offline", metadata.Model)
	assert.Equal(t, 0.7, metadata.Confidence)

	assert.Empty(t, store.Usage)
}

func TestProcessMessage_WithModel(t *testing.T) {
	invoker := &scriptedInvoker{replies: map[string]string{
		assistantPrefix:  "Hongera! Sale recorded once you confirm.",
		extractionPrefix: `{"transactionType":"sale","items":[{"name":"tomatoes","quantity":10,"unit":"pieces","unitPrice":5}],"totalAmount":50,"customerName":null,"date":null,"notes":null,"paymentStatus":"paid","confidence":0.95}`,
		classifierPrefix: "transaction",
	}}
	svc, store := newChatFixture(invoker)
	userID := uuid.New()

	resp, err := svc.ProcessMessage(context.Background(), userID, &models.ChatRequest{
		Text:           "I sold 10 tomatoes for 5 shillings each",
		ConversationID: "conv-42",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hongera! Sale recorded once you confirm.", resp.Reply)
	assert.Equal(t, "conv-42", resp.ConversationID)
	require.NotNil(t, resp.PendingTransaction)
	assert.Equal(t, 50.0, resp.PendingTransaction.TotalAmount)
	assert.Nil(t, resp.PendingStock)

	require.Len(t, store.Usage, 1)
	assert.True(t, store.Usage[0].Success)
	assert.Equal(t, 42, store.Usage[0].TokensUsed)
	assert.Equal(t, "test-model", store.Usage[0].Model)
	assert.Equal(t, "chat", store.Usage[0].MessageType)
}

func TestProcessMessage_StockUpdate(t *testing.T) {
	invoker := &scriptedInvoker{replies: map[string]string{
		assistantPrefix:  "Sawa, confirm to add the onions.",
		extractionPrefix: `{"transactionType":null,"items":[],"totalAmount":0,"confidence":0}`,
		classifierPrefix: "stock",
		stockPrefix:      `{"actionType":"add_stock","itemName":"onions","quantity":20,"unit":"kg","buyingPricePerUnit":80,"sellingPrice":0,"supplierName":"Mama Njeri"}`,
	}}
	svc, _ := newChatFixture(invoker)

	resp, err := svc.ProcessMessage(context.Background(), uuid.New(), &models.ChatRequest{Text: "Add 20 kg of onions from Mama Njeri at 80 each"})
	require.NoError(t, err)

	require.NotNil(t, resp.PendingStock)
	assert.Equal(t, extraction.StockAdd, resp.PendingStock.ActionType)
	assert.Equal(t, "onions", resp.PendingStock.ItemName)
	assert.Equal(t, 20.0, resp.PendingStock.Quantity)
	assert.Equal(t, "kg", resp.PendingStock.Unit)
	assert.Equal(t, 80.0, resp.PendingStock.BuyingPricePerUnit)
	require.NotNil(t, resp.PendingStock.SupplierName)
	assert.Equal(t, "Mama Njeri", *resp.PendingStock.SupplierName)
}

func TestProcessMessage_ChitChat(t *testing.T) {
	invoker := &scriptedInvoker{replies: map[string]string{
		assistantPrefix:  "I'm fine, thanks!",
		extractionPrefix: `{"transactionType":null,"items":[],"totalAmount":0,"customerName":null,"date":null,"notes":null,"paymentStatus":null,"confidence":0}`,
		classifierPrefix: "none",
	}}
	svc, _ := newChatFixture(invoker)

	resp, err := svc.ProcessMessage(context.Background(), uuid.New(), &models.ChatRequest{Text: "How are you?"})
	require.NoError(t, err)

	assert.Equal(t, "I'm fine, thanks!", resp.Reply)
	assert.Nil(t, resp.PendingTransaction)
	assert.Nil(t, resp.PendingStock)
}

func TestProcessMessage_ProviderDown(t *testing.T) {
	invoker := &scriptedInvoker{fail: true}
	svc, store := newChatFixture(invoker)

	resp, err := svc.ProcessMessage(context.Background(), uuid.New(), &models.ChatRequest{Text: "Nimeuza nyanya 10 kwa shilingi 200"})
	require.NoError(t, err)

	assert.Equal(t, FallbackReply, resp.Reply)
	require.NotNil(t, resp.PendingTransaction)
	assert.Equal(t, 200.0, resp.PendingTransaction.TotalAmount)

	require.Len(t, store.Usage, 1)
	assert.False(t, store.Usage[0].Success)
	require.NotNil(t, store.Usage[0].ErrorMessage)
	assert.Equal(t, "provider down", *store.Usage[0].ErrorMessage)
}

func TestProcessMessage_Report(t *testing.T) {
	invoker := &scriptedInvoker{}
	svc, store := newChatFixture(invoker)
	userID := uuid.New()

	sale := ledgerTx(extraction.TypeSale, 300, time.Now(), "Mama Njeri", soldItem("maize flour", 2, 300))
	sale.UserID = userID
	require.NoError(t, store.Set().Transactions.Create(context.Background(), &sale))

	resp, err := svc.ProcessMessage(context.Background(), userID, &models.ChatRequest{Text: "Generate report for today"})
	require.NoError(t, err)

	require.NotNil(t, resp.Report)
	assert.Equal(t, 300.0, resp.Report.TotalIncome)
	assert.Equal(t, "https://api.test/transactions/export?format=csv&period=today", resp.DownloadURL)
	assert.Contains(t, resp.Reply, "Total Income: KES 300")
	assert.Nil(t, resp.PendingTransaction)
	assert.Zero(t, invoker.calls)
	assert.Len(t, store.Messages, 2)
}

func TestProcessMessage_EmptyText(t *testing.T) {
	svc, store := newChatFixture(nil)

	_, err := svc.ProcessMessage(context.Background(), uuid.New(), &models.ChatRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Empty(t, store.Messages)
}

func TestProcessMessage_StoreFailure(t *testing.T) {
	svc, store := newChatFixture(nil)
	store.FailCreate = assert.AnError

	_, err := svc.ProcessMessage(context.Background(), uuid.New(), &models.ChatRequest{Text: "hello"})
	assert.ErrorIs(t, err, assert.AnError)
}
