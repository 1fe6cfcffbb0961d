package models

import (
	"encoding/json"
	"testing"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		txType extraction.TransactionType
		want   TransactionStatus
	}{
		{extraction.TypeSale, StatusPaid},
		{extraction.TypePurchase, StatusPaid},
		{extraction.TypeExpense, StatusPaid},
		{extraction.TypeDebt, StatusUnpaid},
		{extraction.TypeLoan, StatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.txType))
		})
	}
}

func TestNewPendingStockUpdate(t *testing.T) {
	supplier := "Bidco"

	t.Run("complete candidate", func(t *testing.T) {
		got := NewPendingStockUpdate(extraction.StockCandidate{
			ActionType:   extraction.StockAdd,
			ItemName:     " onions ",
			Quantity:     20,
			SupplierName: &supplier,
		})
		require.NotNil(t, got)
		assert.Equal(t, "onions", got.ItemName)
		assert.Equal(t, DefaultStockUnit, got.Unit)
		assert.Equal(t, &supplier, got.SupplierName)
	})

	t.Run("missing action", func(t *testing.T) {
		assert.Nil(t, NewPendingStockUpdate(extraction.StockCandidate{ItemName: "onions", Quantity: 1}))
	})

	t.Run("missing item", func(t *testing.T) {
		assert.Nil(t, NewPendingStockUpdate(extraction.StockCandidate{ActionType: extraction.StockRemove, Quantity: 1}))
	})
}

func TestPendingTransactionJSON(t *testing.T) {
	pending := NewPendingTransaction(extraction.Candidate{
		TransactionType: extraction.TypeSale,
		Items:           []extraction.Item{{Name: "tomatoes", Quantity: 10, Unit: "pieces", UnitPrice: 5, TotalPrice: 50}},
		TotalAmount:     50,
		Confidence:      0.95,
	}, "I sold 10 tomatoes", "conv-1")

	data, err := json.Marshal(pending)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "sale", flat["transactionType"])
	assert.Equal(t, 50.0, flat["totalAmount"])
	assert.Equal(t, "I sold 10 tomatoes", flat["userMessage"])
	assert.Equal(t, "conv-1", flat["conversationId"])
	assert.NotContains(t, flat, "Candidate")

	var back PendingTransaction
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *pending, back)
}

func TestTransactionFilterNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        TransactionFilter
		wantPage  int
		wantLimit int
		offset    int
	}{
		{"defaults", TransactionFilter{}, 1, DefaultPageLimit, 0},
		{"clamped", TransactionFilter{Page: 3, Limit: 500}, 3, MaxPageLimit, 200},
		{"kept", TransactionFilter{Page: 2, Limit: 10}, 2, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.in
			f.Normalize()
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantLimit, f.Limit)
			assert.Equal(t, tt.offset, f.Offset())
		})
	}
}

func TestInventoryItem(t *testing.T) {
	item := InventoryItem{CurrentQuantity: 4, LowStockThreshold: DefaultLowStockThreshold, BuyingPrice: decimal.NewFromFloat(12.5)}
	assert.True(t, item.IsLowStock())
	assert.Equal(t, "50", item.StockValue().String())

	item.CurrentQuantity = 6
	assert.False(t, item.IsLowStock())
}

func TestTransactionDescription(t *testing.T) {
	notes := "rent"
	tx := Transaction{Notes: &notes}
	assert.Equal(t, "rent", tx.Description())

	tx.Items = []TransactionItem{{Name: "sugar"}, {Name: "salt"}}
	assert.Equal(t, "sugar, salt", tx.Description())
}
