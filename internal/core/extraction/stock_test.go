package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStockFallback(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantAction   StockAction
		wantItem     string
		wantQty      float64
		wantUnit     string
		wantBuying   float64
		wantSupplier string
	}{
		{
			name:         "add with supplier",
			message:      "Add 20 kg of onions from Mama Njeri",
			wantAction:   StockAdd,
			wantItem:     "onions",
			wantQty:      20,
			wantUnit:     "kg",
			wantSupplier: "Mama Njeri",
		},
		{
			name:       "swahili spoilage",
			message:    "Nyanya 5 zimeharibika",
			wantAction: StockRemove,
			wantItem:   "tomatoes",
			wantQty:    5,
			wantUnit:   "pieces",
		},
		{
			name:       "set quantity",
			message:    "Cabbage stock is now 12",
			wantAction: StockUpdate,
			wantItem:   "cabbage",
			wantQty:    12,
			wantUnit:   "pieces",
		},
		{
			name:       "unknown item taken from the word after the quantity",
			message:    "restock 10 sugar at ksh 120 each",
			wantAction: StockAdd,
			wantItem:   "sugar",
			wantQty:    10,
			wantUnit:   "pieces",
			wantBuying: 120,
		},
		{
			name:       "total price split over quantity",
			message:    "received stock 4 bags of beans for 2000 bob",
			wantAction: StockAdd,
			wantItem:   "beans",
			wantQty:    4,
			wantUnit:   "bags",
			wantBuying: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractStockFallback(tt.message)

			assert.Equal(t, tt.wantAction, got.ActionType)
			assert.Equal(t, tt.wantItem, got.ItemName)
			assert.InDelta(t, tt.wantQty, got.Quantity, 0.0001)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.InDelta(t, tt.wantBuying, got.BuyingPricePerUnit, 0.0001)
			if tt.wantSupplier == "" {
				assert.Nil(t, got.SupplierName)
			} else {
				require.NotNil(t, got.SupplierName)
				assert.Equal(t, tt.wantSupplier, *got.SupplierName)
			}
			assert.True(t, got.Complete())
		})
	}
}

func TestExtractStockFallback_Incomplete(t *testing.T) {
	got := ExtractStockFallback("what should I do today")
	assert.False(t, got.Complete())
}

func TestStockExtractor_Extract(t *testing.T) {
	t.Run("model reply is normalized", func(t *testing.T) {
		invoker := &scriptedInvoker{reply: `{"actionType":"add_stock","itemName":" Red Onions ","quantity":"20","unit":"Kilos","buyingPricePerUnit":80,"sellingPrice":null,"supplierName":""}`}

		got := NewStockExtractor(invoker).Extract(context.Background(), "Add 20 kilos of red onions at 80 each")

		assert.Equal(t, SourceLLM, got.Source)
		assert.Equal(t, StockAdd, got.ActionType)
		assert.Equal(t, "red onions", got.ItemName)
		assert.InDelta(t, 20, got.Quantity, 0.0001)
		assert.Equal(t, "kg", got.Unit)
		assert.InDelta(t, 80, got.BuyingPricePerUnit, 0.0001)
		assert.Zero(t, got.SellingPrice)
		assert.Nil(t, got.SupplierName)
	})

	t.Run("unknown action fails the schema and falls back", func(t *testing.T) {
		invoker := &scriptedInvoker{reply: `{"actionType":"sell_stock","itemName":"onions"}`}

		got := NewStockExtractor(invoker).Extract(context.Background(), "Onions 7 zimeharibika")

		assert.Equal(t, SourceFallback, got.Source)
		assert.Equal(t, StockRemove, got.ActionType)
		assert.Equal(t, "onions", got.ItemName)
	})

	t.Run("provider error falls back", func(t *testing.T) {
		invoker := &scriptedInvoker{err: errors.New("boom")}

		got := NewStockExtractor(invoker).Extract(context.Background(), "Cabbage stock is now 12")

		assert.Equal(t, SourceFallback, got.Source)
		assert.Equal(t, StockUpdate, got.ActionType)
	})
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		invoker *scriptedInvoker
		want    Label
	}{
		{"model label", "whatever", &scriptedInvoker{reply: "stock"}, LabelStock},
		{"model label with punctuation", "whatever", &scriptedInvoker{reply: " Transaction."}, LabelTransaction},
		{"unknown label uses keywords", "Add 20 kg of onions", &scriptedInvoker{reply: "banana"}, LabelStock},
		{"error uses keywords", "I sold 5 eggs", &scriptedInvoker{err: errors.New("down")}, LabelTransaction},
		{"error on chit-chat", "hello", &scriptedInvoker{err: errors.New("down")}, LabelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClassifier(tt.invoker).Classify(context.Background(), tt.message))
		})
	}
}

func TestKeyword_Matches(t *testing.T) {
	tests := []struct {
		kw   Keyword
		text string
		want bool
	}{
		{Keyword{Term: "owe", Lang: LangEnglish}, "i owe him", true},
		{Keyword{Term: "owe", Lang: LangEnglish}, "he owes me", true},
		{Keyword{Term: "owe", Lang: LangEnglish}, "flowers", false},
		{Keyword{Term: "owe", Lang: LangEnglish}, "sold 5 tomatoes to owen", false},
		{Keyword{Term: "owe", Lang: LangEnglish}, "she owed 200", true},
		{Keyword{Term: "add", Lang: LangEnglish}, "new address", false},
		{Keyword{Term: "restock", Lang: LangEnglish}, "restocked sugar", true},
		{Keyword{Term: "buy", Lang: LangEnglish}, "buying maize", true},
		{Keyword{Term: "paid", Lang: LangEnglish}, "unpaid, then paid", true},
		{Keyword{Term: "paid", Lang: LangEnglish}, "unpaid", false},
		{Keyword{Term: "uza", Lang: LangSwahili}, "nimeuza", true},
		{Keyword{Term: "nahitaji mkopo", Lang: LangSwahili}, "nahitaji mkopo sasa", true},
	}

	for _, tt := range tests {
		t.Run(tt.kw.Term+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kw.Matches(tt.text))
		})
	}
}
