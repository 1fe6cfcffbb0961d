package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFallback_Pricing(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantType  string
		wantItems []Item
		wantTotal float64
	}{
		{
			name:     "per-unit marker makes the quoted number the unit price",
			message:  "I sold 10 tomatoes for 5 shillings each",
			wantType: "sale",
			wantItems: []Item{
				{Name: "tomatoes", Quantity: 10, Unit: "pieces", UnitPrice: 5, TotalPrice: 50},
			},
			wantTotal: 50,
		},
		{
			name:     "swahili without marker makes the quoted number the total",
			message:  "Nimeuza nyanya 10 kwa shilingi 200",
			wantType: "sale",
			wantItems: []Item{
				{Name: "tomatoes", Quantity: 10, Unit: "pieces", UnitPrice: 20, TotalPrice: 200},
			},
			wantTotal: 200,
		},
		{
			name:     "swahili kila moja marker",
			message:  "Nimeuza nyanya 10 kwa shilingi 5 kila moja",
			wantType: "sale",
			wantItems: []Item{
				{Name: "tomatoes", Quantity: 10, Unit: "pieces", UnitPrice: 5, TotalPrice: 50},
			},
			wantTotal: 50,
		},
		{
			name:     "thousands separator and unit word",
			message:  "bought 2 bags of maize at ksh 1,500 each",
			wantType: "purchase",
			wantItems: []Item{
				{Name: "item", Quantity: 2, Unit: "bags", UnitPrice: 1500, TotalPrice: 3000},
			},
			wantTotal: 3000,
		},
		{
			name:     "amounts paired with items in order",
			message:  "sold 2 kg tomatoes for 100 and 3 kg onions for 150",
			wantType: "sale",
			wantItems: []Item{
				{Name: "tomatoes", Quantity: 2, Unit: "kg", UnitPrice: 50, TotalPrice: 100},
				{Name: "onions", Quantity: 3, Unit: "kg", UnitPrice: 50, TotalPrice: 150},
			},
			wantTotal: 250,
		},
		{
			name:     "each quantity keeps the item named right after it",
			message:  "sold 2 kg onions and 3 kg tomatoes for 500",
			wantType: "sale",
			wantItems: []Item{
				{Name: "onions", Quantity: 2, Unit: "kg", UnitPrice: 100, TotalPrice: 200},
				{Name: "tomatoes", Quantity: 3, Unit: "kg", UnitPrice: 100, TotalPrice: 300},
			},
			wantTotal: 500,
		},
		{
			name:     "no quantity yields a generic item",
			message:  "spent 300 bob on transport",
			wantType: "expense",
			wantItems: []Item{
				{Name: "item", Quantity: 1, Unit: "unit", UnitPrice: 300, TotalPrice: 300},
			},
			wantTotal: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Normalize(ExtractFallback(tt.message))

			assert.Equal(t, TransactionType(tt.wantType), c.TransactionType)
			assert.Equal(t, tt.wantItems, c.Items)
			assert.InDelta(t, tt.wantTotal, c.TotalAmount, 0.001)
			assert.InDelta(t, 0.7, c.Confidence, 0.0001)
		})
	}
}

func TestExtractFallback_TypePrecedence(t *testing.T) {
	tests := []struct {
		message string
		want    TransactionType
	}{
		{"I sold 5 kg of sugar for 500 bob", TypeSale},
		{"I sold 5 tomatoes to Owen for 100", TypeSale},
		{"nilinunua unga 2 kg kwa 300", TypePurchase},
		{"gharama ya usafiri 200", TypeExpense},
		{"John anadai 400", TypeDebt},
		{"I got a loan and sold 5 kg of sugar for 500 bob", TypeLoan},
		{"deni la mkopo 1000", TypeLoan},
		{"there were 40 customers", TypeSale},
		{"How are you?", TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, detectTypeOf(ExtractFallback(tt.message)))
		})
	}
}

func detectTypeOf(raw RawCandidate) TransactionType {
	if raw.TransactionType == nil {
		return TypeNone
	}
	return TransactionType(*raw.TransactionType)
}

func TestExtractFallback_Total(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"How are you?",
		"{}[]!!",
		"1,2,3,4",
		"each per kila",
		"0 kg of nothing",
		"sold sold sold",
		"💰💰 nimeuza",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var raw RawCandidate
			require.NotPanics(t, func() { raw = ExtractFallback(in) })

			c := Normalize(raw)
			assert.GreaterOrEqual(t, c.TotalAmount, 0.0)
			assert.GreaterOrEqual(t, c.Confidence, 0.0)
			assert.LessOrEqual(t, c.Confidence, 1.0)
			for _, item := range c.Items {
				assert.NotEmpty(t, item.Name)
				assert.Greater(t, item.Quantity, 0.0)
			}
		})
	}
}

func TestExtractFallback_Chitchat(t *testing.T) {
	raw := ExtractFallback("How are you?")

	assert.Nil(t, raw.TransactionType)
	assert.Empty(t, raw.Items)
	assert.Equal(t, ConfidenceLabel("medium"), raw.Confidence)

	c := Normalize(raw)
	assert.Equal(t, TypeNone, c.TransactionType)
	assert.Zero(t, c.TotalAmount)
	assert.Zero(t, c.Confidence)
}

func TestExtractFallback_CustomerName(t *testing.T) {
	raw := ExtractFallback("Sold 3 cabbages to Mary Wanjiku for 300")

	require.NotNil(t, raw.CustomerName)
	assert.Equal(t, "Mary Wanjiku", *raw.CustomerName)

	c := Normalize(raw)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "cabbage", c.Items[0].Name)
	assert.InDelta(t, 100, c.Items[0].UnitPrice, 0.0001)
	assert.InDelta(t, 300, c.TotalAmount, 0.0001)
}

func TestNormalizeUnit(t *testing.T) {
	tests := map[string]string{
		"kg":     "kg",
		"Kilos":  "kg",
		"pcs":    "pieces",
		"piece":  "pieces",
		"litres": "liters",
		"liter":  "liters",
		"bags":   "bags",
		"units":  "unit",
		"crates": "unit",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeUnit(in), in)
	}
}
