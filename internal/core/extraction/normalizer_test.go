package extraction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, payload string) RawCandidate {
	t.Helper()
	var raw RawCandidate
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestCoerceConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   Confidence
		want float64
	}{
		{"high", ConfidenceLabel("high"), 0.9},
		{"medium", ConfidenceLabel("medium"), 0.7},
		{"low", ConfidenceLabel("low"), 0.4},
		{"label casing", ConfidenceLabel(" HIGH "), 0.9},
		{"absent", Confidence{}, 0},
		{"unknown label", ConfidenceLabel("certain"), 0},
		{"numeric", Score(0.85), 0.85},
		{"numeric above range", Score(1.5), 1},
		{"numeric below range", Score(-0.2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CoerceConfidence(tt.in), 0.0001)
		})
	}
}

func TestConfidence_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		payload string
		want    float64
	}{
		{`{"transactionType":"sale","items":[{"name":"x"}],"confidence":"high"}`, 0.9},
		{`{"transactionType":"sale","items":[{"name":"x"}],"confidence":"0.8"}`, 0.8},
		{`{"transactionType":"sale","items":[{"name":"x"}],"confidence":0.65}`, 0.65},
		{`{"transactionType":"sale","items":[{"name":"x"}],"confidence":null}`, 0},
		{`{"transactionType":"sale","items":[{"name":"x"}]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			c := Normalize(decodeRaw(t, tt.payload))
			assert.InDelta(t, tt.want, c.Confidence, 0.0001)
		})
	}
}

func TestNormalize_PlaceholderForcesConfidence(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty items with high numeric confidence", `{"transactionType":"expense","items":[],"totalAmount":500,"confidence":0.99}`},
		{"missing items with high label", `{"transactionType":"expense","totalAmount":"500","confidence":"high"}`},
		{"null items", `{"transactionType":"expense","items":null,"totalAmount":500,"confidence":0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Normalize(decodeRaw(t, tt.payload))

			require.Len(t, c.Items, 1)
			assert.Equal(t, Item{Name: PlaceholderItemName, Quantity: 1, Unit: "unit", UnitPrice: 500, TotalPrice: 500}, c.Items[0])
			assert.Equal(t, PlaceholderConfidence, c.Confidence)
			assert.True(t, c.HasPlaceholderItem())
		})
	}
}

func TestNormalize_Items(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Item
	}{
		{
			name:    "conflicting total is recomputed",
			payload: `{"transactionType":"sale","items":[{"name":" Tomatoes ","quantity":10,"unit":"Pieces","unitPrice":5,"totalPrice":999}]}`,
			want:    Item{Name: "tomatoes", Quantity: 10, Unit: "pieces", UnitPrice: 5, TotalPrice: 50},
		},
		{
			name:    "unit price derived from total when missing",
			payload: `{"transactionType":"sale","items":[{"name":"onions","quantity":10,"totalPrice":200}]}`,
			want:    Item{Name: "onions", Quantity: 10, Unit: "unit", UnitPrice: 20, TotalPrice: 200},
		},
		{
			name:    "non-numeric quantity defaults to one",
			payload: `{"transactionType":"sale","items":[{"name":"kale","quantity":"a few","unitPrice":"KES 30"}]}`,
			want:    Item{Name: "kale", Quantity: 1, Unit: "unit", UnitPrice: 30, TotalPrice: 30},
		},
		{
			name:    "string numbers with separators",
			payload: `{"transactionType":"purchase","items":[{"name":"sugar","quantity":"2","unit":"bags","unitPrice":"1,500"}]}`,
			want:    Item{Name: "sugar", Quantity: 2, Unit: "bags", UnitPrice: 1500, TotalPrice: 3000},
		},
		{
			name:    "empty name falls back",
			payload: `{"transactionType":"sale","items":[{"name":"  ","quantity":0,"unitPrice":"free"}]}`,
			want:    Item{Name: "item", Quantity: 1, Unit: "unit", UnitPrice: 0, TotalPrice: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Normalize(decodeRaw(t, tt.payload))
			require.Len(t, c.Items, 1)
			assert.Equal(t, tt.want, c.Items[0])
		})
	}
}

func TestNormalize_TotalAmount(t *testing.T) {
	c := Normalize(decodeRaw(t, `{"transactionType":"sale","items":[
		{"name":"tomatoes","quantity":2,"unitPrice":50},
		{"name":"onions","quantity":3,"unitPrice":40}
	],"totalAmount":0,"confidence":0.9}`))
	assert.InDelta(t, 220, c.TotalAmount, 0.0001)

	c = Normalize(decodeRaw(t, `{"transactionType":"sale","items":[{"name":"tomatoes","quantity":2,"unitPrice":50}],"totalAmount":120}`))
	assert.InDelta(t, 120, c.TotalAmount, 0.0001)

	c = Normalize(decodeRaw(t, `{"transactionType":"expense","totalAmount":-40}`))
	assert.Zero(t, c.TotalAmount)
}

func TestNormalize_TransactionType(t *testing.T) {
	tests := []struct {
		payload string
		want    TransactionType
	}{
		{`{"transactionType":"SALE"}`, TypeSale},
		{`{"transactionType":" debt "}`, TypeDebt},
		{`{"transactionType":"transfer"}`, TypeSale},
		{`{"transactionType":null}`, TypeNone},
		{`{"transactionType":""}`, TypeNone},
		{`{}`, TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(decodeRaw(t, tt.payload)).TransactionType)
		})
	}
}

func TestNormalize_NullTypeIsNotATransaction(t *testing.T) {
	c := Normalize(decodeRaw(t, `{"transactionType":null,"items":[],"totalAmount":0,"customerName":"","confidence":0.95}`))

	assert.False(t, c.IsTransaction())
	assert.Zero(t, c.Confidence)
	assert.Empty(t, c.Items)
	assert.Nil(t, c.CustomerName)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"transactionType":null`)
	assert.Contains(t, string(b), `"items":[]`)
}
