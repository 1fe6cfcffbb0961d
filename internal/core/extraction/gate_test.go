package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStrongIntent(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		txType     TransactionType
		total      float64
		confidence float64
		want       bool
	}{
		{"null type never passes", "I sold 10 tomatoes", TypeNone, 100, 0.9, false},
		{"zero amount never passes", "I sold 10 tomatoes", TypeSale, 0, 0.9, false},
		{"confidence above threshold", "tomatoes 10 for 200", TypeSale, 200, 0.7, true},
		{"threshold is exclusive", "hello there 50", TypeSale, 50, 0.4, false},
		{"swahili keyword rescues low confidence", "nimeuza nyanya", TypeSale, 50, 0.4, true},
		{"english keyword rescues zero confidence", "I paid 200 for water", TypeExpense, 200, 0, true},
		{"unpaid does not count as paid", "unpaid invoice 200", TypeExpense, 200, 0.1, false},
		{"received counts", "received 300 from Ann", TypeSale, 300, 0.2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{TransactionType: tt.txType, TotalAmount: tt.total, Confidence: tt.confidence}
			assert.Equal(t, tt.want, IsStrongIntent(tt.message, c))
		})
	}
}

func TestIsStrongIntent_Chitchat(t *testing.T) {
	c := ApplyHeuristics("How are you?", Normalize(ExtractFallback("How are you?")))
	assert.False(t, IsStrongIntent("How are you?", c))
}
