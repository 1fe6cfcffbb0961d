package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantKind  ReplyKind
		wantErr   error
		wantType  string
		wantNotes string
	}{
		{
			name:     "bare object",
			reply:    `{"transactionType":"sale","items":[],"totalAmount":50,"confidence":0.9}`,
			wantKind: ReplyParsed,
			wantType: "sale",
		},
		{
			name:     "object wrapped in prose and fences",
			reply:    "Here you go:\n```json\n{\"transactionType\":\"purchase\",\"totalAmount\":\"1,200\"}\n```\nAnything else?",
			wantKind: ReplyParsed,
			wantType: "purchase",
		},
		{
			name:      "braces inside strings are skipped",
			reply:     `{"transactionType":"expense","notes":"paid {cash} at the } stall"} trailing {`,
			wantKind:  ReplyParsed,
			wantType:  "expense",
			wantNotes: "paid {cash} at the } stall",
		},
		{
			name:     "trailing comma accepted as json5",
			reply:    `{"transactionType":"debt","totalAmount":300,}`,
			wantKind: ReplyParsed,
			wantType: "debt",
		},
		{
			name:     "no object",
			reply:    "Sorry, I could not understand that.",
			wantKind: ReplyFallback,
			wantErr:  ErrNoJSONObject,
		},
		{
			name:     "unbalanced object",
			reply:    `{"transactionType":"sale","items":[`,
			wantKind: ReplyFallback,
			wantErr:  ErrNoJSONObject,
		},
		{
			name:     "garbage inside braces",
			reply:    `{this is not json at all}`,
			wantKind: ReplyFallback,
			wantErr:  ErrMalformedJSON,
		},
		{
			name:     "wrong type for transactionType",
			reply:    `{"transactionType":5}`,
			wantKind: ReplyFallback,
			wantErr:  ErrSchemaMismatch,
		},
		{
			name:     "items must be an array",
			reply:    `{"transactionType":"sale","items":"tomatoes"}`,
			wantKind: ReplyFallback,
			wantErr:  ErrSchemaMismatch,
		},
		{
			name:     "transactionType is required",
			reply:    `{"totalAmount":100}`,
			wantKind: ReplyFallback,
			wantErr:  ErrSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReply(tt.reply)

			require.Equal(t, tt.wantKind, got.Kind, "reason: %v", got.Reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got.Reason, tt.wantErr)
				return
			}
			require.NotNil(t, got.Raw.TransactionType)
			assert.Equal(t, tt.wantType, *got.Raw.TransactionType)
			if tt.wantNotes != "" {
				require.NotNil(t, got.Raw.Notes)
				assert.Equal(t, tt.wantNotes, *got.Raw.Notes)
			}
		})
	}
}

func TestParseReply_NullType(t *testing.T) {
	got := ParseReply(`{"transactionType":null,"items":[],"totalAmount":0,"customerName":null,"date":null,"notes":null,"paymentStatus":null,"confidence":0}`)

	require.Equal(t, ReplyParsed, got.Kind)
	assert.Nil(t, got.Raw.TransactionType)
	assert.Equal(t, Score(0), got.Raw.Confidence)
}
