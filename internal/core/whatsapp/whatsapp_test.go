package whatsapp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"google.golang.org/protobuf/proto"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		text string
		want ReplyKind
	}{
		{"yes", ReplyConfirm},
		{"Yes!", ReplyConfirm},
		{" ndio ", ReplyConfirm},
		{"NDIYO", ReplyConfirm},
		{"sawa.", ReplyConfirm},
		{"no", ReplyDiscard},
		{"Hapana", ReplyDiscard},
		{"cancel", ReplyDiscard},
		{"yes please add it", ReplyOther},
		{"Nimeuza nyanya 10", ReplyOther},
		{"", ReplyOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReply(tt.text))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "254712345678", NormalizePhone("+254 712-345678"))
	assert.Equal(t, "254712345678", NormalizePhone("254712345678"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestPendingStore(t *testing.T) {
	now := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)
	store := NewPendingStore[string](10 * time.Minute)
	store.now = func() time.Time { return now }

	expires := store.Put("+254712345678", "sale")
	assert.Equal(t, now.Add(10*time.Minute), expires)

	got, ok := store.Peek("254712345678")
	require.True(t, ok)
	assert.Equal(t, "sale", got)

	store.Put("254712345678", "stock")
	assert.Equal(t, 1, store.Len())

	got, ok = store.Take("254 712 345678")
	require.True(t, ok)
	assert.Equal(t, "stock", got)

	_, ok = store.Take("254712345678")
	assert.False(t, ok)
}

func TestPendingStore_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)
	store := NewPendingStore[int](time.Minute)
	store.now = func() time.Time { return now }

	store.Put("111", 1)
	store.Put("222", 2)

	now = now.Add(30 * time.Second)
	store.Put("333", 3)

	now = now.Add(40 * time.Second)
	_, ok := store.Take("111")
	assert.False(t, ok, "expired entry must not be returned")

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	v, ok := store.Peek("333")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestPendingStore_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultPendingTTL, NewPendingStore[int](0).TTL())
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "", MessageText(nil))
	assert.Equal(t, "hello", MessageText(&waProto.Message{Conversation: proto.String(" hello ")}))
	assert.Equal(t, "sold 3 soda", MessageText(&waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{Text: proto.String("sold 3 soda")},
	}))
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("2@pairing-code")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestStoreDialect(t *testing.T) {
	assert.Equal(t, "sqlite", StoreDialect(""))
	assert.Equal(t, "postgres", StoreDialect("postgres://localhost/soko"))
}
