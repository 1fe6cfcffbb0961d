// internal/core/whatsapp/client.go
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// DefaultQRFile is where the pairing QR is written when the device is not linked yet
const DefaultQRFile = "whatsapp-qr.png"

var ErrNotConnected = errors.New("whatsapp client not connected")

// MessageHandler receives the sender's phone number and the text of one inbound message
type MessageHandler func(ctx context.Context, phone, text string)

// Client is a single-device whatsmeow session
type Client struct {
	client   *whatsmeow.Client
	storeURL string
	qrFile   string
}

// NewClient prepares a client. An empty storeURL keeps the session in a local SQLite file.
func NewClient(storeURL string) *Client {
	return &Client{
		storeURL: storeURL,
		qrFile:   DefaultQRFile,
	}
}

// Connect opens the session, pairing by QR code when no device is stored yet
func (w *Client) Connect(ctx context.Context) error {
	container, err := initStore(ctx, w.storeURL)
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}

	w.client = whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	if w.client.Store.ID != nil {
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
		log.Info().Msg("✅ Reconnected to WhatsApp")
		return nil
	}

	qrChan, _ := w.client.GetQRChannel(ctx)
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			fmt.Println("🔗 Scan this QR code in WhatsApp:", evt.Code)
			if err := qrcode.WriteFile(evt.Code, qrcode.Medium, 256, w.qrFile); err != nil {
				log.Error().Err(err).Msg("❌ Failed to write QR image")
			} else {
				log.Info().Str("file", w.qrFile).Msg("🖼️ QR code saved")
			}
		case "success":
			log.Info().Msg("✅ WhatsApp pairing succeeded")
			return nil
		case "timeout":
			return fmt.Errorf("QR code timeout")
		}
	}

	return nil
}

// Disconnect closes the session
func (w *Client) Disconnect() {
	if w.client != nil {
		w.client.Disconnect()
		log.Info().Msg("🔌 WhatsApp client disconnected")
	}
}

// IsConnected reports whether the websocket is up
func (w *Client) IsConnected() bool {
	return w.client != nil && w.client.IsConnected()
}

// SendMessage sends a plain text message to a phone number in international form
func (w *Client) SendMessage(ctx context.Context, phone, message string) error {
	if w.client == nil {
		return ErrNotConnected
	}

	jid := types.NewJID(NormalizePhone(phone), types.DefaultUserServer)
	msg := &waProto.Message{
		Conversation: proto.String(message),
	}

	_, err := w.client.SendMessage(ctx, jid, msg)
	return err
}

// OnMessage registers a handler for inbound one-to-one text messages.
// Group chats, status updates and our own messages are ignored.
func (w *Client) OnMessage(handler MessageHandler) error {
	if w.client == nil {
		return ErrNotConnected
	}

	w.client.AddEventHandler(func(evt interface{}) {
		msg, ok := evt.(*events.Message)
		if !ok || msg.Info.IsFromMe || msg.Info.IsGroup {
			return
		}
		if msg.Info.Chat.Server == types.BroadcastServer {
			return
		}

		text := MessageText(msg.Message)
		if text == "" {
			return
		}
		handler(context.Background(), msg.Info.Sender.User, text)
	})
	return nil
}

// MessageText pulls the text out of a plain or extended text message
func MessageText(m *waProto.Message) string {
	if m == nil {
		return ""
	}
	if text := m.GetConversation(); text != "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(m.GetExtendedTextMessage().GetText())
}

// StartTyping shows the typing indicator in a chat
func (w *Client) StartTyping(ctx context.Context, phone string) error {
	return w.chatPresence(ctx, phone, types.ChatPresenceComposing)
}

// StopTyping clears the typing indicator
func (w *Client) StopTyping(ctx context.Context, phone string) error {
	return w.chatPresence(ctx, phone, types.ChatPresencePaused)
}

func (w *Client) chatPresence(ctx context.Context, phone string, state types.ChatPresence) error {
	if !w.IsConnected() {
		return ErrNotConnected
	}
	jid := types.NewJID(NormalizePhone(phone), types.DefaultUserServer)
	return w.client.SendChatPresence(ctx, jid, state, types.ChatPresenceMediaText)
}

// QRPNG renders a pairing code as a 256px PNG
func QRPNG(code string) ([]byte, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	return png, nil
}

// NormalizePhone strips "+", spaces and dashes so "+254 712-345678" becomes "254712345678"
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
