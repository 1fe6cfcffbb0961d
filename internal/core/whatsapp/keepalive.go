package whatsapp

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow/types"
)

// KeepAliveInterval is how often an "available" presence is sent
const KeepAliveInterval = 60 * time.Second

// StartKeepAlive mengirim presence update periodic untuk menjaga session tetap aktif.
// Blocks until ctx is done.
func (w *Client) StartKeepAlive(ctx context.Context) {
	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", KeepAliveInterval).Msg("🔄 Keep-alive started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("🛑 Keep-alive stopped")
			return
		case <-ticker.C:
			if !w.IsConnected() {
				continue
			}
			if err := w.client.SendPresence(ctx, types.PresenceAvailable); err != nil {
				log.Warn().Err(err).Msg("⚠️ Keep-alive ping failed")
			} else {
				log.Debug().Msg("💓 Keep-alive ping sent")
			}
		}
	}
}
