package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

const sqliteStoreDSN = "file:store.db?_pragma=foreign_keys(1)"

// initStore opens the device store: PostgreSQL when a URL is given, a local SQLite file otherwise
func initStore(ctx context.Context, storeURL string) (*sqlstore.Container, error) {
	dbLog := waLog.Stdout("WhatsApp-Store", "ERROR", true)

	if StoreDialect(storeURL) == "postgres" {
		log.Info().Msg("🌐 Using PostgreSQL database for WhatsApp store")
		rawDB, err := sql.Open("pgx", storeURL)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		container := sqlstore.NewWithDB(rawDB, "postgres", dbLog)
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		log.Info().Msg("📦 WhatsApp store ready")
		return container, nil
	}

	log.Info().Msg("💾 Using local SQLite store (store.db)")
	rawDB, err := sql.Open("sqlite", sqliteStoreDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// whatsmeow refuses to start without foreign keys
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to enable foreign_keys pragma")
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}

	log.Info().Msg("📦 WhatsApp store ready")
	return container, nil
}

// StoreDialect names the backend initStore will pick for a URL
func StoreDialect(storeURL string) string {
	if strings.TrimSpace(storeURL) == "" {
		return "sqlite"
	}
	return "postgres"
}
