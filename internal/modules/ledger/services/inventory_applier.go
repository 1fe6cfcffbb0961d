package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// InventoryApplier draws stock down for confirmed sales.
// The sale is already saved when it runs, so every failure here is logged and skipped.
type InventoryApplier struct {
	inventory repositories.InventoryRepo
}

func NewInventoryApplier(inventory repositories.InventoryRepo) *InventoryApplier {
	return &InventoryApplier{inventory: inventory}
}

// ApplyInventoryEffects decrements inventory for each sold item that has enough stock
// and returns how many items were drawn down.
func (a *InventoryApplier) ApplyInventoryEffects(ctx context.Context, tx *models.Transaction) int {
	if tx == nil || tx.Type != extraction.TypeSale || len(tx.Items) == 0 {
		return 0
	}

	applied := 0
	for _, item := range tx.Items {
		sold := item.Quantity
		if sold <= 0 {
			continue
		}

		logger := log.With().
			Str("user_id", tx.UserID.String()).
			Str("transaction_id", tx.ID.String()).
			Str("item", item.Name).
			Float64("quantity", sold).
			Logger()

		stock, err := a.inventory.FindByNormalizedName(ctx, tx.UserID, extraction.NormalizeName(item.Name))
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Debug().Msg("No inventory match for sold item, skipping")
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Msg("⚠️ Inventory lookup failed, skipping draw-down")
			continue
		}

		transactionID := tx.ID
		movement := &models.StockMovement{
			Type:          models.MovementSale,
			UnitPrice:     decimal.NewFromFloat(item.UnitPrice).Round(2),
			Reason:        fmt.Sprintf("Sold via transaction %s", tx.ID),
			TransactionID: &transactionID,
		}

		_, err = a.inventory.ApplyMovement(ctx, stock.ID, movement, func(locked *models.InventoryItem) (float64, error) {
			if locked.CurrentQuantity < sold {
				return 0, ErrInsufficientStock
			}
			return locked.CurrentQuantity - sold, nil
		})
		switch {
		case errors.Is(err, ErrInsufficientStock):
			logger.Debug().Msg("Not enough stock for sold item, skipping")
		case err != nil:
			logger.Warn().Err(err).Msg("⚠️ Inventory draw-down failed")
		default:
			applied++
		}
	}

	return applied
}
