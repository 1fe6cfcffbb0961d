package services

import (
	"context"
	"fmt"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/google/uuid"
)

// InventoryService exposes stock levels and their movement history
type InventoryService struct {
	inventory repositories.InventoryRepo
	movements repositories.StockMovementRepo
}

func NewInventoryService(repos *repositories.Set) *InventoryService {
	return &InventoryService{inventory: repos.Inventory, movements: repos.Movements}
}

// List returns all stock rows, or only the low ones
func (s *InventoryService) List(ctx context.Context, userID uuid.UUID, lowOnly bool) ([]models.InventoryItem, error) {
	var (
		items []models.InventoryItem
		err   error
	)
	if lowOnly {
		items, err = s.inventory.ListLowStock(ctx, userID)
	} else {
		items, err = s.inventory.List(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	for i := range items {
		items[i].LowStock = items[i].IsLowStock()
	}
	return items, nil
}

// Movements returns the latest movements of one stock row owned by the user
func (s *InventoryService) Movements(ctx context.Context, userID, inventoryID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if _, err := s.inventory.GetByID(ctx, userID, inventoryID); err != nil {
		return nil, err
	}
	movements, err := s.movements.ListByInventory(ctx, userID, inventoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	return movements, nil
}
