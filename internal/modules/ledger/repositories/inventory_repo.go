package repositories

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextQuantity receives the locked inventory row and returns its new quantity.
// It may also update other fields of the row (prices, supplier, unit).
type NextQuantity func(item *models.InventoryItem) (float64, error)

// InventoryRepo interface defines inventory operations
type InventoryRepo interface {
	FindByNormalizedName(ctx context.Context, userID uuid.UUID, normalized string) (*models.InventoryItem, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	ListLowStock(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	FindOrCreate(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	// ApplyMovement locks the row, applies next, saves the row and appends movement, all in one DB transaction.
	ApplyMovement(ctx context.Context, inventoryID uuid.UUID, movement *models.StockMovement, next NextQuantity) (*models.InventoryItem, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

// NewInventoryRepo creates a new inventory repository
func NewInventoryRepo(db *gorm.DB) InventoryRepo {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) FindByNormalizedName(ctx context.Context, userID uuid.UUID, normalized string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND normalized_name = ?", userID, normalized).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *inventoryRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *inventoryRepo) List(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) ListLowStock(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND current_quantity <= low_stock_threshold", userID).
		Order("current_quantity ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) FindOrCreate(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	return findOrCreateByName(ctx, r.db, item.UserID, item.NormalizedName, item)
}

func (r *inventoryRepo) ApplyMovement(ctx context.Context, inventoryID uuid.UUID, movement *models.StockMovement, next NextQuantity) (*models.InventoryItem, error) {
	var updated models.InventoryItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", inventoryID).
			First(&item).Error
		if err != nil {
			return notFound(err)
		}

		previous := item.CurrentQuantity
		quantity, err := next(&item)
		if err != nil {
			return err
		}
		quantity = roundQuantity(quantity)

		item.CurrentQuantity = quantity
		item.LowStock = item.IsLowStock()
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		movement.UserID = item.UserID
		movement.InventoryID = item.ID
		movement.PreviousQuantity = previous
		movement.NewQuantity = quantity
		movement.Quantity = roundQuantity(quantity - previous)
		if err := tx.Create(movement).Error; err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// StockMovementRepo reads the append-only movement ledger. Rows are written by InventoryRepo.ApplyMovement.
type StockMovementRepo interface {
	// FindRecentAssistantMovement returns nil when no assistant movement of the requested quantity exists since the given time
	FindRecentAssistantMovement(ctx context.Context, userID uuid.UUID, requestedQuantity float64, since time.Time) (*models.StockMovement, error)
	ListByInventory(ctx context.Context, userID, inventoryID uuid.UUID, limit int) ([]models.StockMovement, error)
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepo {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) FindRecentAssistantMovement(ctx context.Context, userID uuid.UUID, requestedQuantity float64, since time.Time) (*models.StockMovement, error) {
	var movement models.StockMovement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND requested_quantity = ? AND reason ILIKE ? AND created_at >= ?",
			userID, requestedQuantity, "%assistant%", since).
		Order("created_at DESC").
		First(&movement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *stockMovementRepo) ListByInventory(ctx context.Context, userID, inventoryID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > models.MaxPageLimit {
		limit = models.MaxPageLimit
	}
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND inventory_id = ?", userID, inventoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

func roundQuantity(v float64) float64 {
	return math.Round(v*1000) / 1000
}
