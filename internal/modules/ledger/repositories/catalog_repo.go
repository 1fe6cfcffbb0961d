package repositories

import (
	"context"
	"strings"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerRepo resolves customers by name
type CustomerRepo interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*models.Customer, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepo {
	return &customerRepo{db: db}
}

func (r *customerRepo) FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	normalized := extraction.NormalizeName(name)
	return findOrCreateByName(ctx, r.db, userID, normalized, &models.Customer{
		UserID:         userID,
		Name:           name,
		NormalizedName: normalized,
	})
}

// ItemRepo resolves catalog items by name
type ItemRepo interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, name, unit string, price float64) (*models.CatalogItem, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepo {
	return &itemRepo{db: db}
}

func (r *itemRepo) FindOrCreate(ctx context.Context, userID uuid.UUID, name, unit string, price float64) (*models.CatalogItem, error) {
	name = strings.TrimSpace(name)
	normalized := extraction.NormalizeName(name)
	return findOrCreateByName(ctx, r.db, userID, normalized, &models.CatalogItem{
		UserID:         userID,
		Name:           name,
		NormalizedName: normalized,
		Unit:           unit,
		DefaultPrice:   decimal.NewFromFloat(price).Round(2),
	})
}
