package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepo interface defines transaction operations
type TransactionRepo interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, int64, error)
	Update(ctx context.Context, transaction *models.Transaction) error
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	// FindRecentDuplicate returns nil when no matching transaction was created since the given time
	FindRecentDuplicate(ctx context.Context, userID uuid.UUID, txType string, amount decimal.Decimal, since time.Time) (*models.Transaction, error)
	ListUnpaidLiabilities(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo creates a new transaction repository
func NewTransactionRepo(db *gorm.DB) TransactionRepo {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *transactionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.Transaction
	err := query.
		Order("occurred_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *transactionRepo) Update(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

func (r *transactionRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepo) FindRecentDuplicate(ctx context.Context, userID uuid.UUID, txType string, amount decimal.Decimal, since time.Time) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND amount = ? AND created_at >= ?", userID, txType, amount, since).
		Order("created_at DESC").
		First(&transaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) ListUnpaidLiabilities(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND type IN ?", userID, models.StatusUnpaid, []string{"debt", "loan"}).
		Order("occurred_at ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) ListBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND occurred_at BETWEEN ? AND ?", userID, from, to).
		Order("occurred_at ASC").
		Find(&transactions).Error
	return transactions, err
}
