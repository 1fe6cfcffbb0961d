package repositories

import (
	"context"
	"slices"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRepo stores conversation turns
type ChatRepo interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// History returns up to limit latest messages of a conversation, oldest first
	History(ctx context.Context, userID uuid.UUID, conversationID string, limit int) ([]models.ChatMessage, error)
	Conversations(ctx context.Context, userID uuid.UUID, limit int) ([]models.ConversationSummary, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepo(db *gorm.DB) ChatRepo {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepo) History(ctx context.Context, userID uuid.UUID, conversationID string, limit int) ([]models.ChatMessage, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

func (r *chatRepo) Conversations(ctx context.Context, userID uuid.UUID, limit int) ([]models.ConversationSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	var summaries []models.ConversationSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (conversation_id)
			conversation_id,
			content AS last_message,
			role AS last_role,
			COUNT(*) OVER (PARTITION BY conversation_id) AS message_count,
			created_at AS updated_at
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY conversation_id, created_at DESC`, userID).
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}

	slices.SortFunc(summaries, func(a, b models.ConversationSummary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// AIUsageRepo records and summarizes model calls
type AIUsageRepo interface {
	Create(ctx context.Context, usage *models.AIUsage) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Summary(ctx context.Context, period *analytics.DateRange) ([]models.AIUsageStat, error)
}

type aiUsageRepo struct {
	db         *gorm.DB
	aggregator *analytics.Aggregator
}

func NewAIUsageRepo(db *gorm.DB) AIUsageRepo {
	return &aiUsageRepo{db: db, aggregator: analytics.NewAggregator(db)}
}

func (r *aiUsageRepo) Create(ctx context.Context, usage *models.AIUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *aiUsageRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AIUsage{})
	return result.RowsAffected, result.Error
}

func (r *aiUsageRepo) Summary(ctx context.Context, period *analytics.DateRange) ([]models.AIUsageStat, error) {
	byCreated := *period
	byCreated.Field = "created_at"

	rows, err := r.aggregator.Aggregate(ctx, analytics.AggregateQuery{
		Table:   models.AIUsage{}.TableName(),
		GroupBy: []string{"model"},
		Aggregates: map[string]string{
			"requests":    "COUNT(*)",
			"failures":    "SUM(CASE WHEN success THEN 0 ELSE 1 END)",
			"tokens_used": "COALESCE(SUM(tokens_used), 0)",
			"avg_ms":      "COALESCE(AVG(response_time_ms), 0)",
		},
		DateRange: &byCreated,
		OrderBy:   []string{"requests DESC"},
	})
	if err != nil {
		return nil, err
	}

	stats := make([]models.AIUsageStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, models.AIUsageStat{
			Model:             analytics.String(row, "model"),
			Requests:          analytics.Int(row, "requests"),
			Failures:          analytics.Int(row, "failures"),
			TokensUsed:        analytics.Int(row, "tokens_used"),
			AvgResponseTimeMs: analytics.Float(row, "avg_ms"),
		})
	}
	return stats, nil
}
