package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/rs/zerolog/log"
)

// UsageService reports and prunes AI usage records
type UsageService struct {
	usage repositories.AIUsageRepo
	now   func() time.Time
}

func NewUsageService(repos *repositories.Set) *UsageService {
	return &UsageService{usage: repos.Usage, now: time.Now}
}

// Summary breaks usage down per model for a period
func (s *UsageService) Summary(ctx context.Context, period *analytics.DateRange) ([]models.AIUsageStat, error) {
	stats, err := s.usage.Summary(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize AI usage: %w", err)
	}
	if stats == nil {
		stats = []models.AIUsageStat{}
	}
	return stats, nil
}

// Purge deletes usage rows older than the retention period
func (s *UsageService) Purge(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)

	deleted, err := s.usage.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge AI usage: %w", err)
	}

	log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("🧹 AI usage purged")
	return deleted, nil
}
