package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Aggregator provides generic database aggregation helpers
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates a new aggregator
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Aggregate performs a generic aggregation query
func (a *Aggregator) Aggregate(ctx context.Context, query AggregateQuery) ([]map[string]interface{}, error) {
	db := a.db.WithContext(ctx).Table(query.Table).Select(buildSelect(query))

	// Apply WHERE filters
	for condition, value := range query.Filters {
		if strings.Contains(condition, "?") {
			// Parameterized condition (e.g., "created_at BETWEEN ? AND ?")
			db = db.Where(condition, value)
		} else {
			// Simple equality (e.g., {"user_id": uuid})
			db = db.Where(fmt.Sprintf("%s = ?", condition), value)
		}
	}

	if query.DateRange != nil {
		db = db.Where(fmt.Sprintf("%s BETWEEN ? AND ?", query.DateRange.Field),
			query.DateRange.Start, query.DateRange.End)
	}

	if len(query.GroupBy) > 0 {
		db = db.Group(strings.Join(query.GroupBy, ", "))
	}

	for _, order := range query.OrderBy {
		db = db.Order(order)
	}

	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}

	var results []map[string]interface{}
	if err := db.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("aggregate query failed: %w", err)
	}

	return results, nil
}

// buildSelect lists GROUP BY columns first, then aggregates sorted by alias
func buildSelect(query AggregateQuery) string {
	selectParts := append([]string{}, query.GroupBy...)

	aliases := make([]string, 0, len(query.Aggregates))
	for alias := range query.Aggregates {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		selectParts = append(selectParts, fmt.Sprintf("%s AS %s", query.Aggregates[alias], alias))
	}

	return strings.Join(selectParts, ", ")
}

// Float reads a numeric aggregate column from a result row
func Float(row map[string]interface{}, key string) float64 {
	return toFloat64(row[key])
}

// Int reads an integer aggregate column from a result row
func Int(row map[string]interface{}, key string) int64 {
	return int64(toFloat64(row[key]))
}

// String reads a text column from a result row
func String(row map[string]interface{}, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
