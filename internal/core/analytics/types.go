package analytics

import "time"

// AggregateQuery represents a generic database aggregation query
type AggregateQuery struct {
	Table      string                 // Table or JOIN clause
	GroupBy    []string               // GROUP BY columns
	Aggregates map[string]string      // Aggregate functions: {"total": "SUM(amount)", "count": "COUNT(*)"}
	Filters    map[string]interface{} // WHERE conditions
	DateRange  *DateRange             // Date range filter
	OrderBy    []string               // ORDER BY clauses
	Limit      int                    // LIMIT (0 = no limit)
}

// DateRange represents a time period for filtering
type DateRange struct {
	Period string    `json:"period"`
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Field  string    `json:"-"` // Date field to filter on (e.g., "occurred_at")
}

// Contains reports whether t falls inside the range, both ends inclusive
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ChartData represents generic chart data format
type ChartData struct {
	Type   string        `json:"type"`   // "line", "bar"
	Labels []string      `json:"labels"` // X-axis labels
	Data   []ChartSeries `json:"data"`   // Y-axis data series
}

// ChartSeries represents a data series in a chart
type ChartSeries struct {
	Name   string    `json:"name"` // Series name (e.g., "Income", "Expenses")
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}
