package analytics

import (
	"strconv"
	"time"
)

// TrendPoint is one dated amount fed into a trend chart
type TrendPoint struct {
	At     time.Time
	Amount float64
}

// BuildTrendChart buckets each named series into the given days and returns a line chart
// with one value per day. Points outside every day are ignored.
func BuildTrendChart(days []DateRange, series map[string][]TrendPoint, order ...string) ChartData {
	labels := make([]string, len(days))
	for i, day := range days {
		labels[i] = day.Label
	}

	data := make([]ChartSeries, 0, len(order))
	for _, name := range order {
		values := make([]float64, len(days))
		for _, p := range series[name] {
			if i := dayIndex(days, p.At); i >= 0 {
				values[i] += p.Amount
			}
		}
		for i := range values {
			values[i] = round2(values[i])
		}
		data = append(data, ChartSeries{Name: name, Values: values})
	}

	return ChartData{
		Type:   "line",
		Labels: labels,
		Data:   data,
	}
}

func dayIndex(days []DateRange, t time.Time) int {
	for i, day := range days {
		if day.Contains(t) {
			return i
		}
	}
	return -1
}

func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}

func toFloat64(value interface{}) float64 {
	if value == nil {
		return 0
	}

	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}
