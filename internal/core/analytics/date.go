package analytics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period keys understood by GetDateRange. "last_<n>_days" is accepted for any n.
const (
	PeriodToday      = "today"
	PeriodYesterday  = "yesterday"
	PeriodThisWeek   = "this_week"
	PeriodLastWeek   = "last_week"
	PeriodThisMonth  = "this_month"
	PeriodLastMonth  = "last_month"
	PeriodThisYear   = "this_year"
	PeriodLast30Days = "last_30_days"
)

// DefaultPeriod is used when nothing in the request names a period
const DefaultPeriod = PeriodLast30Days

const maxLookbackDays = 3650

var (
	lastNDaysKey     = regexp.MustCompile(`^last_(\d+)_days?$`)
	lastNDaysEnglish = regexp.MustCompile(`last (\d+) days?`)
	lastNDaysSwahili = regexp.MustCompile(`siku (\d+) zilizopita`)
)

// periodPhrases is checked in order; the first phrase found in the message wins
var periodPhrases = []struct {
	period  string
	phrases []string
}{
	{PeriodToday, []string{"today", "leo"}},
	{PeriodYesterday, []string{"yesterday", "jana"}},
	{PeriodThisWeek, []string{"this week", "wiki hii"}},
	{PeriodLastWeek, []string{"last week", "wiki iliyopita"}},
	{PeriodThisMonth, []string{"this month", "mwezi huu"}},
	{PeriodLastMonth, []string{"last month", "mwezi uliopita"}},
	{PeriodThisYear, []string{"this year", "mwaka huu"}},
}

// ParsePeriod picks the period a free-text English or Swahili message asks about
func ParsePeriod(message string) string {
	lower := strings.ToLower(message)

	for _, p := range periodPhrases {
		for _, phrase := range p.phrases {
			if strings.Contains(lower, phrase) {
				return p.period
			}
		}
	}

	for _, re := range []*regexp.Regexp{lastNDaysEnglish, lastNDaysSwahili} {
		if m := re.FindStringSubmatch(lower); m != nil {
			return "last_" + m[1] + "_days"
		}
	}

	return DefaultPeriod
}

// NormalizePeriod accepts "last 7 days", "This-Month" and similar spellings of a period key
func NormalizePeriod(period string) string {
	p := strings.ToLower(strings.TrimSpace(period))
	p = strings.NewReplacer(" ", "_", "-", "_").Replace(p)
	if p == "" {
		return DefaultPeriod
	}
	return p
}

// GetDateRange returns the date range of a period as of now
func GetDateRange(period string) *DateRange {
	return DateRangeAt(period, time.Now())
}

// DateRangeAt returns the date range of a period relative to now.
// Unknown periods fall back to the last 30 days.
func DateRangeAt(period string, now time.Time) *DateRange {
	period = NormalizePeriod(period)
	var start, end time.Time
	var label string

	switch period {
	case PeriodToday:
		start = startOfDay(now)
		end = endOfDay(now)
		label = "Today"

	case PeriodYesterday:
		yesterday := now.AddDate(0, 0, -1)
		start = startOfDay(yesterday)
		end = endOfDay(yesterday)
		label = "Yesterday"

	case PeriodThisWeek:
		// Start of week (Monday)
		start = startOfDay(now.AddDate(0, 0, -isoWeekday(now)+1))
		end = now
		label = "This Week"

	case PeriodLastWeek:
		weekday := isoWeekday(now)
		start = startOfDay(now.AddDate(0, 0, -weekday-6))
		end = endOfDay(now.AddDate(0, 0, -weekday))
		label = "Last Week"

	case PeriodThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = now
		label = "This Month"

	case PeriodLastMonth:
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)
		label = "Last Month"

	case PeriodThisYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end = now
		label = "This Year"

	default:
		days := 30
		if m := lastNDaysKey.FindStringSubmatch(period); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				days = min(n, maxLookbackDays)
			}
		}
		period = fmt.Sprintf("last_%d_days", days)
		start = startOfDay(now.AddDate(0, 0, -days))
		end = now
		label = fmt.Sprintf("Last %d Days", days)
	}

	return &DateRange{
		Period: period,
		Label:  label,
		Start:  start,
		End:    end,
		Field:  "occurred_at",
	}
}

// GetCustomDateRange creates a date range from specific dates
func GetCustomDateRange(start, end time.Time, field string) *DateRange {
	if field == "" {
		field = "occurred_at"
	}

	return &DateRange{
		Period: "custom",
		Label:  fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
		Start:  start,
		End:    end,
		Field:  field,
	}
}

// GetDailyRanges returns date ranges for each day in a period
func GetDailyRanges(start, end time.Time) []DateRange {
	ranges := []DateRange{}
	current := startOfDay(start)

	for !current.After(end) {
		dayEnd := endOfDay(current)
		if dayEnd.After(end) {
			dayEnd = end
		}

		ranges = append(ranges, DateRange{
			Period: "day",
			Label:  current.Format("2006-01-02"),
			Start:  current,
			End:    dayEnd,
			Field:  "occurred_at",
		})

		current = current.AddDate(0, 0, 1)
	}

	return ranges
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// isoWeekday is 1 for Monday through 7 for Sunday
func isoWeekday(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return weekday
}
