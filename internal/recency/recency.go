package recency

import (
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

// Classify buckets a posting date relative to today. Both dates are
// compared as calendar dates; the time of day of today is ignored. A
// posting dated after today is treated as older since its date cannot be
// trusted.
func Classify(posted *time.Time, today time.Time) model.RecencyTier {
	if posted == nil {
		return model.RecencyUnknown
	}
	switch days := DaysBetween(*posted, today); {
	case days == 0:
		return model.RecencyToday
	case days == 1:
		return model.RecencyYesterday
	case days == 2 || days == 3:
		return model.RecencyWithin3Days
	default:
		return model.RecencyOlder
	}
}

// DaysBetween returns the number of calendar days from posted to today.
// It is negative when posted lies in the future.
func DaysBetween(posted, today time.Time) int {
	p := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(p).Hours() / 24)
}

// Badge returns the display marker of a tier, or "" for tiers without one.
func Badge(tier model.RecencyTier) string {
	switch tier {
	case model.RecencyToday:
		return "🔥"
	case model.RecencyYesterday:
		return "⚡"
	case model.RecencyWithin3Days:
		return "✨"
	default:
		return ""
	}
}
