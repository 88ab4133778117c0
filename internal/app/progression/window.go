package progression

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/domain"
)

// WeekStart returns the most recent Monday at 00:00:00 in now's location.
// Sunday belongs to the week that began six days earlier.
func WeekStart(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	return time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, now.Location())
}

// InWeek reports whether ts falls on or after the start of now's week.
func InWeek(ts, now time.Time) bool {
	return !ts.Before(WeekStart(now))
}

// WeeklyXP sums XPEarned over entries from the current week.
func WeeklyXP(history []domain.HistoryEntry, now time.Time) int64 {
	start := WeekStart(now)
	var total int64
	for _, e := range history {
		if !e.Timestamp.Before(start) {
			total += e.XPEarned
		}
	}
	return total
}

// WeeklySpend sums TotalSpent over entries from the current week.
func WeeklySpend(history []domain.HistoryEntry, now time.Time) decimal.Decimal {
	start := WeekStart(now)
	total := decimal.Zero
	for _, e := range history {
		if !e.Timestamp.Before(start) {
			total = total.Add(e.TotalSpent)
		}
	}
	return total
}
