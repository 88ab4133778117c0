// Package achievement defines the milestone badges a profile can earn.
// Each badge is a predicate over a Stats snapshot. Badges are cosmetic:
// they never grant XP, so XP stays equal to the savings earned.
package achievement

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/app/progression"
	"github.com/cartquest/cartquest/internal/domain"
)

// Category groups achievements by theme.
type Category string

const (
	CatTrips      Category = "trips"
	CatSavings    Category = "savings"
	CatStreaks    Category = "streaks"
	CatLevels     Category = "levels"
	CatCollection Category = "collection"
)

// Def defines a single achievement.
type Def struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  Category         `json:"category"`
	Icon      string           `json:"icon"`
	Predicate func(Stats) bool `json:"-"`
}

// Stats is the view of a profile that predicates are checked against.
type Stats struct {
	Trips            int
	UnderBudgetTrips int
	SaversUsed       int
	Streak           int
	Level            int
	LifetimeSavings  decimal.Decimal
	ItemsOwned       int
	PremiumOwned     int
}

// StatsFor derives Stats from stored state.
func StatsFor(state domain.ProgressionState, history []domain.HistoryEntry, lifetime decimal.Decimal, owned []string) Stats {
	st := Stats{
		Trips:           len(history),
		Streak:          state.Streak,
		Level:           progression.LevelForXP(state.XP),
		LifetimeSavings: lifetime,
		ItemsOwned:      len(owned),
	}
	for _, e := range history {
		if e.Budget.IsPositive() && e.TotalSpent.LessThanOrEqual(e.Budget) {
			st.UnderBudgetTrips++
		}
		if e.StreakSaverUsed {
			st.SaversUsed++
		}
	}
	for _, id := range owned {
		if it, ok := catalog.Lookup(id); ok && it.IsPremium {
			st.PremiumOwned++
		}
	}
	return st
}

func savedAtLeast(n int64) func(Stats) bool {
	floor := decimal.NewFromInt(n)
	return func(s Stats) bool { return s.LifetimeSavings.GreaterThanOrEqual(floor) }
}

// All returns the full achievement catalog.
func All() []Def {
	return []Def{
		// ── Trips ──────────────────────────────────────────────────────
		{
			ID: "first_trip", Name: "First Haul", Category: CatTrips, Icon: "🛒",
			Predicate: func(s Stats) bool { return s.Trips >= 1 },
		},
		{
			ID: "trips_10", Name: "Regular", Category: CatTrips, Icon: "🧺",
			Predicate: func(s Stats) bool { return s.Trips >= 10 },
		},
		{
			ID: "trips_50", Name: "Aisle Veteran", Category: CatTrips, Icon: "🏪",
			Predicate: func(s Stats) bool { return s.Trips >= 50 },
		},

		// ── Savings ────────────────────────────────────────────────────
		{
			ID: "under_budget", Name: "Penny Pincher", Category: CatSavings, Icon: "🪙",
			Predicate: func(s Stats) bool { return s.UnderBudgetTrips >= 1 },
		},
		{
			ID: "saved_100", Name: "Century Saver", Category: CatSavings, Icon: "💰",
			Predicate: savedAtLeast(100),
		},
		{
			ID: "saved_1000", Name: "Grand Saver", Category: CatSavings, Icon: "🏦",
			Predicate: savedAtLeast(1000),
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_7", Name: "Week Warrior", Category: CatStreaks, Icon: "🔥",
			Predicate: func(s Stats) bool { return s.Streak >= 7 },
		},
		{
			ID: "streak_30", Name: "Monthly Machine", Category: CatStreaks, Icon: "💪",
			Predicate: func(s Stats) bool { return s.Streak >= 30 },
		},
		{
			ID: "saver_used", Name: "Close Call", Category: CatStreaks, Icon: "🛟",
			Predicate: func(s Stats) bool { return s.SaversUsed >= 1 },
		},

		// ── Levels ─────────────────────────────────────────────────────
		{
			ID: "level_5", Name: "Halfway Home", Category: CatLevels, Icon: "⭐",
			Predicate: func(s Stats) bool { return s.Level >= 5 },
		},
		{
			ID: "level_max", Name: "Top of the Cart", Category: CatLevels, Icon: "👑",
			Predicate: func(s Stats) bool { return s.Level >= progression.MaxLevel },
		},

		// ── Collection ─────────────────────────────────────────────────
		{
			ID: "first_item", Name: "First Find", Category: CatCollection, Icon: "🎁",
			Predicate: func(s Stats) bool { return s.ItemsOwned >= 1 },
		},
		{
			ID: "items_5", Name: "Collector", Category: CatCollection, Icon: "📦",
			Predicate: func(s Stats) bool { return s.ItemsOwned >= 5 },
		},
		{
			ID: "premium_item", Name: "Lucky Draw", Category: CatCollection, Icon: "🍀",
			Predicate: func(s Stats) bool { return s.PremiumOwned >= 1 },
		},
	}
}

var defs = All()

// Lookup returns the definition with the given ID.
func Lookup(id string) (Def, bool) {
	i := slices.IndexFunc(defs, func(d Def) bool { return d.ID == id })
	if i < 0 {
		return Def{}, false
	}
	return defs[i], true
}

// Check returns the achievements whose predicate holds and that are not
// yet in unlocked, in catalog order.
func Check(stats Stats, unlocked map[string]bool) []Def {
	var out []Def
	for _, d := range defs {
		if unlocked[d.ID] || d.Predicate == nil {
			continue
		}
		if d.Predicate(stats) {
			out = append(out, d)
		}
	}
	return out
}
