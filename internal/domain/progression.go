// Package domain holds the shared types of the CartQuest rewards engine.
// The engine turns grocery savings into XP, levels, streaks, a cosmetic
// item economy, and a fairness-adjusted leaderboard.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Progression ────────────────────────────────────────────────────────────

// ProgressionState is the stored part of a user's progression.
// Level and progress are derived from XP on every read and never stored.
type ProgressionState struct {
	XP           int64 `json:"xp"`
	Streak       int   `json:"streak"`
	StreakSavers int   `json:"streak_savers"`
}

// Normalize clamps every counter to be non-negative.
func (s ProgressionState) Normalize() ProgressionState {
	if s.XP < 0 {
		s.XP = 0
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.StreakSavers < 0 {
		s.StreakSavers = 0
	}
	return s
}

// ─── Trips ──────────────────────────────────────────────────────────────────

// TransportMode is how the user got to the store.
type TransportMode string

const (
	TransportWalk     TransportMode = "walk"
	TransportBike     TransportMode = "bike"
	TransportTransit  TransportMode = "transit"
	TransportCar      TransportMode = "car"
	TransportDelivery TransportMode = "delivery"
)

// Valid reports whether m is a known transport mode.
func (m TransportMode) Valid() bool {
	switch m {
	case TransportWalk, TransportBike, TransportTransit, TransportCar, TransportDelivery:
		return true
	}
	return false
}

// ListItem is one line of a shopping list as produced by the list editor.
// Price is optional; items without a price do not count toward the total.
type ListItem struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// LineTotal returns price × quantity. A quantity below 1 counts as 1.
func (i ListItem) LineTotal() decimal.Decimal {
	if i.Price == nil {
		return decimal.Zero
	}
	qty := i.Quantity
	if qty < 1 {
		qty = 1
	}
	return i.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// ItemsTotal sums the line totals of items.
func ItemsTotal(items []ListItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// HistoryEntry records one submitted trip. Entries are immutable once
// created; deleting one does not touch XP already granted.
type HistoryEntry struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	Items           []ListItem      `json:"items"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Budget          decimal.Decimal `json:"budget"`
	Savings         decimal.Decimal `json:"savings"`
	XPEarned        int64           `json:"xp_earned"`
	TransportMode   TransportMode   `json:"transport_mode"`
	StoreName       string          `json:"store_name"`
	StreakSaverUsed bool            `json:"streak_saver_used,omitempty"`
}

// SavedList is a trip snapshot waiting to be submitted.
type SavedList struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	Items         []ListItem       `json:"items"`
	Summary       string           `json:"summary,omitempty"`
	TransportMode TransportMode    `json:"transport_mode"`
	TransportCost decimal.Decimal  `json:"transport_cost"`
	CostOverride  *decimal.Decimal `json:"cost_override,omitempty"`
	Budget        *decimal.Decimal `json:"budget,omitempty"`
	StoreName     string           `json:"store_name"`
}

// ActiveList is the shopping list currently being edited.
type ActiveList struct {
	Items   []ListItem `json:"items"`
	Summary string     `json:"summary,omitempty"`
}

// Preferences are the user's persisted settings.
type Preferences struct {
	Budget           decimal.Decimal `json:"budget"`
	DefaultTransport TransportMode   `json:"default_transport"`
	DefaultStore     string          `json:"default_store"`
	Currency         string          `json:"currency"`
}

// DefaultPreferences returns the settings of a fresh profile: no budget,
// so no gamification applies until the user sets one.
func DefaultPreferences() Preferences {
	return Preferences{
		Budget:           decimal.Zero,
		DefaultTransport: TransportWalk,
		Currency:         "USD",
	}
}
