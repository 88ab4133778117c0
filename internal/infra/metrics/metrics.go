// Package metrics provides Prometheus metrics for CartQuest.
// Counters and gauges for trip settlement, the item economy, reward draws,
// leaderboard runs, and snapshot persistence.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Trips ──────────────────────────────────────────────────────────────────

// TripsSettled counts settlements by outcome
// (under_budget, no_budget, saver_used, streak_broken). A trip is counted
// once, when it is applied to the profile.
var TripsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "trips_settled_total",
	Help:      "Total trip settlements by outcome.",
}, []string{"outcome"})

// StreakDecisionsPending counts overspent trips held for a streak saver
// decision.
var StreakDecisionsPending = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "streak_decisions_pending_total",
	Help:      "Total overspent trips held for a streak saver decision.",
})

// XPAwarded tracks XP granted by trip settlements.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded for savings.",
})

// ─── Progression ────────────────────────────────────────────────────────────

// Level tracks the current level of the active profile.
var Level = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cartquest",
	Name:      "level",
	Help:      "Current level of the active profile.",
})

// Streak tracks the current streak of the active profile.
var Streak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "cartquest",
	Name:      "streak",
	Help:      "Current streak of the active profile.",
})

// ─── Economy ────────────────────────────────────────────────────────────────

// Purchases counts item purchases by result (ok, insufficient_funds, ...).
var Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "purchases_total",
	Help:      "Total item purchase attempts by result.",
}, []string{"result"})

// LootboxDraws counts reward draws by rarity and whether the item was
// already owned.
var LootboxDraws = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "lootbox_draws_total",
	Help:      "Total reward draws by rarity.",
}, []string{"rarity", "duplicate"})

// AchievementsUnlocked counts badges earned.
var AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
})

// ─── Leaderboard ────────────────────────────────────────────────────────────

// LeaderboardRankings counts ranking passes.
var LeaderboardRankings = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "leaderboard_rankings_total",
	Help:      "Total leaderboard ranking passes.",
})

// LeaderboardDisqualified counts entrants excluded by the budget floor.
var LeaderboardDisqualified = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "leaderboard_disqualified_total",
	Help:      "Total entrants excluded by the minimum weekly budget.",
})

// RecordRanking counts one ranking pass and the entrants it excluded.
func RecordRanking(disqualified int) {
	LeaderboardRankings.Inc()
	LeaderboardDisqualified.Add(float64(disqualified))
}

// ─── Persistence ────────────────────────────────────────────────────────────

// SnapshotSaves counts successful snapshot saves.
var SnapshotSaves = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "snapshot_saves_total",
	Help:      "Total successful snapshot saves.",
})

// SnapshotSaveFailures counts snapshot saves that failed and were dropped.
var SnapshotSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "snapshot_save_failures_total",
	Help:      "Total snapshot saves that failed.",
})

// SnapshotLoadFallbacks counts startups that fell back to the default state
// because the stored snapshot was malformed.
var SnapshotLoadFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cartquest",
	Name:      "snapshot_load_fallbacks_total",
	Help:      "Total snapshot loads that fell back to defaults.",
})
