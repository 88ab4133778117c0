package domain

import "github.com/shopspring/decimal"

// LeaderboardEntrant is one user's weekly numbers. It is read-only input to
// the ranker.
type LeaderboardEntrant struct {
	Username        string          `json:"username"`
	WeeklyBudget    decimal.Decimal `json:"weekly_budget"`
	WeeklySpend     decimal.Decimal `json:"weekly_spend"`
	DaysUnderBudget int             `json:"days_under_budget"`
	TotalDays       int             `json:"total_days"`
	CurrentStreak   int             `json:"current_streak"`
	RankChange      int             `json:"rank_change"`
}

// RankedEntrant is an entrant with its computed score. Rank is 0 for
// disqualified entrants.
type RankedEntrant struct {
	LeaderboardEntrant
	SavingsRate float64 `json:"savings_rate"`
	Consistency float64 `json:"consistency"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	Qualified   bool    `json:"qualified"`
}
