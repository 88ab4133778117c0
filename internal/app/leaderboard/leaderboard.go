// Package leaderboard ranks users by a fairness-adjusted weekly score so
// that users with very different budgets compete on equal terms.
//
//	score = savingsRate × 0.7 + consistency × 0.3
//
// Ranking is a pure batch computation over a read-only roster and is
// recomputed from scratch on every call.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/domain"
)

// Policy holds the ranking constants.
type Policy struct {
	// MinWeeklyBudget is the qualifying floor. Entrants below it are
	// disqualified.
	MinWeeklyBudget   decimal.Decimal
	SavingsWeight     float64
	ConsistencyWeight float64
}

// DefaultPolicy returns the standard $20 floor with a 70/30 weighting.
func DefaultPolicy() Policy {
	return Policy{
		MinWeeklyBudget:   decimal.NewFromInt(20),
		SavingsWeight:     0.7,
		ConsistencyWeight: 0.3,
	}
}

// Board is the result of a ranking pass. Ranked holds qualified entrants in
// rank order; Disqualified holds the rest with a zero score and rank 0.
type Board struct {
	Ranked       []domain.RankedEntrant `json:"ranked"`
	Disqualified []domain.RankedEntrant `json:"disqualified"`
}

// Rank scores the roster with DefaultPolicy.
func Rank(roster []domain.LeaderboardEntrant) Board {
	return DefaultPolicy().Rank(roster)
}

// Rank scores and orders the roster. It never fails; an empty or fully
// disqualified roster yields an empty Ranked list.
func (p Policy) Rank(roster []domain.LeaderboardEntrant) Board {
	board := Board{
		Ranked:       make([]domain.RankedEntrant, 0, len(roster)),
		Disqualified: make([]domain.RankedEntrant, 0),
	}

	type scored struct {
		domain.RankedEntrant
		key decimal.Decimal
	}
	qualified := make([]scored, 0, len(roster))
	for _, e := range roster {
		if !p.Qualifies(e) {
			board.Disqualified = append(board.Disqualified, domain.RankedEntrant{LeaderboardEntrant: e})
			continue
		}
		key := p.score(e)
		f, _ := key.Float64()
		qualified = append(qualified, scored{
			RankedEntrant: domain.RankedEntrant{
				LeaderboardEntrant: e,
				SavingsRate:        SavingsRate(e),
				Consistency:        Consistency(e),
				Score:              f,
				Qualified:          true,
			},
			key: key,
		})
	}

	// Ties fall back to the longer streak, then the username, so the order
	// is stable across calls.
	slices.SortStableFunc(qualified, func(a, b scored) int {
		if c := b.key.Cmp(a.key); c != 0 {
			return c
		}
		if c := cmp.Compare(b.CurrentStreak, a.CurrentStreak); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	for _, q := range qualified {
		board.Ranked = append(board.Ranked, q.RankedEntrant)
	}
	for i := range board.Ranked {
		board.Ranked[i].Rank = i + 1
	}
	return board
}

// scorePlaces is the precision scores are compared at.
const scorePlaces = 9

// score computes the weighted score exactly and rounds it to scorePlaces,
// so equal scores compare equal whatever mix of savings and consistency
// produced them.
func (p Policy) score(e domain.LeaderboardEntrant) decimal.Decimal {
	return savingsRate(e).Mul(decimal.NewFromFloat(p.SavingsWeight)).
		Add(consistency(e).Mul(decimal.NewFromFloat(p.ConsistencyWeight))).
		Round(scorePlaces)
}

// Qualifies reports whether e meets the minimum weekly budget.
func (p Policy) Qualifies(e domain.LeaderboardEntrant) bool {
	return !e.WeeklyBudget.LessThan(p.MinWeeklyBudget) && e.WeeklyBudget.IsPositive()
}

// SavingsRate is (budget − spend) / budget, floored at 0.
func SavingsRate(e domain.LeaderboardEntrant) float64 {
	f, _ := savingsRate(e).Float64()
	return f
}

func savingsRate(e domain.LeaderboardEntrant) decimal.Decimal {
	if !e.WeeklyBudget.IsPositive() {
		return decimal.Zero
	}
	rate := e.WeeklyBudget.Sub(e.WeeklySpend).Div(e.WeeklyBudget)
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

// Consistency is the share of days spent under budget, in [0, 1].
func Consistency(e domain.LeaderboardEntrant) float64 {
	f, _ := consistency(e).Float64()
	return f
}

func consistency(e domain.LeaderboardEntrant) decimal.Decimal {
	if e.TotalDays <= 0 || e.DaysUnderBudget <= 0 {
		return decimal.Zero
	}
	if e.DaysUnderBudget >= e.TotalDays {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(e.DaysUnderBudget)).Div(decimal.NewFromInt(int64(e.TotalDays)))
}
