// Package settlement finalizes a shopping trip against a budget.
//
// Settling is a small state machine: a trip is Pending until Evaluate runs.
// Under budget (or with no budget set) it is Settled immediately. Over budget
// with no streak savers it is Settled with the streak broken. Over budget with
// savers available it is AwaitingDecision, and Resolve settles it once the
// user picks DecisionUseSaver or DecisionBreakStreak. Nothing here mutates
// shared state; callers apply the returned Outcome.
package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/app/progression"
	"github.com/cartquest/cartquest/internal/domain"
)

// Status is where a trip sits in the settlement state machine.
type Status string

const (
	StatusSettled          Status = "settled"
	StatusAwaitingDecision Status = "awaiting_decision"
)

// Decision resolves an over-budget trip while streak savers are available.
type Decision string

const (
	DecisionUseSaver    Decision = "use_saver"
	DecisionBreakStreak Decision = "break_streak"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionUseSaver || d == DecisionBreakStreak
}

var hundred = decimal.NewFromInt(100)

// Result is the money and XP arithmetic of one trip.
type Result struct {
	FinalCost         decimal.Decimal `json:"final_cost"`
	Budget            decimal.Decimal `json:"budget"`
	BudgetDiff        decimal.Decimal `json:"budget_diff"`
	SavingsPercentage decimal.Decimal `json:"savings_percentage"`
	UnderBudget       bool            `json:"under_budget"`
	XPEarned          int64           `json:"xp_earned"`
}

// Savings is the amount added to the lifetime savings tracker: the budget
// difference, floored at zero.
func (r Result) Savings() decimal.Decimal {
	if r.BudgetDiff.IsNegative() {
		return decimal.Zero
	}
	return r.BudgetDiff
}

// Compute applies the savings formula. XP equals the rounded savings
// percentage, so "10% saved" always reads as "+10 XP". A zero budget means
// no budget is set and no XP is awarded.
func Compute(finalCost, budget decimal.Decimal) (Result, error) {
	if finalCost.IsNegative() {
		return Result{}, fmt.Errorf("final cost %s: %w", finalCost, domain.ErrInvalidAmount)
	}
	if budget.IsNegative() {
		return Result{}, fmt.Errorf("budget %s: %w", budget, domain.ErrInvalidAmount)
	}

	r := Result{
		FinalCost:         finalCost,
		Budget:            budget,
		BudgetDiff:        budget.Sub(finalCost),
		SavingsPercentage: decimal.Zero,
	}
	if !budget.IsPositive() {
		return r, nil
	}

	r.UnderBudget = finalCost.LessThanOrEqual(budget)
	pct := r.BudgetDiff.Div(budget).Mul(hundred)
	if pct.IsPositive() {
		r.SavingsPercentage = pct
	}
	if r.UnderBudget {
		r.XPEarned = r.SavingsPercentage.Round(0).IntPart()
	}
	return r, nil
}

// Trip is the input of a settlement. ID and Timestamp are assigned by the
// caller.
type Trip struct {
	ID            string
	Timestamp     time.Time
	Items         []domain.ListItem
	TransportMode domain.TransportMode
	TransportCost decimal.Decimal
	CostOverride  *decimal.Decimal
	StoreName     string
}

// FinalCost returns the override when set, otherwise the priced items plus
// the transport cost.
func (t Trip) FinalCost() (decimal.Decimal, error) {
	if t.CostOverride != nil {
		if t.CostOverride.IsNegative() {
			return decimal.Zero, fmt.Errorf("cost override %s: %w", t.CostOverride, domain.ErrInvalidAmount)
		}
		return *t.CostOverride, nil
	}
	if t.TransportCost.IsNegative() {
		return decimal.Zero, fmt.Errorf("transport cost %s: %w", t.TransportCost, domain.ErrInvalidAmount)
	}
	for _, it := range t.Items {
		if it.Price != nil && it.Price.IsNegative() {
			return decimal.Zero, fmt.Errorf("price of %q: %w", it.Name, domain.ErrInvalidAmount)
		}
	}
	return domain.ItemsTotal(t.Items).Add(t.TransportCost), nil
}

// Draft is a trip held in AwaitingDecision. Its entry already carries the
// over-budget XP (always 0).
type Draft struct {
	Entry  domain.HistoryEntry `json:"entry"`
	Result Result              `json:"result"`
}

// Outcome is the tagged result of Evaluate or Resolve. When Status is
// StatusSettled, Entry is set and State is the new progression state. When
// Status is StatusAwaitingDecision, Draft is set and State is unchanged.
type Outcome struct {
	Status          Status                  `json:"status"`
	Result          Result                  `json:"result"`
	State           domain.ProgressionState `json:"state"`
	Entry           *domain.HistoryEntry    `json:"entry,omitempty"`
	Draft           *Draft                  `json:"draft,omitempty"`
	StreakSaverUsed bool                    `json:"streak_saver_used"`
	LeveledUp       bool                    `json:"leveled_up"`
}

// Settled reports whether the outcome is terminal.
func (o Outcome) Settled() bool { return o.Status == StatusSettled }

// Evaluate settles trip against budget for the given state.
func Evaluate(state domain.ProgressionState, trip Trip, budget decimal.Decimal) (Outcome, error) {
	if trip.TransportMode != "" && !trip.TransportMode.Valid() {
		return Outcome{}, fmt.Errorf("%q: %w", trip.TransportMode, domain.ErrInvalidTransport)
	}
	cost, err := trip.FinalCost()
	if err != nil {
		return Outcome{}, err
	}
	res, err := Compute(cost, budget)
	if err != nil {
		return Outcome{}, err
	}

	entry := domain.HistoryEntry{
		ID:            trip.ID,
		Timestamp:     trip.Timestamp,
		Items:         trip.Items,
		TotalSpent:    cost,
		Budget:        budget,
		Savings:       res.Savings(),
		XPEarned:      res.XPEarned,
		TransportMode: trip.TransportMode,
		StoreName:     trip.StoreName,
	}
	state = state.Normalize()

	switch {
	case res.UnderBudget || budget.IsZero():
		next := state
		next.Streak++
		next.XP += res.XPEarned
		return settled(state, next, res, entry, false), nil

	case state.StreakSavers > 0:
		return Outcome{
			Status: StatusAwaitingDecision,
			Result: res,
			State:  state,
			Draft:  &Draft{Entry: entry, Result: res},
		}, nil

	default:
		next := state
		next.Streak = 0
		return settled(state, next, res, entry, false), nil
	}
}

// Resolve settles a draft that was awaiting a streak decision.
func Resolve(state domain.ProgressionState, draft Draft, decision Decision) (Outcome, error) {
	if !decision.Valid() {
		return Outcome{}, fmt.Errorf("%q: %w", decision, domain.ErrInvalidDecision)
	}
	state = state.Normalize()
	next := state
	entry := draft.Entry
	used := false

	switch decision {
	case DecisionUseSaver:
		if state.StreakSavers <= 0 {
			return Outcome{}, fmt.Errorf("no streak savers left: %w", domain.ErrInsufficientFunds)
		}
		next.StreakSavers--
		entry.StreakSaverUsed = true
		used = true
	case DecisionBreakStreak:
		next.Streak = 0
	}
	next.XP += entry.XPEarned
	return settled(state, next, draft.Result, entry, used), nil
}

func settled(prev, next domain.ProgressionState, res Result, entry domain.HistoryEntry, saverUsed bool) Outcome {
	return Outcome{
		Status:          StatusSettled,
		Result:          res,
		State:           next,
		Entry:           &entry,
		StreakSaverUsed: saverUsed,
		LeveledUp:       progression.LevelForXP(next.XP) > progression.LevelForXP(prev.XP),
	}
}
