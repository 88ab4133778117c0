package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cartquest/cartquest/internal/domain"
)

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// parseAmount parses a money amount such as "42" or "12.50".
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: %w", s, domain.ErrInvalidAmount)
	}
	return d, nil
}

// parseItem parses a list item written as name[:qty[:price]].
//
//	milk          one unpriced milk
//	eggs:2        two unpriced eggs
//	bread:1:3.10  one bread at 3.10
func parseItem(s string) (domain.ListItem, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return domain.ListItem{}, fmt.Errorf("invalid item %q: want name[:qty[:price]]", s)
	}
	it := domain.ListItem{Name: strings.TrimSpace(parts[0]), Quantity: 1}
	if it.Name == "" {
		return domain.ListItem{}, fmt.Errorf("invalid item %q: empty name", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		q, err := strconv.Atoi(parts[1])
		if err != nil || q < 1 {
			return domain.ListItem{}, fmt.Errorf("invalid quantity in %q", s)
		}
		it.Quantity = q
	}
	if len(parts) > 2 && parts[2] != "" {
		p, err := parseAmount(parts[2])
		if err != nil {
			return domain.ListItem{}, fmt.Errorf("item %q: %w", it.Name, err)
		}
		it.Price = &p
	}
	return it, nil
}

// parseItems parses every --item flag. It returns nil when no flag was
// given, which selects the active list.
func parseItems(specs []string) ([]domain.ListItem, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	items := make([]domain.ListItem, 0, len(specs))
	for i, s := range specs {
		it, err := parseItem(s)
		if err != nil {
			return nil, err
		}
		it.ID = strconv.Itoa(i + 1)
		items = append(items, it)
	}
	return items, nil
}

// ─── Roster Files ───────────────────────────────────────────────────────────

// rosterFile is the on-disk shape of a leaderboard roster.
//
//	entrants:
//	  - username: ana
//	    weekly_budget: 120
//	    weekly_spend: 96.40
//	    days_under_budget: 5
//	    total_days: 7
//	    current_streak: 9
type rosterFile struct {
	Entrants []rosterEntrant `yaml:"entrants"`
}

type rosterEntrant struct {
	Username        string `yaml:"username"`
	WeeklyBudget    string `yaml:"weekly_budget"`
	WeeklySpend     string `yaml:"weekly_spend"`
	DaysUnderBudget int    `yaml:"days_under_budget"`
	TotalDays       int    `yaml:"total_days"`
	CurrentStreak   int    `yaml:"current_streak"`
	RankChange      int    `yaml:"rank_change"`
}

// parseRoster decodes a YAML roster. Amounts are parsed from their literal
// text, so 96.40 stays exactly 96.40.
func parseRoster(data []byte) ([]domain.LeaderboardEntrant, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	out := make([]domain.LeaderboardEntrant, 0, len(f.Entrants))
	for i, e := range f.Entrants {
		if e.Username == "" {
			return nil, fmt.Errorf("roster entry %d: missing username", i+1)
		}
		budget, err := rosterAmount(e.WeeklyBudget)
		if err != nil {
			return nil, fmt.Errorf("roster entry %q: weekly_budget: %w", e.Username, err)
		}
		spend, err := rosterAmount(e.WeeklySpend)
		if err != nil {
			return nil, fmt.Errorf("roster entry %q: weekly_spend: %w", e.Username, err)
		}
		out = append(out, domain.LeaderboardEntrant{
			Username:        e.Username,
			WeeklyBudget:    budget,
			WeeklySpend:     spend,
			DaysUnderBudget: e.DaysUnderBudget,
			TotalDays:       e.TotalDays,
			CurrentStreak:   e.CurrentStreak,
			RankChange:      e.RankChange,
		})
	}
	return out, nil
}

func rosterAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// loadRoster reads a roster file.
func loadRoster(path string) ([]domain.LeaderboardEntrant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return parseRoster(data)
}
