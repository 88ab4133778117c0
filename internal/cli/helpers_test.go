package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/app/settlement"
	"github.com/cartquest/cartquest/internal/domain"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		qty   int
		price string // empty means unpriced
	}{
		{"milk", "milk", 1, ""},
		{"eggs:12", "eggs", 12, ""},
		{"bread:1:3.10", "bread", 1, "3.10"},
		{"apples::0.99", "apples", 1, "0.99"},
		{"cheese:2:$4.50", "cheese", 2, "4.50"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			it, err := parseItem(tt.in)
			if err != nil {
				t.Fatalf("parseItem(%q) error: %v", tt.in, err)
			}
			if it.Name != tt.name || it.Quantity != tt.qty {
				t.Errorf("parseItem(%q) = %s×%d, want %s×%d", tt.in, it.Name, it.Quantity, tt.name, tt.qty)
			}
			if tt.price == "" {
				if it.Price != nil {
					t.Errorf("price = %s, want unpriced", it.Price)
				}
				return
			}
			if it.Price == nil || !it.Price.Equal(decimal.RequireFromString(tt.price)) {
				t.Errorf("price = %v, want %s", it.Price, tt.price)
			}
		})
	}
}

func TestParseItem_Invalid(t *testing.T) {
	for _, in := range []string{"", ":2", "milk:0", "milk:two", "milk:1:-2", "milk:1:abc", "a:1:2:3"} {
		if _, err := parseItem(in); err == nil {
			t.Errorf("parseItem(%q) should fail", in)
		}
	}
}

func TestParseItems_NoneMeansActiveList(t *testing.T) {
	items, err := parseItems(nil)
	if err != nil {
		t.Fatal(err)
	}
	if items != nil {
		t.Errorf("parseItems(nil) = %v, want nil", items)
	}

	items, err = parseItems([]string{"milk", "bread"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "2" {
		t.Errorf("items = %+v", items)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount(" $12.50 ")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount = %s", d)
	}
	if _, err := parseAmount("-1"); err == nil {
		t.Error("negative amount should fail")
	}
	if _, err := parseAmount("lots"); err == nil {
		t.Error("non-numeric amount should fail")
	}
}

const sampleRoster = `
entrants:
  - username: ana
    weekly_budget: 120
    weekly_spend: 96.40
    days_under_budget: 5
    total_days: 7
    current_streak: 9
  - username: ben
    weekly_budget: "15"
    weekly_spend: 3
    days_under_budget: 7
    total_days: 7
    rank_change: -2
`

func TestParseRoster(t *testing.T) {
	roster, err := parseRoster([]byte(sampleRoster))
	if err != nil {
		t.Fatalf("parseRoster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("len = %d, want 2", len(roster))
	}
	ana := roster[0]
	if ana.Username != "ana" || ana.CurrentStreak != 9 || ana.DaysUnderBudget != 5 || ana.TotalDays != 7 {
		t.Errorf("ana = %+v", ana)
	}
	if !ana.WeeklySpend.Equal(decimal.RequireFromString("96.40")) {
		t.Errorf("ana spend = %s, want 96.40", ana.WeeklySpend)
	}
	if !roster[1].WeeklyBudget.Equal(decimal.NewFromInt(15)) || roster[1].RankChange != -2 {
		t.Errorf("ben = %+v", roster[1])
	}
}

func TestParseRoster_Errors(t *testing.T) {
	cases := map[string]string{
		"missing username": "entrants:\n  - weekly_budget: 10\n",
		"bad amount":       "entrants:\n  - username: x\n    weekly_budget: ten\n",
		"not yaml":         "entrants: [",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseRoster([]byte(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(sampleRoster), 0o644); err != nil {
		t.Fatal(err)
	}
	roster, err := loadRoster(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 {
		t.Errorf("len = %d", len(roster))
	}

	if _, err := loadRoster(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestOverspendDecider(t *testing.T) {
	tests := []struct {
		mode  string
		input string
		want  settlement.Decision
	}{
		{"use-saver", "", settlement.DecisionUseSaver},
		{"break-streak", "", settlement.DecisionBreakStreak},
		{"ask", "y\n", settlement.DecisionUseSaver},
		{"ask", "YES\n", settlement.DecisionUseSaver},
		{"ask", "n\n", settlement.DecisionBreakStreak},
		{"ask", "", settlement.DecisionBreakStreak},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			decide, err := overspendDecider(tt.mode, strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatal(err)
			}
			got, err := decide(2)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("decision = %s, want %s", got, tt.want)
			}
			if tt.mode == "ask" && !strings.Contains(out.String(), "2 left") {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}

	if _, err := overspendDecider("sometimes", nil, nil); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestLevelBar(t *testing.T) {
	if got := levelBar(0); strings.Count(got, "█") != 0 || strings.Count(got, "░") != barWidth {
		t.Errorf("levelBar(0) = %s", got)
	}
	if got := levelBar(100); strings.Count(got, "█") != barWidth {
		t.Errorf("levelBar(100) = %s", got)
	}
	if got := levelBar(50); strings.Count(got, "█") != barWidth/2 {
		t.Errorf("levelBar(50) = %s", got)
	}
	if got := levelBar(150); strings.Count(got, "█") != barWidth {
		t.Errorf("levelBar(150) should clamp, got %s", got)
	}
}

func TestParseItem_LineTotal(t *testing.T) {
	it, err := parseItem("milk:2:1.25")
	if err != nil {
		t.Fatal(err)
	}
	if got := domain.ItemsTotal([]domain.ListItem{it}); !got.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("total = %s, want 2.50", got)
	}
}
