package store

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/app/achievement"
	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/domain"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// Snapshot is the full persisted state as one JSON document. Level,
// progress and weekly totals are derived on read and never stored.
type Snapshot struct {
	Version         int                          `json:"version"`
	Progression     domain.ProgressionState      `json:"progression"`
	LifetimeSavings decimal.Decimal              `json:"lifetime_savings"`
	Owned           []string                     `json:"owned"`
	Equipped        domain.EquippedItems         `json:"equipped"`
	History         []domain.HistoryEntry        `json:"history"`
	SavedLists      []domain.SavedList           `json:"saved_lists"`
	ActiveList      domain.ActiveList            `json:"active_list"`
	Preferences     domain.Preferences           `json:"preferences"`
	Achievements    []domain.UnlockedAchievement `json:"achievements"`
}

// DefaultSnapshot is the state of a fresh profile: zero XP, no streak,
// no savers, nothing owned, default preferences.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Version:         SnapshotVersion,
		LifetimeSavings: decimal.Zero,
		Owned:           []string{},
		Equipped:        domain.EquippedItems{},
		History:         []domain.HistoryEntry{},
		SavedLists:      []domain.SavedList{},
		Preferences:     domain.DefaultPreferences(),
		Achievements:    []domain.UnlockedAchievement{},
	}
}

// Marshal encodes the snapshot.
func (s Snapshot) Marshal() ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes and normalizes a stored snapshot. Undecodable
// data and unknown versions return ErrSnapshotMalformed.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", domain.ErrSnapshotMalformed, err)
	}
	if s.Version < 1 || s.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", domain.ErrSnapshotMalformed, s.Version)
	}
	return s.Normalize(), nil
}

// Normalize re-establishes the state invariants: counters are
// non-negative, owned IDs are unique, every equipped ID is owned and
// sits in the slot matching its type, and achievements are known and
// unique.
func (s Snapshot) Normalize() Snapshot {
	s.Version = SnapshotVersion
	s.Progression = s.Progression.Normalize()
	if s.LifetimeSavings.IsNegative() {
		s.LifetimeSavings = decimal.Zero
	}

	owned := make(map[string]bool, len(s.Owned))
	ids := make([]string, 0, len(s.Owned))
	for _, id := range s.Owned {
		if id == "" || owned[id] {
			continue
		}
		owned[id] = true
		ids = append(ids, id)
	}
	slices.Sort(ids)
	s.Owned = ids

	equipped := domain.EquippedItems{}
	for slot, id := range s.Equipped {
		if !owned[id] {
			continue
		}
		if item, ok := catalog.Lookup(id); ok && item.Type != slot {
			continue
		}
		equipped[slot] = id
	}
	s.Equipped = equipped

	if s.History == nil {
		s.History = []domain.HistoryEntry{}
	}
	if s.SavedLists == nil {
		s.SavedLists = []domain.SavedList{}
	}

	unlocked := make(map[string]bool, len(s.Achievements))
	achievements := make([]domain.UnlockedAchievement, 0, len(s.Achievements))
	for _, a := range s.Achievements {
		if _, ok := achievement.Lookup(a.ID); !ok || unlocked[a.ID] {
			continue
		}
		unlocked[a.ID] = true
		achievements = append(achievements, a)
	}
	s.Achievements = achievements

	defaults := domain.DefaultPreferences()
	if s.Preferences.Budget.IsNegative() {
		s.Preferences.Budget = decimal.Zero
	}
	if !s.Preferences.DefaultTransport.Valid() {
		s.Preferences.DefaultTransport = defaults.DefaultTransport
	}
	if s.Preferences.Currency == "" {
		s.Preferences.Currency = defaults.Currency
	}
	return s
}
