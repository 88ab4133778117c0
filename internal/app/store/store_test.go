package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/app/lootbox"
	"github.com/cartquest/cartquest/internal/app/settlement"
	"github.com/cartquest/cartquest/internal/app/store"
	"github.com/cartquest/cartquest/internal/domain"
	"github.com/cartquest/cartquest/internal/infra/metrics"
)

// memPersister keeps the last saved snapshot in memory.
type memPersister struct {
	data    []byte
	saves   int
	saveErr error
	loadErr error
}

func (m *memPersister) Save(_ context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memPersister) Load(context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

type fixedSource struct {
	r float64
	n int
}

func (f fixedSource) Float64() float64 { return f.r }
func (f fixedSource) IntN(int) int     { return f.n }

var testNow = time.Date(2025, 7, 9, 18, 30, 0, 0, time.UTC) // Wednesday

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestStore(t *testing.T, p store.Persister, opts ...store.Option) *store.Store {
	t.Helper()
	base := []store.Option{
		store.WithClock(func() time.Time { return testNow }),
		store.WithIDFunc(sequentialIDs()),
		store.WithSource(fixedSource{r: 0.5}),
	}
	s, err := store.Open(context.Background(), p, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// seeded returns a persister holding a snapshot with the given progression.
func seeded(t *testing.T, state domain.ProgressionState, budget string) *memPersister {
	t.Helper()
	snap := store.DefaultSnapshot()
	snap.Progression = state
	snap.Preferences.Budget = dec(budget)
	data, err := snap.Marshal()
	require.NoError(t, err)
	return &memPersister{data: data}
}

// ─── Startup ────────────────────────────────────────────────────────────────

func TestOpen_AbsentSnapshotUsesDefaults(t *testing.T) {
	s := newTestStore(t, &memPersister{})
	v := s.Get()

	assert.Equal(t, domain.ProgressionState{}, v.ProgressionState)
	assert.Equal(t, 1, v.Level)
	assert.Empty(t, v.History)
	assert.Empty(t, v.Owned)
	assert.True(t, v.Preferences.Budget.IsZero())
	assert.Equal(t, domain.TransportWalk, v.Preferences.DefaultTransport)
}

func TestOpen_MalformedSnapshotUsesDefaults(t *testing.T) {
	for name, data := range map[string]string{
		"not json":        "{not json",
		"wrong shape":     `{"version":1,"progression":"lots"}`,
		"future version":  `{"version":99,"progression":{"xp":500}}`,
		"missing version": `{"progression":{"xp":500}}`,
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, &memPersister{data: []byte(data)})
			assert.Equal(t, int64(0), s.Get().XP)
		})
	}
}

func TestOpen_LoadErrorUsesDefaults(t *testing.T) {
	s := newTestStore(t, &memPersister{loadErr: errors.New("disk on fire")})
	assert.Equal(t, int64(0), s.Get().XP)
}

func TestOpen_InvalidTable(t *testing.T) {
	_, err := store.Open(context.Background(), nil, store.WithTable(lootbox.Table{}))
	assert.ErrorIs(t, err, lootbox.ErrInvalidTable)
}

func TestRoundTrip(t *testing.T) {
	p := seeded(t, domain.ProgressionState{XP: 140, Streak: 2, StreakSavers: 1}, "100")
	s := newTestStore(t, p)

	_, err := s.SubmitTrip(context.Background(), store.TripInput{CostOverride: decPtr("75")})
	require.NoError(t, err)
	_, err = s.Purchase(context.Background(), "hat-beanie")
	require.NoError(t, err)
	require.NoError(t, s.Equip(context.Background(), "hat-beanie"))

	before := s.Get()
	restored := newTestStore(t, p)
	after := restored.Get()

	assert.Equal(t, before.ProgressionState, after.ProgressionState)
	assert.Equal(t, before.Level, after.Level)
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, before.Owned, after.Owned)
	assert.Equal(t, before.Equipped, after.Equipped)
	require.Len(t, after.History, 1)
	assert.Equal(t, "id-1", after.History[0].ID)
	assert.True(t, after.History[0].TotalSpent.Equal(dec("75")))
	assert.True(t, after.LifetimeSavings.Equal(dec("25")))
}

func TestSnapshot_DerivedFieldsNotStored(t *testing.T) {
	p := seeded(t, domain.ProgressionState{XP: 174}, "0")
	assert.NotContains(t, string(p.data), `"level"`)
	assert.NotContains(t, string(p.data), `"progress"`)
	assert.NotContains(t, string(p.data), `"weekly_xp"`)
}

func TestUnmarshalSnapshot_Normalizes(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"progression": {"xp": -40, "streak": -2, "streak_savers": 3},
		"owned": ["hat-chef", "hat-chef", "bg-market"],
		"equipped": {"hat": "hat-chef", "background": "bg-orchard", "outfit": "hat-chef"},
		"preferences": {"budget": "-5", "default_transport": "rocket"}
	}`)
	snap, err := store.UnmarshalSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, domain.ProgressionState{XP: 0, Streak: 0, StreakSavers: 3}, snap.Progression)
	assert.Equal(t, []string{"bg-market", "hat-chef"}, snap.Owned)
	assert.Equal(t, domain.EquippedItems{domain.ItemHat: "hat-chef"}, snap.Equipped)
	assert.True(t, snap.Preferences.Budget.IsZero())
	assert.Equal(t, domain.TransportWalk, snap.Preferences.DefaultTransport)
	assert.Equal(t, "USD", snap.Preferences.Currency)
	assert.NotNil(t, snap.History)
}

func TestUnmarshalSnapshot_Malformed(t *testing.T) {
	_, err := store.UnmarshalSnapshot([]byte("[]"))
	assert.ErrorIs(t, err, domain.ErrSnapshotMalformed)
}

// ─── Persistence ────────────────────────────────────────────────────────────

func TestSaveFailureIsSwallowed(t *testing.T) {
	p := seeded(t, domain.ProgressionState{XP: 10}, "100")
	s := newTestStore(t, p)
	p.saveErr = errors.New("quota exceeded")

	out, err := s.SubmitTrip(context.Background(), store.TripInput{CostOverride: decPtr("50")})
	require.NoError(t, err)
	assert.True(t, out.Settled())
	assert.Equal(t, int64(60), s.Get().XP, "in-memory state advances even when the save fails")
	assert.Error(t, s.LastSaveError())

	p.saveErr = nil
	_, err = s.SubmitTrip(context.Background(), store.TripInput{CostOverride: decPtr("90")})
	require.NoError(t, err)
	assert.Equal(t, 1, p.saves)
	assert.NoError(t, s.LastSaveError())
	assert.Equal(t, int64(70), newTestStore(t, p).Get().XP)
}

func TestEveryMutationSaves(t *testing.T) {
	p := seeded(t, domain.ProgressionState{XP: 1000}, "100")
	s := newTestStore(t, p)
	ctx := context.Background()

	require.NoError(t, s.SetActiveList(ctx, []domain.ListItem{{Name: "eggs", Quantity: 1}}, "eggs"))
	_, err := s.Purchase(ctx, "acc-tote")
	require.NoError(t, err)
	require.NoError(t, s.Equip(ctx, "acc-tote"))
	require.NoError(t, s.Unequip(ctx, domain.ItemAccessory))
	_, err = s.DrawLootbox(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetBudget(ctx, dec("80")))

	assert.Equal(t, 6, p.saves)
}

// ─── Trips ──────────────────────────────────────────────────────────────────

func TestSubmitTrip_UnderBudget(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 90, Streak: 3}, "100"))
	ctx := context.Background()
	price := dec("40")
	require.NoError(t, s.SetActiveList(ctx, []domain.ListItem{{Name: "rice", Quantity: 2, Price: &price}}, "rice x2"))

	out, err := s.SubmitTrip(ctx, store.TripInput{StoreName: "Corner Market"})
	require.NoError(t, err)

	assert.True(t, out.Settled())
	assert.Equal(t, int64(20), out.Entry.XPEarned)
	assert.True(t, out.LeveledUp)

	v := s.Get()
	assert.Equal(t, int64(110), v.XP)
	assert.Equal(t, 4, v.Streak)
	assert.Equal(t, 2, v.Level)
	assert.True(t, v.LifetimeSavings.Equal(dec("20")))
	assert.Empty(t, v.ActiveList.Items, "submitting clears the active list")
	require.Len(t, v.History, 1)
	assert.Len(t, v.History[0].Items, 1)
	assert.Equal(t, domain.TransportWalk, v.History[0].TransportMode)
	assert.Equal(t, testNow, v.History[0].Timestamp)
}

func TestSubmitTrip_OverBudgetNoSavers(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 300, Streak: 6}, "100"))

	out, err := s.SubmitTrip(context.Background(), store.TripInput{CostOverride: decPtr("120")})
	require.NoError(t, err)

	assert.True(t, out.Settled())
	v := s.Get()
	assert.Equal(t, 0, v.Streak)
	assert.Equal(t, int64(300), v.XP)
	assert.True(t, v.LifetimeSavings.IsZero())
}

func TestSubmitTrip_ExplicitBudgetOverridesPreference(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "0"))

	out, err := s.SubmitTrip(context.Background(), store.TripInput{
		CostOverride: decPtr("45"),
		Budget:       decPtr("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.Entry.XPEarned)
}

func TestSubmitTrip_InvalidInput(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{Streak: 2}, "100"))

	_, err := s.SubmitTrip(context.Background(), store.TripInput{CostOverride: decPtr("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = s.SubmitTrip(context.Background(), store.TripInput{TransportMode: "hovercraft"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransport)

	assert.Equal(t, 2, s.Get().Streak)
	assert.Empty(t, s.Get().History)
}

func TestStreakDecision_UseSaver(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 300, Streak: 6, StreakSavers: 1}, "100"))
	ctx := context.Background()

	out, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("120")})
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusAwaitingDecision, out.Status)

	v := s.Get()
	require.NotNil(t, v.Pending)
	assert.Empty(t, v.History)
	assert.Equal(t, 1, v.StreakSavers)

	_, err = s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("10")})
	assert.ErrorIs(t, err, domain.ErrDecisionPending)

	out, err = s.ResolveStreakDecision(ctx, settlement.DecisionUseSaver)
	require.NoError(t, err)
	assert.True(t, out.StreakSaverUsed)

	v = s.Get()
	assert.Nil(t, v.Pending)
	assert.Equal(t, 0, v.StreakSavers)
	assert.Equal(t, 6, v.Streak)
	assert.Equal(t, int64(300), v.XP)
	require.Len(t, v.History, 1)
	assert.Equal(t, int64(0), v.History[0].XPEarned)
	assert.True(t, v.History[0].StreakSaverUsed)
}

func TestStreakDecision_BreakStreak(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 300, Streak: 6, StreakSavers: 2}, "100"))
	ctx := context.Background()

	_, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("150")})
	require.NoError(t, err)
	_, err = s.ResolveStreakDecision(ctx, settlement.DecisionBreakStreak)
	require.NoError(t, err)

	v := s.Get()
	assert.Equal(t, 0, v.Streak)
	assert.Equal(t, 2, v.StreakSavers)
	assert.Len(t, v.History, 1)
}

func TestStreakDecision_InvalidKeepsPending(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{Streak: 6, StreakSavers: 1}, "100"))
	ctx := context.Background()

	_, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("150")})
	require.NoError(t, err)

	_, err = s.ResolveStreakDecision(ctx, "shrug")
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)
	assert.NotNil(t, s.Get().Pending)
}

func TestStreakDecision_NothingPending(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.ResolveStreakDecision(context.Background(), settlement.DecisionUseSaver)
	assert.ErrorIs(t, err, domain.ErrNoPendingDecision)
}

func settledTotal() float64 {
	var n float64
	for _, outcome := range []string{"under_budget", "no_budget", "saver_used", "streak_broken"} {
		n += testutil.ToFloat64(metrics.TripsSettled.WithLabelValues(outcome))
	}
	return n
}

func TestStreakDecision_SettlementCountedOnce(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{Streak: 6, StreakSavers: 1}, "100"))
	ctx := context.Background()
	settled := settledTotal()
	pending := testutil.ToFloat64(metrics.StreakDecisionsPending)

	out, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("120")})
	require.NoError(t, err)
	require.False(t, out.Settled())
	assert.Equal(t, settled, settledTotal(), "a held trip is not settled yet")
	assert.Equal(t, pending+1, testutil.ToFloat64(metrics.StreakDecisionsPending))

	_, err = s.ResolveStreakDecision(ctx, settlement.DecisionUseSaver)
	require.NoError(t, err)
	assert.Equal(t, settled+1, settledTotal())
	assert.Equal(t, pending+1, testutil.ToFloat64(metrics.StreakDecisionsPending))
}

// ─── Time Window ────────────────────────────────────────────────────────────

func TestGet_WeeklyTotalsUseClock(t *testing.T) {
	now := testNow.AddDate(0, 0, -8)
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "100"),
		store.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("70")})
	require.NoError(t, err)

	now = testNow
	_, err = s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("90")})
	require.NoError(t, err)

	v := s.Get()
	assert.Equal(t, int64(40), v.XP)
	assert.Equal(t, int64(10), v.WeeklyXP, "the trip 8 days ago belongs to last week")
	assert.True(t, v.WeeklySpend.Equal(dec("90")))
}

// ─── History ────────────────────────────────────────────────────────────────

func TestDeleteHistoryEntry_KeepsXP(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "100"))
	ctx := context.Background()

	out, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("60")})
	require.NoError(t, err)

	require.NoError(t, s.DeleteHistoryEntry(ctx, out.Entry.ID))
	v := s.Get()
	assert.Empty(t, v.History)
	assert.Equal(t, int64(40), v.XP)
	assert.True(t, v.LifetimeSavings.Equal(dec("40")))

	err = s.DeleteHistoryEntry(ctx, out.Entry.ID)
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

func TestHistory_NotSharedWithCallers(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "100"))
	ctx := context.Background()
	price := dec("30")
	items := []domain.ListItem{{Name: "bread", Quantity: 1, Price: &price}}

	out, err := s.SubmitTrip(ctx, store.TripInput{Items: items})
	require.NoError(t, err)

	items[0].Name = "cake"
	price = dec("999")
	out.Entry.Items[0].Name = "pie"
	*out.Entry.Items[0].Price = dec("1")
	v := s.Get()
	v.History[0].Items[0].Name = "tart"
	*v.History[0].Items[0].Price = dec("2")

	got := s.Get().History[0].Items[0]
	assert.Equal(t, "bread", got.Name)
	assert.True(t, got.Price.Equal(dec("30")))
}

func TestSavedList_NotSharedWithCallers(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	price := dec("4")
	cost := dec("20")

	list, err := s.SaveList(ctx, store.TripInput{
		Items:        []domain.ListItem{{Name: "apples", Quantity: 3, Price: &price}},
		CostOverride: &cost,
	})
	require.NoError(t, err)

	price = dec("400")
	cost = dec("2000")
	*list.Items[0].Price = dec("5")
	v := s.Get()
	v.SavedLists[0].Items[0].Name = "pears"
	*v.SavedLists[0].CostOverride = dec("1")

	got := s.Get().SavedLists[0]
	assert.Equal(t, "apples", got.Items[0].Name)
	assert.True(t, got.Items[0].Price.Equal(dec("4")))
	assert.True(t, got.CostOverride.Equal(dec("20")))
}

// ─── Saved Lists ────────────────────────────────────────────────────────────

func TestSavedList_SaveAndSubmit(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "100"))
	ctx := context.Background()
	price := dec("30")
	require.NoError(t, s.SetActiveList(ctx, []domain.ListItem{{Name: "coffee", Quantity: 2, Price: &price}}, "coffee"))

	list, err := s.SaveList(ctx, store.TripInput{TransportMode: domain.TransportBike, StoreName: "Roastery"})
	require.NoError(t, err)
	assert.Equal(t, "coffee", list.Summary)
	assert.Len(t, list.Items, 1)

	v := s.Get()
	assert.Empty(t, v.ActiveList.Items)
	require.Len(t, v.SavedLists, 1)

	out, err := s.SubmitSavedList(ctx, list.ID)
	require.NoError(t, err)
	assert.True(t, out.Settled())
	assert.Equal(t, int64(40), out.Entry.XPEarned)
	assert.Equal(t, domain.TransportBike, out.Entry.TransportMode)
	assert.Equal(t, "Roastery", out.Entry.StoreName)

	v = s.Get()
	assert.Empty(t, v.SavedLists)
	assert.Len(t, v.History, 1)
}

func TestSavedList_AwaitingDecisionKeepsListUntilResolved(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{Streak: 3, StreakSavers: 1}, "100"))
	ctx := context.Background()

	list, err := s.SaveList(ctx, store.TripInput{Items: []domain.ListItem{}, CostOverride: decPtr("130")})
	require.NoError(t, err)

	out, err := s.SubmitSavedList(ctx, list.ID)
	require.NoError(t, err)
	assert.False(t, out.Settled())
	assert.Len(t, s.Get().SavedLists, 1)

	_, err = s.ResolveStreakDecision(ctx, settlement.DecisionUseSaver)
	require.NoError(t, err)
	assert.Empty(t, s.Get().SavedLists)
	assert.Equal(t, 3, s.Get().Streak)
}

func TestSavedList_SubmitKeepsActiveList(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "100"))
	ctx := context.Background()

	list, err := s.SaveList(ctx, store.TripInput{Items: []domain.ListItem{}, CostOverride: decPtr("50")})
	require.NoError(t, err)
	require.NoError(t, s.SetActiveList(ctx, []domain.ListItem{{Name: "milk", Quantity: 2}}, "milk"))

	out, err := s.SubmitSavedList(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, out.Settled())

	active := s.Get().ActiveList
	require.Len(t, active.Items, 1)
	assert.Equal(t, "milk", active.Items[0].Name)
	assert.Equal(t, "milk", active.Summary)
}

func TestSavedList_ResolvedDecisionKeepsActiveList(t *testing.T) {
	for name, discard := range map[string]bool{"kept": false, "discarded while pending": true} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, seeded(t, domain.ProgressionState{Streak: 3, StreakSavers: 1}, "100"))
			ctx := context.Background()

			list, err := s.SaveList(ctx, store.TripInput{Items: []domain.ListItem{}, CostOverride: decPtr("130")})
			require.NoError(t, err)
			require.NoError(t, s.SetActiveList(ctx, []domain.ListItem{{Name: "oats", Quantity: 1}}, ""))

			out, err := s.SubmitSavedList(ctx, list.ID)
			require.NoError(t, err)
			require.False(t, out.Settled())
			if discard {
				require.NoError(t, s.DeleteSavedList(ctx, list.ID))
			}

			_, err = s.ResolveStreakDecision(ctx, settlement.DecisionBreakStreak)
			require.NoError(t, err)

			v := s.Get()
			require.Len(t, v.ActiveList.Items, 1)
			assert.Equal(t, "oats", v.ActiveList.Items[0].Name)
			assert.Empty(t, v.SavedLists)
			assert.Len(t, v.History, 1)
		})
	}
}

func TestSavedList_Errors(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	_, err := s.SubmitSavedList(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSavedListNotFound)
	assert.ErrorIs(t, s.DeleteSavedList(ctx, "nope"), domain.ErrSavedListNotFound)

	_, err = s.SaveList(ctx, store.TripInput{TransportCost: dec("-2")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	list, err := s.SaveList(ctx, store.TripInput{})
	require.NoError(t, err)
	require.NoError(t, s.DeleteSavedList(ctx, list.ID))
	assert.Empty(t, s.Get().SavedLists)
}

func TestSetActiveList_RejectsNegativePrice(t *testing.T) {
	s := newTestStore(t, nil)
	price := dec("-1")
	err := s.SetActiveList(context.Background(), []domain.ListItem{{Name: "coupon", Price: &price}}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

// ─── Purchases ──────────────────────────────────────────────────────────────

func TestPurchase(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 200}, "0"))
	ctx := context.Background()

	item, err := s.Purchase(ctx, "hat-chef")
	require.NoError(t, err)
	assert.Equal(t, int64(150), item.Price)
	assert.True(t, s.Owns("hat-chef"))
	assert.Equal(t, int64(50), s.Get().XP)
}

func TestPurchase_Failures(t *testing.T) {
	tests := []struct {
		name string
		item string
		want error
	}{
		{"insufficient", "costume-carrot", domain.ErrInsufficientFunds},
		{"already owned", "bg-market", domain.ErrAlreadyOwned},
		{"premium", "hat-halo", domain.ErrNotForSale},
		{"unknown", "hat-wizard", domain.ErrUnknownItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := seeded(t, domain.ProgressionState{XP: 120}, "0")
			s := newTestStore(t, p)
			_, err := s.Purchase(context.Background(), "bg-market")
			require.NoError(t, err)
			saves := p.saves

			_, err = s.Purchase(context.Background(), tt.item)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int64(40), s.Get().XP, "failed purchase must not change XP")
			assert.Equal(t, []string{"bg-market"}, s.Get().Owned)
			assert.Equal(t, saves, p.saves)
		})
	}
}

func TestPurchase_StreakSaverIsConsumable(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 250}, "0"))
	ctx := context.Background()

	for range 2 {
		_, err := s.Purchase(ctx, catalog.StreakSaverID)
		require.NoError(t, err)
	}
	v := s.Get()
	assert.Equal(t, 2, v.StreakSavers)
	assert.Equal(t, int64(50), v.XP)
	assert.NotContains(t, v.Owned, catalog.StreakSaverID)

	_, err := s.Purchase(ctx, catalog.StreakSaverID)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

// ─── Equipment ──────────────────────────────────────────────────────────────

func TestEquipAndUnequip(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 500}, "0"))
	ctx := context.Background()

	assert.ErrorIs(t, s.Equip(ctx, "hat-beanie"), domain.ErrNotOwned)

	for _, id := range []string{"hat-beanie", "hat-chef"} {
		_, err := s.Purchase(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, s.Equip(ctx, "hat-beanie"))
	require.NoError(t, s.Equip(ctx, "hat-chef"))
	assert.Equal(t, domain.EquippedItems{domain.ItemHat: "hat-chef"}, s.Get().Equipped)

	require.NoError(t, s.Unequip(ctx, domain.ItemHat))
	assert.Empty(t, s.Get().Equipped)
	require.NoError(t, s.Unequip(ctx, domain.ItemHat), "unequipping an empty slot is a no-op")
}

func TestEquip_Errors(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{XP: 500}, "0"))
	ctx := context.Background()

	assert.ErrorIs(t, s.Equip(ctx, "nothing"), domain.ErrUnknownItem)
	assert.ErrorIs(t, s.Equip(ctx, catalog.StreakSaverID), domain.ErrNotEquippable)
	assert.ErrorIs(t, s.Unequip(ctx, domain.ItemUtility), domain.ErrUnknownSlot)
	assert.ErrorIs(t, s.Unequip(ctx, "cape"), domain.ErrUnknownSlot)
}

// ─── Reward Draw ────────────────────────────────────────────────────────────

func TestDrawLootbox_GrantsOnce(t *testing.T) {
	s := newTestStore(t, nil, store.WithSource(fixedSource{r: 0.05, n: 0}))
	ctx := context.Background()

	first, err := s.DrawLootbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RarityLegendary, first.Item.Rarity)
	assert.False(t, first.Duplicate)
	assert.True(t, s.Owns(first.Item.ID))

	second, err := s.DrawLootbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Item.ID, second.Item.ID)
	assert.True(t, second.Duplicate)
	assert.Equal(t, []string{first.Item.ID}, s.Get().Owned)
}

func TestDrawLootbox_CanEquipPremiumWin(t *testing.T) {
	s := newTestStore(t, nil, store.WithSource(fixedSource{r: 0.05, n: 0}))
	ctx := context.Background()

	res, err := s.DrawLootbox(ctx)
	require.NoError(t, err)
	require.True(t, res.Item.IsPremium)
	require.NoError(t, s.Equip(ctx, res.Item.ID))
	assert.Equal(t, res.Item.ID, s.Get().Equipped[res.Item.Type])
}

func TestDrawLootbox_Cost(t *testing.T) {
	p := seeded(t, domain.ProgressionState{XP: 70}, "0")
	s := newTestStore(t, p, store.WithLootboxCost(50))
	ctx := context.Background()

	_, err := s.DrawLootbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), s.Get().XP)

	_, err = s.DrawLootbox(ctx)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Len(t, s.Get().Owned, 1)
}

// ─── Preferences ────────────────────────────────────────────────────────────

func TestSetPreferences(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	err := s.SetPreferences(ctx, domain.Preferences{Budget: dec("-10")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	err = s.SetPreferences(ctx, domain.Preferences{DefaultTransport: "jetpack"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransport)

	require.NoError(t, s.SetPreferences(ctx, domain.Preferences{Budget: dec("120"), DefaultStore: "Aldi"}))
	prefs := s.Get().Preferences
	assert.True(t, prefs.Budget.Equal(dec("120")))
	assert.Equal(t, domain.TransportWalk, prefs.DefaultTransport)
	assert.Equal(t, "USD", prefs.Currency)

	out, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("60")})
	require.NoError(t, err)
	assert.Equal(t, "Aldi", out.Entry.StoreName)
	assert.Equal(t, int64(50), out.Entry.XPEarned)
}

func TestStoresAreIndependent(t *testing.T) {
	a := store.New(store.WithClock(func() time.Time { return testNow }))
	b := store.New(store.WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	require.NoError(t, a.SetBudget(ctx, dec("100")))
	_, err := a.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("50")})
	require.NoError(t, err)

	assert.Equal(t, int64(50), a.Get().XP)
	assert.Equal(t, int64(0), b.Get().XP)
}

// ─── Achievements ───────────────────────────────────────────────────────────

func achievementIDs(v store.View) []string {
	out := make([]string, len(v.Achievements))
	for i, a := range v.Achievements {
		out[i] = a.ID
	}
	return out
}

func TestAchievements_UnlockOnTrip(t *testing.T) {
	p := seeded(t, domain.ProgressionState{}, "100")
	s := newTestStore(t, p)

	_, err := s.SubmitTrip(context.Background(), store.TripInput{CostOverride: decPtr("80")})
	require.NoError(t, err)

	v := s.Get()
	assert.Equal(t, []string{"first_trip", "under_budget"}, achievementIDs(v))
	assert.Equal(t, testNow, v.Achievements[0].UnlockedAt)
	assert.Equal(t, int64(20), v.XP, "achievements never grant XP")

	restored := newTestStore(t, p)
	assert.Equal(t, achievementIDs(v), achievementIDs(restored.Get()))
}

func TestAchievements_SurviveHistoryDelete(t *testing.T) {
	s := newTestStore(t, seeded(t, domain.ProgressionState{}, "100"))
	ctx := context.Background()

	out, err := s.SubmitTrip(ctx, store.TripInput{CostOverride: decPtr("80")})
	require.NoError(t, err)
	require.NoError(t, s.DeleteHistoryEntry(ctx, out.Entry.ID))

	assert.Contains(t, achievementIDs(s.Get()), "first_trip")
}

func TestAchievements_UnknownDroppedOnLoad(t *testing.T) {
	snap := store.DefaultSnapshot()
	snap.Achievements = []domain.UnlockedAchievement{
		{ID: "first_trip", UnlockedAt: testNow},
		{ID: "first_trip", UnlockedAt: testNow},
		{ID: "retired_badge", UnlockedAt: testNow},
	}
	data, err := snap.Marshal()
	require.NoError(t, err)

	got, err := store.UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Len(t, got.Achievements, 1)
	assert.Equal(t, "first_trip", got.Achievements[0].ID)
}
