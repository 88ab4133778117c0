// Package store holds a user's progression state and mediates its
// persistence.
//
// A Store is an explicit state object: nothing here is global, and any
// number of stores can coexist. Every successful mutation serializes the
// full Snapshot and hands it to the Persister. Save failures are logged and
// counted but never returned, so the foreground flow cannot fail on
// storage. A trip awaiting a streak decision is held in memory only.
package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cartquest/cartquest/internal/app/achievement"
	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/app/lootbox"
	"github.com/cartquest/cartquest/internal/app/progression"
	"github.com/cartquest/cartquest/internal/app/settlement"
	"github.com/cartquest/cartquest/internal/domain"
	"github.com/cartquest/cartquest/internal/infra/metrics"
)

// Persister stores and restores the serialized snapshot. Load returns
// nil, nil when nothing has been saved yet.
type Persister interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithClock sets the time source used for trip timestamps and the weekly
// window.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSource sets the randomness used by reward draws.
func WithSource(src lootbox.Source) Option {
	return func(s *Store) { s.src = src }
}

// WithTable replaces the reward tier table.
func WithTable(t lootbox.Table) Option {
	return func(s *Store) { s.table = t }
}

// WithLootboxCost sets the XP price of one reward draw. Zero makes draws
// free.
func WithLootboxCost(xp int64) Option {
	return func(s *Store) { s.lootboxCost = max(xp, 0) }
}

// WithIDFunc sets the generator for history entry and saved list IDs.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the in-memory progression state of one profile. It is safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	persister Persister
	log       zerolog.Logger

	now         func() time.Time
	src         lootbox.Source
	table       lootbox.Table
	lootboxCost int64
	newID       func() string

	snap    Snapshot
	owned   map[string]bool
	pending *pendingTrip
	saveErr error
}

type pendingTrip struct {
	draft  settlement.Draft
	origin tripOrigin
}

// tripOrigin records where a trip came from. A trip built from a saved
// list leaves the active list alone; listID is cleared if the list is
// discarded while the trip awaits a decision.
type tripOrigin struct {
	savedList bool
	listID    string
}

// Open creates a Store and restores its state from p. A missing snapshot
// yields the default state. An unreadable or malformed snapshot is logged
// and also yields the default state. p may be nil for a memory-only store.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		log:       zerolog.Nop(),
		now:       time.Now,
		src:       lootbox.DefaultSource(),
		table:     lootbox.DefaultTable(),
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.table.Validate(); err != nil {
		return nil, err
	}
	s.restore(s.load(ctx))
	return s, nil
}

// New creates a memory-only Store with the default state.
func New(opts ...Option) *Store {
	s, err := Open(context.Background(), nil, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Store) load(ctx context.Context) Snapshot {
	if s.persister == nil {
		return DefaultSnapshot()
	}
	data, err := s.persister.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot load failed, starting from defaults")
		metrics.SnapshotLoadFallbacks.Inc()
		return DefaultSnapshot()
	}
	if data == nil {
		s.log.Info().Msg("no snapshot found, starting from defaults")
		return DefaultSnapshot()
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		s.log.Warn().Err(err).Int("bytes", len(data)).Msg("snapshot malformed, starting from defaults")
		metrics.SnapshotLoadFallbacks.Inc()
		return DefaultSnapshot()
	}
	s.log.Debug().Int64("xp", snap.Progression.XP).Int("history", len(snap.History)).Msg("snapshot restored")
	return snap
}

func (s *Store) restore(snap Snapshot) {
	s.snap = snap.Normalize()
	s.owned = make(map[string]bool, len(s.snap.Owned))
	for _, id := range s.snap.Owned {
		s.owned[id] = true
	}
	s.observe()
}

// save persists the current state after unlocking any newly earned
// achievements. Caller must hold s.mu.
func (s *Store) save(ctx context.Context) {
	s.snap.Owned = slices.Sorted(maps.Keys(s.owned))
	s.unlockAchievements()
	s.observe()
	if s.persister == nil {
		return
	}
	data, err := s.snap.Marshal()
	if err == nil {
		err = s.persister.Save(ctx, data)
	}
	s.saveErr = err
	if err != nil {
		s.log.Error().Err(err).Msg("snapshot save failed")
		metrics.SnapshotSaveFailures.Inc()
		return
	}
	metrics.SnapshotSaves.Inc()
}

func (s *Store) unlockAchievements() {
	have := make(map[string]bool, len(s.snap.Achievements))
	for _, a := range s.snap.Achievements {
		have[a.ID] = true
	}
	stats := achievement.StatsFor(s.snap.Progression, s.snap.History, s.snap.LifetimeSavings, s.snap.Owned)
	for _, def := range achievement.Check(stats, have) {
		s.snap.Achievements = append(s.snap.Achievements, domain.UnlockedAchievement{ID: def.ID, UnlockedAt: s.now()})
		metrics.AchievementsUnlocked.Inc()
		s.log.Info().Str("achievement", def.ID).Msg("achievement unlocked")
	}
}

// LastSaveError returns the error of the most recent save, or nil if it
// succeeded.
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

func (s *Store) observe() {
	metrics.Level.Set(float64(progression.LevelForXP(s.snap.Progression.XP)))
	metrics.Streak.Set(float64(s.snap.Progression.Streak))
}

// Snapshot returns a copy of the stored state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySnapshot()
}

func (s *Store) copySnapshot() Snapshot {
	snap := s.snap
	snap.Owned = slices.Sorted(maps.Keys(s.owned))
	snap.Equipped = maps.Clone(s.snap.Equipped)
	snap.History = make([]domain.HistoryEntry, len(s.snap.History))
	for i, e := range s.snap.History {
		snap.History[i] = cloneEntry(e)
	}
	snap.SavedLists = make([]domain.SavedList, len(s.snap.SavedLists))
	for i, l := range s.snap.SavedLists {
		snap.SavedLists[i] = cloneSavedList(l)
	}
	snap.ActiveList.Items = cloneItems(s.snap.ActiveList.Items)
	snap.Achievements = slices.Clone(s.snap.Achievements)
	return snap
}

// ─── Copies ─────────────────────────────────────────────────────────────────
// Nothing the store holds is shared with callers: items and optional
// amounts are copied on the way in and on the way out.

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneItems(items []domain.ListItem) []domain.ListItem {
	if items == nil {
		return nil
	}
	out := make([]domain.ListItem, len(items))
	for i, it := range items {
		it.Price = cloneDecimal(it.Price)
		out[i] = it
	}
	return out
}

func cloneEntry(e domain.HistoryEntry) domain.HistoryEntry {
	e.Items = cloneItems(e.Items)
	return e
}

func cloneSavedList(l domain.SavedList) domain.SavedList {
	l.Items = cloneItems(l.Items)
	l.CostOverride = cloneDecimal(l.CostOverride)
	l.Budget = cloneDecimal(l.Budget)
	return l
}

func cloneDraft(d settlement.Draft) settlement.Draft {
	d.Entry = cloneEntry(d.Entry)
	return d
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// View is the stored state together with every derived value.
type View struct {
	domain.ProgressionState
	Level           int                          `json:"level"`
	Progress        int                          `json:"progress"`
	XPToNextLevel   int64                        `json:"xp_to_next_level"`
	WeeklyXP        int64                        `json:"weekly_xp"`
	WeeklySpend     decimal.Decimal              `json:"weekly_spend"`
	LifetimeSavings decimal.Decimal              `json:"lifetime_savings"`
	Owned           []string                     `json:"owned"`
	Equipped        domain.EquippedItems         `json:"equipped"`
	History         []domain.HistoryEntry        `json:"history"`
	SavedLists      []domain.SavedList           `json:"saved_lists"`
	ActiveList      domain.ActiveList            `json:"active_list"`
	Preferences     domain.Preferences           `json:"preferences"`
	Achievements    []domain.UnlockedAchievement `json:"achievements"`
	Pending         *settlement.Draft            `json:"pending,omitempty"`
}

// Get returns the current state. Derived values are recomputed on every
// call.
func (s *Store) Get() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.copySnapshot()
	now := s.now()
	var pending *settlement.Draft
	if s.pending != nil {
		d := cloneDraft(s.pending.draft)
		pending = &d
	}

	xp := snap.Progression.XP
	return View{
		ProgressionState: snap.Progression,
		Level:            progression.LevelForXP(xp),
		Progress:         progression.ProgressPct(xp),
		XPToNextLevel:    progression.XPToNextLevel(xp),
		WeeklyXP:         progression.WeeklyXP(snap.History, now),
		WeeklySpend:      progression.WeeklySpend(snap.History, now),
		LifetimeSavings:  snap.LifetimeSavings,
		Owned:            snap.Owned,
		Equipped:         snap.Equipped,
		History:          snap.History,
		SavedLists:       snap.SavedLists,
		ActiveList:       snap.ActiveList,
		Preferences:      snap.Preferences,
		Achievements:     snap.Achievements,
		Pending:          pending,
	}
}

// Owns reports whether the item is in the owned set.
func (s *Store) Owns(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owned[itemID]
}

// ─── Trips ──────────────────────────────────────────────────────────────────

// TripInput describes a trip to settle or save. Nil Items means the active
// list. An empty TransportMode or StoreName falls back to the
// preferences, and a nil Budget means the preferences budget.
type TripInput struct {
	Items         []domain.ListItem    `json:"items,omitempty"`
	TransportMode domain.TransportMode `json:"transport_mode,omitempty"`
	TransportCost decimal.Decimal      `json:"transport_cost"`
	CostOverride  *decimal.Decimal     `json:"cost_override,omitempty"`
	Budget        *decimal.Decimal     `json:"budget,omitempty"`
	StoreName     string               `json:"store_name,omitempty"`
}

func (s *Store) trip(in TripInput) (settlement.Trip, decimal.Decimal) {
	prefs := s.snap.Preferences
	items := cloneItems(in.Items)
	if items == nil {
		items = cloneItems(s.snap.ActiveList.Items)
	}
	mode := in.TransportMode
	if mode == "" {
		mode = prefs.DefaultTransport
	}
	storeName := in.StoreName
	if storeName == "" {
		storeName = prefs.DefaultStore
	}
	budget := prefs.Budget
	if in.Budget != nil {
		budget = *in.Budget
	}
	return settlement.Trip{
		ID:            s.newID(),
		Timestamp:     s.now(),
		Items:         items,
		TransportMode: mode,
		TransportCost: in.TransportCost,
		CostOverride:  cloneDecimal(in.CostOverride),
		StoreName:     storeName,
	}, budget
}

// SubmitTrip settles a trip against the budget. When the trip is over
// budget and streak savers are available, the outcome is
// StatusAwaitingDecision and nothing changes until ResolveStreakDecision.
func (s *Store) SubmitTrip(ctx context.Context, in TripInput) (settlement.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return settlement.Outcome{}, domain.ErrDecisionPending
	}
	trip, budget := s.trip(in)
	return s.evaluate(ctx, trip, budget, tripOrigin{})
}

// evaluate runs settlement and applies a settled outcome. Caller must hold
// s.mu.
func (s *Store) evaluate(ctx context.Context, trip settlement.Trip, budget decimal.Decimal, origin tripOrigin) (settlement.Outcome, error) {
	out, err := settlement.Evaluate(s.snap.Progression, trip, budget)
	if err != nil {
		return settlement.Outcome{}, err
	}
	if !out.Settled() {
		s.pending = &pendingTrip{draft: cloneDraft(*out.Draft), origin: origin}
		metrics.StreakDecisionsPending.Inc()
		s.log.Info().Str("trip", trip.ID).
			Str("cost", out.Result.FinalCost.String()).
			Str("budget", out.Result.Budget.String()).
			Int("savers", s.snap.Progression.StreakSavers).
			Msg("trip over budget, awaiting streak decision")
		return out, nil
	}
	s.apply(ctx, out, origin)
	return out, nil
}

// ResolveStreakDecision settles the trip awaiting a streak decision. An
// invalid decision leaves the trip pending.
func (s *Store) ResolveStreakDecision(ctx context.Context, decision settlement.Decision) (settlement.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return settlement.Outcome{}, domain.ErrNoPendingDecision
	}
	out, err := settlement.Resolve(s.snap.Progression, s.pending.draft, decision)
	if err != nil {
		return settlement.Outcome{}, err
	}
	origin := s.pending.origin
	s.pending = nil
	s.apply(ctx, out, origin)
	return out, nil
}

// apply commits a settled outcome. Caller must hold s.mu.
func (s *Store) apply(ctx context.Context, out settlement.Outcome, origin tripOrigin) {
	entry := cloneEntry(*out.Entry)
	s.snap.Progression = out.State
	s.snap.History = append(s.snap.History, entry)
	s.snap.LifetimeSavings = s.snap.LifetimeSavings.Add(entry.Savings)
	if !origin.savedList {
		s.snap.ActiveList = domain.ActiveList{}
	}
	if origin.listID != "" {
		s.snap.SavedLists = slices.DeleteFunc(s.snap.SavedLists, func(l domain.SavedList) bool {
			return l.ID == origin.listID
		})
	}

	metrics.TripsSettled.WithLabelValues(outcomeLabel(out)).Inc()
	metrics.XPAwarded.Add(float64(entry.XPEarned))
	s.log.Info().Str("trip", entry.ID).
		Str("outcome", outcomeLabel(out)).
		Int64("xp_earned", entry.XPEarned).
		Int("streak", out.State.Streak).
		Bool("leveled_up", out.LeveledUp).
		Msg("trip settled")
	s.save(ctx)
}

func outcomeLabel(out settlement.Outcome) string {
	switch {
	case out.StreakSaverUsed:
		return "saver_used"
	case out.Result.UnderBudget:
		return "under_budget"
	case out.Result.Budget.IsZero():
		return "no_budget"
	default:
		return "streak_broken"
	}
}

// DeleteHistoryEntry removes a history entry. XP and lifetime savings
// already granted by the entry are kept.
func (s *Store) DeleteHistoryEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.snap.History, func(e domain.HistoryEntry) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("%q: %w", id, domain.ErrHistoryNotFound)
	}
	s.snap.History = slices.Delete(s.snap.History, i, i+1)
	s.save(ctx)
	return nil
}

// ─── Lists ──────────────────────────────────────────────────────────────────

func validateItems(items []domain.ListItem) error {
	for _, it := range items {
		if it.Price != nil && it.Price.IsNegative() {
			return fmt.Errorf("price of %q: %w", it.Name, domain.ErrInvalidAmount)
		}
	}
	return nil
}

// SetActiveList replaces the list being edited with the finished items
// from the list editor.
func (s *Store) SetActiveList(ctx context.Context, items []domain.ListItem, summary string) error {
	if err := validateItems(items); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.ActiveList = domain.ActiveList{Items: cloneItems(items), Summary: summary}
	s.save(ctx)
	return nil
}

// SaveList stores a trip for later submission and clears the active list.
func (s *Store) SaveList(ctx context.Context, in TripInput) (domain.SavedList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, _ := s.trip(in)
	if !trip.TransportMode.Valid() {
		return domain.SavedList{}, fmt.Errorf("%q: %w", trip.TransportMode, domain.ErrInvalidTransport)
	}
	if _, err := trip.FinalCost(); err != nil {
		return domain.SavedList{}, err
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return domain.SavedList{}, fmt.Errorf("budget %s: %w", in.Budget, domain.ErrInvalidAmount)
	}

	list := domain.SavedList{
		ID:            trip.ID,
		CreatedAt:     trip.Timestamp,
		Items:         trip.Items,
		TransportMode: trip.TransportMode,
		TransportCost: trip.TransportCost,
		CostOverride:  trip.CostOverride,
		Budget:        cloneDecimal(in.Budget),
		StoreName:     trip.StoreName,
	}
	if in.Items == nil {
		list.Summary = s.snap.ActiveList.Summary
	}
	s.snap.SavedLists = append(s.snap.SavedLists, list)
	s.snap.ActiveList = domain.ActiveList{}
	s.save(ctx)
	return cloneSavedList(list), nil
}

// DeleteSavedList discards a saved list.
func (s *Store) DeleteSavedList(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.snap.SavedLists)
	s.snap.SavedLists = slices.DeleteFunc(s.snap.SavedLists, func(l domain.SavedList) bool { return l.ID == id })
	if len(s.snap.SavedLists) == n {
		return fmt.Errorf("%q: %w", id, domain.ErrSavedListNotFound)
	}
	if s.pending != nil && s.pending.origin.listID == id {
		s.pending.origin.listID = ""
	}
	s.save(ctx)
	return nil
}

// SubmitSavedList settles a saved list. The list is removed once the trip
// is settled, including after a pending streak decision is resolved.
func (s *Store) SubmitSavedList(ctx context.Context, id string) (settlement.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return settlement.Outcome{}, domain.ErrDecisionPending
	}
	i := slices.IndexFunc(s.snap.SavedLists, func(l domain.SavedList) bool { return l.ID == id })
	if i < 0 {
		return settlement.Outcome{}, fmt.Errorf("%q: %w", id, domain.ErrSavedListNotFound)
	}
	list := s.snap.SavedLists[i]
	items := list.Items
	if items == nil {
		items = []domain.ListItem{}
	}
	trip, budget := s.trip(TripInput{
		Items:         items,
		TransportMode: list.TransportMode,
		TransportCost: list.TransportCost,
		CostOverride:  list.CostOverride,
		Budget:        list.Budget,
		StoreName:     list.StoreName,
	})
	return s.evaluate(ctx, trip, budget, tripOrigin{savedList: true, listID: list.ID})
}

// ─── Items ──────────────────────────────────────────────────────────────────

// Purchase buys a catalog item with XP. The streak saver is consumable and
// adds to the saver count instead of the owned set. On failure the state is
// unchanged.
func (s *Store) Purchase(ctx context.Context, itemID string) (domain.CosmeticItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.purchase(itemID)
	metrics.Purchases.WithLabelValues(purchaseLabel(err)).Inc()
	if err != nil {
		return domain.CosmeticItem{}, err
	}
	s.log.Info().Str("item", item.ID).Int64("price", item.Price).Int64("xp", s.snap.Progression.XP).Msg("item purchased")
	s.save(ctx)
	return item, nil
}

func (s *Store) purchase(itemID string) (domain.CosmeticItem, error) {
	item, ok := catalog.Lookup(itemID)
	if !ok {
		return item, fmt.Errorf("%q: %w", itemID, domain.ErrUnknownItem)
	}
	if item.IsPremium {
		return item, fmt.Errorf("%q: %w", itemID, domain.ErrNotForSale)
	}
	if item.Type != domain.ItemUtility && s.owned[item.ID] {
		return item, fmt.Errorf("%q: %w", itemID, domain.ErrAlreadyOwned)
	}
	if s.snap.Progression.XP < item.Price {
		return item, fmt.Errorf("%q costs %d XP, have %d: %w",
			itemID, item.Price, s.snap.Progression.XP, domain.ErrInsufficientFunds)
	}

	s.snap.Progression.XP -= item.Price
	if item.ID == catalog.StreakSaverID {
		s.snap.Progression.StreakSavers++
	} else if item.Type != domain.ItemUtility {
		s.owned[item.ID] = true
	}
	return item, nil
}

func purchaseLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, domain.ErrNotForSale):
		return "not_for_sale"
	default:
		return "unknown_item"
	}
}

// Equip wears an owned item in its slot, replacing whatever was there.
func (s *Store) Equip(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := catalog.Lookup(itemID)
	if !ok {
		return fmt.Errorf("%q: %w", itemID, domain.ErrUnknownItem)
	}
	if !item.Type.Equippable() {
		return fmt.Errorf("%q: %w", itemID, domain.ErrNotEquippable)
	}
	if !s.owned[item.ID] {
		return fmt.Errorf("%q: %w", itemID, domain.ErrNotOwned)
	}
	s.snap.Equipped[item.Type] = item.ID
	s.save(ctx)
	return nil
}

// Unequip empties a slot. Emptying an empty slot is a no-op.
func (s *Store) Unequip(ctx context.Context, slot domain.ItemType) error {
	if !slot.Equippable() {
		return fmt.Errorf("%q: %w", slot, domain.ErrUnknownSlot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Equipped[slot]; !ok {
		return nil
	}
	delete(s.snap.Equipped, slot)
	s.save(ctx)
	return nil
}

// DrawLootbox runs one reward draw and grants the won item. Winning an
// owned item reports it as a duplicate and adds nothing.
func (s *Store) DrawLootbox(ctx context.Context) (lootbox.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Progression.XP < s.lootboxCost {
		return lootbox.Result{}, fmt.Errorf("draw costs %d XP, have %d: %w",
			s.lootboxCost, s.snap.Progression.XP, domain.ErrInsufficientFunds)
	}
	res, err := s.table.Open(s.src, s.owned)
	if err != nil {
		return lootbox.Result{}, err
	}
	s.snap.Progression.XP -= s.lootboxCost

	metrics.LootboxDraws.WithLabelValues(string(res.Item.Rarity), strconv.FormatBool(res.Duplicate)).Inc()
	s.log.Info().Str("item", res.Item.ID).
		Str("rarity", string(res.Item.Rarity)).
		Bool("duplicate", res.Duplicate).
		Msg("reward drawn")
	s.save(ctx)
	return res, nil
}

// ─── Preferences ────────────────────────────────────────────────────────────

// SetPreferences replaces the user's settings.
func (s *Store) SetPreferences(ctx context.Context, p domain.Preferences) error {
	if p.Budget.IsNegative() {
		return fmt.Errorf("budget %s: %w", p.Budget, domain.ErrInvalidAmount)
	}
	if p.DefaultTransport == "" {
		p.DefaultTransport = domain.TransportWalk
	}
	if !p.DefaultTransport.Valid() {
		return fmt.Errorf("%q: %w", p.DefaultTransport, domain.ErrInvalidTransport)
	}
	if p.Currency == "" {
		p.Currency = domain.DefaultPreferences().Currency
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Preferences = p
	s.save(ctx)
	return nil
}

// SetBudget updates only the budget preference.
func (s *Store) SetBudget(ctx context.Context, budget decimal.Decimal) error {
	s.mu.Lock()
	p := s.snap.Preferences
	s.mu.Unlock()

	p.Budget = budget
	return s.SetPreferences(ctx, p)
}
