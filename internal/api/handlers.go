package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cartquest/cartquest/internal/app/achievement"
	"github.com/cartquest/cartquest/internal/app/catalog"
	"github.com/cartquest/cartquest/internal/app/settlement"
	"github.com/cartquest/cartquest/internal/app/store"
	"github.com/cartquest/cartquest/internal/domain"
	"github.com/cartquest/cartquest/internal/infra/metrics"
)

// ─── Progress ───────────────────────────────────────────────────────────────

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Get())
}

type listRequest struct {
	Items   []domain.ListItem `json:"items"`
	Summary string            `json:"summary"`
}

func (s *Server) handleSetList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.SetActiveList(r.Context(), req.Items, req.Summary); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Get().ActiveList)
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var req domain.Preferences
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.SetPreferences(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Get().Preferences)
}

// ─── Trips ──────────────────────────────────────────────────────────────────

type tripResponse struct {
	Outcome  settlement.Outcome `json:"outcome"`
	Progress store.View         `json:"progress"`
}

// writeOutcome answers 200 for a settled trip and 202 for one awaiting a
// streak decision.
func (s *Server) writeOutcome(w http.ResponseWriter, out settlement.Outcome) {
	status := http.StatusOK
	if !out.Settled() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, tripResponse{Outcome: out, Progress: s.store.Get()})
}

func (s *Server) handleSubmitTrip(w http.ResponseWriter, r *http.Request) {
	var req store.TripInput
	if !decode(w, r, &req) {
		return
	}
	out, err := s.store.SubmitTrip(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeOutcome(w, out)
}

type decisionRequest struct {
	Decision settlement.Decision `json:"decision"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.store.ResolveStreakDecision(r.Context(), req.Decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeOutcome(w, out)
}

// ─── History ────────────────────────────────────────────────────────────────

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"history": s.store.Get().History})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteHistoryEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Saved Lists ────────────────────────────────────────────────────────────

func (s *Server) handleSavedLists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"saved_lists": s.store.Get().SavedLists})
}

func (s *Server) handleSaveList(w http.ResponseWriter, r *http.Request) {
	var req store.TripInput
	if !decode(w, r, &req) {
		return
	}
	list, err := s.store.SaveList(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleDeleteSavedList(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSavedList(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitSavedList(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.SubmitSavedList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.writeOutcome(w, out)
}

// ─── Items ──────────────────────────────────────────────────────────────────

type shopItem struct {
	domain.CosmeticItem
	Owned      bool `json:"owned"`
	Affordable bool `json:"affordable"`
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	view := s.store.Get()
	forSale := catalog.ForSale()
	items := make([]shopItem, len(forSale))
	for i, it := range forSale {
		items[i] = shopItem{
			CosmeticItem: it,
			Owned:        s.store.Owns(it.ID),
			Affordable:   view.XP >= it.Price,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"xp":    view.XP,
		"items": items,
	})
}

type achievementStatus struct {
	achievement.Def
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked := make(map[string]time.Time)
	for _, a := range s.store.Get().Achievements {
		unlocked[a.ID] = a.UnlockedAt
	}
	defs := achievement.All()
	out := make([]achievementStatus, len(defs))
	for i, d := range defs {
		out[i] = achievementStatus{Def: d}
		if at, ok := unlocked[d.ID]; ok {
			out[i].Unlocked = true
			out[i].UnlockedAt = &at
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unlocked":     len(unlocked),
		"total":        len(defs),
		"achievements": out,
	})
}

type itemRequest struct {
	ItemID string `json:"item_id"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := s.store.Purchase(r.Context(), req.ItemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view := s.store.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"item":          item,
		"xp":            view.XP,
		"streak_savers": view.StreakSavers,
	})
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.Equip(r.Context(), req.ItemID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"equipped": s.store.Get().Equipped})
}

func (s *Server) handleUnequip(w http.ResponseWriter, r *http.Request) {
	slot := domain.ItemType(chi.URLParam(r, "type"))
	if err := s.store.Unequip(r.Context(), slot); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"equipped": s.store.Get().Equipped})
}

func (s *Server) handleLootbox(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.DrawLootbox(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Leaderboard ────────────────────────────────────────────────────────────

type leaderboardRequest struct {
	Entrants []domain.LeaderboardEntrant `json:"entrants"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req leaderboardRequest
	if !decode(w, r, &req) {
		return
	}
	board := s.policy.Rank(req.Entrants)
	metrics.RecordRanking(len(board.Disqualified))
	writeJSON(w, http.StatusOK, board)
}
