// Package api provides the HTTP server for CartQuest.
// It is the boundary that UI code calls with plain JSON; every rule lives
// in the store and the engine packages behind it.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cartquest/cartquest/internal/app/leaderboard"
	"github.com/cartquest/cartquest/internal/app/store"
	"github.com/cartquest/cartquest/internal/domain"
	"github.com/cartquest/cartquest/internal/health"
)

// Version is reported by /api/version.
var Version = "0.1.0"

// Server is the CartQuest HTTP API server.
type Server struct {
	store          *store.Store
	policy         leaderboard.Policy
	health         *health.Checker
	log            zerolog.Logger
	corsOrigins    []string
	timeout        time.Duration
	metricsEnabled bool
}

// NewServer creates a new API server for st.
func NewServer(st *store.Store) *Server {
	return &Server{
		store:       st,
		policy:      leaderboard.DefaultPolicy(),
		log:         zerolog.Nop(),
		corsOrigins: []string{"*"},
		timeout:     30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetPolicy sets the leaderboard policy.
func (s *Server) SetPolicy(p leaderboard.Policy) { s.policy = p }

// SetHealth sets the checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetLogger sets the request logger.
func (s *Server) SetLogger(l zerolog.Logger) { s.log = l }

// SetCORSOrigins sets the allowed origins. "*" allows any.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetTimeout sets the per-request timeout.
func (s *Server) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", s.handleProgress)
		r.Put("/list", s.handleSetList)
		r.Put("/preferences", s.handleSetPreferences)

		r.Post("/trips", s.handleSubmitTrip)
		r.Post("/trips/decision", s.handleDecision)

		r.Get("/history", s.handleHistory)
		r.Delete("/history/{id}", s.handleDeleteHistory)

		r.Get("/saved-lists", s.handleSavedLists)
		r.Post("/saved-lists", s.handleSaveList)
		r.Delete("/saved-lists/{id}", s.handleDeleteSavedList)
		r.Post("/saved-lists/{id}/submit", s.handleSubmitSavedList)

		r.Get("/shop", s.handleShop)
		r.Post("/shop/purchase", s.handlePurchase)
		r.Post("/items/equip", s.handleEquip)
		r.Delete("/items/equipped/{type}", s.handleUnequip)
		r.Post("/lootbox", s.handleLootbox)
		r.Get("/achievements", s.handleAchievements)

		r.Post("/leaderboard", s.handleLeaderboard)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    typ,
		},
	})
}

// writeDomainError maps a store error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	status, typ := errorStatus(err)
	writeError(w, status, typ, err.Error())
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTransport),
		errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrNotEquippable),
		errors.Is(err, domain.ErrUnknownSlot):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, domain.ErrHistoryNotFound),
		errors.Is(err, domain.ErrSavedListNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyOwned),
		errors.Is(err, domain.ErrDecisionPending),
		errors.Is(err, domain.ErrNoPendingDecision):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrNotForSale),
		errors.Is(err, domain.ErrNotOwned):
		return http.StatusUnprocessableEntity, "unprocessable"
	default:
		return http.StatusInternalServerError, "error"
	}
}

// decode reads a JSON request body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
