package daemon

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cartquest/cartquest/internal/api"
	"github.com/cartquest/cartquest/internal/app/lootbox"
	"github.com/cartquest/cartquest/internal/app/store"
	"github.com/cartquest/cartquest/internal/health"
	"github.com/cartquest/cartquest/internal/infra/filestore"
	"github.com/cartquest/cartquest/internal/infra/sqlite"
)

// Daemon is the CartQuest runtime. It wires together all services.
type Daemon struct {
	Config Config
	Log    zerolog.Logger
	DB     *sqlite.DB // nil with the file backend
	Store  *store.Store
	Health *health.Checker
	Server *api.Server

	logCloser io.Closer
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, closer, err := NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}
	d := &Daemon{Config: cfg, Log: log, logCloser: closer}

	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = cartquestHome()
	}

	// Snapshot persistence
	var persister store.Persister
	checks := []health.Check{health.DataDir(dataDir)}
	switch cfg.Storage.Backend {
	case BackendFile:
		persister = filestore.New(filepath.Join(dataDir, "profiles", cfg.Profile.Name+".json"))
	default:
		db, err := sqlite.Open(dataDir)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.SetMeta("last_version", api.Version); err != nil {
			log.Warn().Err(err).Msg("failed to record version")
		}
		d.DB = db
		persister = db.Snapshots(cfg.Profile.Name)
		checks = append(checks, health.Ping("sqlite", db.Ping))
	}

	// Progression store
	opts := []store.Option{
		store.WithLogger(log.With().Str("component", "store").Str("profile", cfg.Profile.Name).Logger()),
		store.WithLootboxCost(cfg.Rewards.LootboxCost),
	}
	if cfg.Rewards.Seed != 0 {
		opts = append(opts, store.WithSource(seededSource(cfg.Rewards.Seed)))
	}
	st, err := store.Open(context.Background(), persister, opts...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.Store = st

	// Health checks
	checks = append(checks, health.LastSave(st.LastSaveError))
	d.Health = health.NewChecker(
		log.With().Str("component", "health").Logger(),
		parseDuration(cfg.Telemetry.HealthInterval, health.DefaultInterval),
		checks...,
	)

	// API server
	srv := api.NewServer(st)
	srv.SetPolicy(cfg.Leaderboard.Policy())
	srv.SetHealth(d.Health)
	srv.SetLogger(log.With().Str("component", "api").Logger())
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetTimeout(parseDuration(cfg.API.RequestTimeout, 30*time.Second))
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// seededSource returns a deterministic reward source.
func seededSource(seed uint64) lootbox.Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		d.Log.Info().Msg("shutting down")
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("CartQuest serving profile %q on http://%s\n", d.Config.Profile.Name, addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.logCloser != nil {
		_ = d.logCloser.Close()
	}
}
