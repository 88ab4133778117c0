package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevisionsKept is how many recent snapshots are retained per profile.
const RevisionsKept = 10

// Revision is one retained snapshot.
type Revision struct {
	ID      int64
	Profile string
	SavedAt time.Time
	Size    int
}

// ─── Snapshots ──────────────────────────────────────────────────────────────

// SaveSnapshot replaces the current snapshot of profile and records it as
// a revision, pruning revisions beyond RevisionsKept.
func (d *DB) SaveSnapshot(ctx context.Context, profile string, body []byte, at time.Time) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (profile, body, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET body=excluded.body, saved_at=excluded.saved_at`,
		profile, string(body), at.UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_revisions (profile, body, saved_at) VALUES (?, ?, ?)`,
		profile, string(body), at.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshot_revisions WHERE profile = ? AND id NOT IN (
			SELECT id FROM snapshot_revisions WHERE profile = ? ORDER BY id DESC LIMIT ?
		)`,
		profile, profile, RevisionsKept,
	); err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	return tx.Commit()
}

// LoadSnapshot returns the current snapshot of profile, or nil if none has
// been saved.
func (d *DB) LoadSnapshot(ctx context.Context, profile string) ([]byte, error) {
	var body string
	err := d.db.QueryRowContext(ctx,
		`SELECT body FROM snapshots WHERE profile = ?`, profile,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Revisions lists the retained snapshots of profile, newest first.
func (d *DB) Revisions(ctx context.Context, profile string) ([]Revision, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, profile, saved_at, length(body) FROM snapshot_revisions
		 WHERE profile = ? ORDER BY id DESC`, profile,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var savedAt int64
		if err := rows.Scan(&r.ID, &r.Profile, &savedAt, &r.Size); err != nil {
			return nil, err
		}
		r.SavedAt = time.UnixMilli(savedAt)
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// RestoreRevision makes a retained revision the current snapshot again.
func (d *DB) RestoreRevision(ctx context.Context, profile string, id int64) error {
	var body string
	err := d.db.QueryRowContext(ctx,
		`SELECT body FROM snapshot_revisions WHERE profile = ? AND id = ?`, profile, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return fmt.Errorf("revision %d of %q not found", id, profile)
	}
	if err != nil {
		return err
	}
	return d.SaveSnapshot(ctx, profile, []byte(body), time.Now())
}

// ─── Persister ──────────────────────────────────────────────────────────────

// SnapshotStore persists the snapshots of one profile.
type SnapshotStore struct {
	db      *DB
	profile string
	now     func() time.Time
}

// Snapshots returns the persister for profile.
func (d *DB) Snapshots(profile string) *SnapshotStore {
	return &SnapshotStore{db: d, profile: profile, now: time.Now}
}

// Save stores data as the current snapshot.
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	return s.db.SaveSnapshot(ctx, s.profile, data, s.now())
}

// Load returns the current snapshot, or nil if none exists.
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	return s.db.LoadSnapshot(ctx, s.profile)
}
