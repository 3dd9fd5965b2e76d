// Package sqlite provides SQLite-based persistent storage for daywatch.
// Uses WAL mode for crash-safe writes across unclean shutdowns.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/daywatch-app/daywatch/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Key-value store for day-scoped tracker state. Values are
		// strings; the tracker owns encoding (integers as decimal,
		// timestamps as unix seconds).
		`CREATE TABLE IF NOT EXISTS tracker (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Delivery log for user notifications.
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			kind       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			urgency    TEXT NOT NULL DEFAULT 'normal',
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_created ON notifications(created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Tracker Key-Value ──────────────────────────────────────────────────────

// SetTracker stores a tracker key-value pair.
func (d *DB) SetTracker(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO tracker (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetTracker retrieves a tracker value by key.
// Returns "" if the key is not present (first run, or cleared state).
func (d *DB) GetTracker(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM tracker WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification appends to the delivery log.
func (d *DB) InsertNotification(n domain.Notification) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO notifications (kind, title, body, urgency, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(n.Kind), n.Title, n.Body, string(n.Urgency), n.CreatedAt.Unix(), n.Shown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListRecentNotifications returns the newest entries in the delivery log.
func (d *DB) ListRecentNotifications(limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, kind, title, body, urgency, created_at, shown
		 FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &n.Urgency, &createdAt, &n.Shown); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks a delivery-log entry as shown.
func (d *DB) MarkNotificationShown(id int64) error {
	_, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	return err
}

// CountNotificationsSince returns how many notifications of the given kind
// were logged at or after the cutoff.
func (d *DB) CountNotificationsSince(kind domain.TriggerKind, cutoff time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE kind = ? AND created_at >= ?`,
		string(kind), cutoff.Unix(),
	).Scan(&count)
	return count, err
}
