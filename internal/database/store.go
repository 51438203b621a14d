package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/forummirror/internal/model"
)

// Store provides SQLite-based storage for mirrored forum data.
// It manages connection pooling and provides lookup and save operations
// for the four entity types.
//
// Design decision: We use a single database file for the whole mirror
// rather than one file per room. Cross-entity lookups (thread starter,
// post author) stay cheap and backup/restore is one file copy.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "forummirror.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and the crawl is a single sequential
	// flow anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the path of the SQLite database file backing the store.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Users are referenced by the threads and posts they authored.
	-- registered is NULL for legacy/deleted accounts.
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		registered DATETIME
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	-- Threads are looked up by (name, room_id); starter_id is set at most
	-- once, from the thread's first post.
	CREATE TABLE IF NOT EXISTS threads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		room_id INTEGER NOT NULL REFERENCES rooms(id),
		starter_id INTEGER REFERENCES users(id),
		UNIQUE(name, room_id)
	);

	CREATE INDEX IF NOT EXISTS idx_threads_room ON threads(room_id);

	-- Posts are keyed by the forum's own post identifier. A row's presence
	-- is the sole proof the post has been ingested.
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY,
		thread_id INTEGER NOT NULL REFERENCES threads(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		posted DATETIME NOT NULL,
		body TEXT NOT NULL,
		url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_thread ON posts(thread_id);
	CREATE INDEX IF NOT EXISTS idx_posts_user ON posts(user_id);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// FindUserByName returns the user with the given display name,
// or nil if no such user exists.
func (s *Store) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	var registered sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, registered FROM users WHERE name = ?", name,
	).Scan(&u.ID, &u.Name, &registered)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if registered.Valid && registered.String != "" {
		t := parseTimestamp(registered.String)
		u.Registered = &t
	}
	return &u, nil
}

// SaveUser inserts the user if it is new (ID zero) or updates the existing
// row. On insert the assigned ID is written back to u.
func (s *Store) SaveUser(ctx context.Context, u *model.User) error {
	var registered any
	if u.Registered != nil {
		registered = formatTimestamp(*u.Registered)
	}

	if u.ID == 0 {
		result, err := s.db.ExecContext(ctx,
			"INSERT INTO users (name, registered) VALUES (?, ?)",
			u.Name, registered,
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		u.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read user id: %w", err)
		}
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, registered = ? WHERE id = ?",
		u.Name, registered, u.ID,
	); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// FindRoomByName returns the room with the given name,
// or nil if no such room exists.
func (s *Store) FindRoomByName(ctx context.Context, name string) (*model.Room, error) {
	var r model.Room

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM rooms WHERE name = ?", name,
	).Scan(&r.ID, &r.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &r, nil
}

// SaveRoom inserts the room if it is new (ID zero) or updates the existing
// row. Saving an unchanged room is a no-op at the data level.
func (s *Store) SaveRoom(ctx context.Context, r *model.Room) error {
	if r.ID == 0 {
		result, err := s.db.ExecContext(ctx,
			"INSERT INTO rooms (name) VALUES (?)", r.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}
		r.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read room id: %w", err)
		}
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET name = ? WHERE id = ?", r.Name, r.ID,
	); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return nil
}

// FindThreadByNameAndRoom returns the thread with the given name in the
// given room, or nil if no such thread exists.
func (s *Store) FindThreadByNameAndRoom(ctx context.Context, name string, roomID int64) (*model.Thread, error) {
	var t model.Thread
	var starter sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, room_id, starter_id FROM threads WHERE name = ? AND room_id = ?",
		name, roomID,
	).Scan(&t.ID, &t.Name, &t.RoomID, &starter)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find thread: %w", err)
	}

	if starter.Valid {
		id := starter.Int64
		t.StarterID = &id
	}
	return &t, nil
}

// SaveThread inserts the thread if it is new (ID zero) or updates the
// existing row. Updates are used to set the starter once the thread's
// first post is ingested.
func (s *Store) SaveThread(ctx context.Context, t *model.Thread) error {
	var starter any
	if t.StarterID != nil {
		starter = *t.StarterID
	}

	if t.ID == 0 {
		result, err := s.db.ExecContext(ctx,
			"INSERT INTO threads (name, room_id, starter_id) VALUES (?, ?, ?)",
			t.Name, t.RoomID, starter,
		)
		if err != nil {
			return fmt.Errorf("failed to insert thread: %w", err)
		}
		t.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read thread id: %w", err)
		}
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE threads SET name = ?, room_id = ?, starter_id = ? WHERE id = ?",
		t.Name, t.RoomID, starter, t.ID,
	); err != nil {
		return fmt.Errorf("failed to update thread: %w", err)
	}
	return nil
}

// PostExists reports whether a post with the given forum identifier has
// already been ingested. This is the idempotency gate: it runs once per
// listing entry and once per post fragment, so it must stay a point lookup
// on the primary key.
func (s *Store) PostExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM posts WHERE id = ?", id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return true, nil
}

// InsertPost inserts a new post. Posts are immutable once created: there is
// no update path because a post's content is never re-ingested once its
// identifier exists.
func (s *Store) InsertPost(ctx context.Context, p *model.Post) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO posts (id, thread_id, user_id, posted, body, url) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.ThreadID, p.UserID, formatTimestamp(p.Posted), p.Body, p.URL,
	); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Counts holds the entity totals reported to the operator.
type Counts struct {
	// Users is the number of stored users.
	Users int64

	// Rooms is the number of stored rooms.
	Rooms int64

	// Threads is the number of stored threads.
	Threads int64

	// Posts is the number of stored posts.
	Posts int64
}

// EntityCounts returns the current totals for all entity types.
func (s *Store) EntityCounts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int64
	}{
		{"users", &c.Users},
		{"rooms", &c.Rooms},
		{"threads", &c.Threads},
		{"posts", &c.Posts},
	} {
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+q.table,
		).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", q.table, err)
		}
	}
	return c, nil
}

// ThreadSummary is a thread row joined with its room name and post count,
// used for the stats report.
type ThreadSummary struct {
	// Thread is the stored thread.
	Thread model.Thread

	// RoomName is the name of the owning room.
	RoomName string

	// PostCount is the number of posts ingested for the thread.
	PostCount int64

	// LastPosted is the timestamp of the most recent ingested post.
	LastPosted time.Time
}

// RecentThreads returns up to limit threads ordered by their most recent
// ingested post, newest first. Threads with no posts yet are omitted.
func (s *Store) RecentThreads(ctx context.Context, limit int) ([]ThreadSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT t.id, t.name, t.room_id, t.starter_id, r.name,
	       COUNT(p.id), MAX(p.posted)
	FROM threads t
	JOIN rooms r ON r.id = t.room_id
	JOIN posts p ON p.thread_id = t.id
	GROUP BY t.id
	ORDER BY MAX(p.posted) DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent threads: %w", err)
	}
	defer rows.Close()

	var results []ThreadSummary
	for rows.Next() {
		var ts ThreadSummary
		var starter sql.NullInt64
		var lastPosted string

		if err := rows.Scan(
			&ts.Thread.ID,
			&ts.Thread.Name,
			&ts.Thread.RoomID,
			&starter,
			&ts.RoomName,
			&ts.PostCount,
			&lastPosted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan thread summary: %w", err)
		}

		if starter.Valid {
			id := starter.Int64
			ts.Thread.StarterID = &id
		}
		ts.LastPosted = parseTimestamp(lastPosted)
		results = append(results, ts)
	}

	return results, rows.Err()
}

// timestampFormat is the canonical storage format for timestamps.
// All times are stored in UTC so relative-date resolution stays consistent
// between ingestion runs.
const timestampFormat = "2006-01-02 15:04:05"

// formatTimestamp renders a timestamp for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampFormat,           // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
