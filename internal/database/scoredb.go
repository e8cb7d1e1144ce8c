package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/benchdist/internal/model"
)

// FileName is the name of the cache database inside the data directory.
const FileName = "benchdist.db"

// AppendChunkSize is the number of score pairs committed per transaction.
// A batch larger than this is written as several transactions, so a failure
// part way through keeps the chunks that were already committed.
const AppendChunkSize = 500

// ScoreDB is the persistent score cache.
// It is safe for concurrent use; writers for the same key are serialized.
type ScoreDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// logger reports non-fatal failures such as a failed Create.
	logger *slog.Logger

	// locks holds one write mutex per normalized key.
	locks keyLocks
}

// Options configures ScoreDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers do not block the writer.
	EnableWAL bool

	// Logger receives warnings. slog.Default() is used when nil.
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the score cache in dbDir.
// Every failure wraps ErrStoreUnavailable.
func Open(dbDir string, opts Options) (*ScoreDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: database not found at %s", ErrStoreUnavailable, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("%w: failed to check database path: %w", ErrStoreUnavailable, err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", ErrStoreUnavailable, err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStoreUnavailable, err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sdb := &ScoreDB{
		db:     db,
		dbPath: dbPath,
		logger: logger,
		locks:  keyLocks{locks: make(map[string]*sync.Mutex)},
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrStoreUnavailable, err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to create tables: %w", ErrStoreUnavailable, err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (s *ScoreDB) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ScoreDB) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *ScoreDB) createTables() error {
	schema := `
	-- One row per normalized key
	CREATE TABLE IF NOT EXISTS series (
		key TEXT PRIMARY KEY,
		identifier TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Score pairs, ordered by id within a key
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		series_key TEXT NOT NULL,
		single_core_score INTEGER NOT NULL CHECK (single_core_score >= 0),
		multi_core_score INTEGER NOT NULL CHECK (multi_core_score >= 0)
	);

	CREATE INDEX IF NOT EXISTS idx_scores_series ON scores(series_key, id);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Exists reports whether key has been created or has stored scores.
// Scores written after a failed Create still count, so they are read back
// instead of being appended to again on the next run.
func (s *ScoreDB) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
	SELECT EXISTS(SELECT 1 FROM series WHERE key = ?)
		OR EXISTS(SELECT 1 FROM scores WHERE series_key = ?)
	`, key, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check series %q: %w", ErrStoreUnavailable, key, err)
	}
	return exists, nil
}

// Create registers key. It is a no-op when key already exists.
// identifier is kept for display in cache listings only.
func (s *ScoreDB) Create(ctx context.Context, key, identifier string) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO series (key, identifier) VALUES (?, ?)
	ON CONFLICT(key) DO NOTHING
	`, key, identifier)
	if err != nil {
		return fmt.Errorf("%w: failed to create series %q: %w", ErrStoreWrite, key, err)
	}
	return nil
}

// Append writes pairs for key in order.
//
// Pairs are committed in chunks of AppendChunkSize. The batch as a whole is
// not atomic: when a later chunk fails the earlier ones stay committed.
func (s *ScoreDB) Append(ctx context.Context, key string, pairs []model.ScorePair) error {
	unlock := s.locks.lock(key)
	defer unlock()

	return s.append(ctx, key, pairs)
}

// append writes pairs for key. The caller holds the key lock.
func (s *ScoreDB) append(ctx context.Context, key string, pairs []model.ScorePair) error {
	for start := 0; start < len(pairs); start += AppendChunkSize {
		end := min(start+AppendChunkSize, len(pairs))
		if err := s.appendChunk(ctx, key, pairs[start:end]); err != nil {
			return fmt.Errorf("%w: series %q rows %d-%d: %w", ErrStoreWrite, key, start, end-1, err)
		}
	}
	return nil
}

// appendChunk inserts one chunk inside a single transaction.
func (s *ScoreDB) appendChunk(ctx context.Context, key string, pairs []model.ScorePair) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO scores (series_key, single_core_score, multi_core_score)
	VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range pairs {
		if _, err = stmt.ExecContext(ctx, key, p.SingleCore, p.MultiCore); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Read returns every pair stored for key in storage order.
// A key that was never created yields ErrStoreRead wrapping ErrSeriesNotFound.
func (s *ScoreDB) Read(ctx context.Context, key string) ([]model.ScorePair, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %w: %q", ErrStoreRead, ErrSeriesNotFound, key)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT single_core_score, multi_core_score
	FROM scores
	WHERE series_key = ?
	ORDER BY id
	`, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query series %q: %w", ErrStoreRead, key, err)
	}
	defer rows.Close()

	pairs := make([]model.ScorePair, 0)
	for rows.Next() {
		var single, multi int64
		if err := rows.Scan(&single, &multi); err != nil {
			return nil, fmt.Errorf("%w: failed to scan score of %q: %w", ErrStoreRead, key, err)
		}
		if single < 0 || multi < 0 || single > maxScore || multi > maxScore {
			return nil, fmt.Errorf("%w: corrupt score (%d, %d) in %q", ErrStoreRead, single, multi, key)
		}
		pairs = append(pairs, model.ScorePair{SingleCore: uint32(single), MultiCore: uint32(multi)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}

	return pairs, nil
}

// maxScore is the largest value a stored score may hold.
const maxScore = 1<<32 - 1

// Persist stores a freshly downloaded series unless key is already cached.
//
// It holds the key lock for the whole check-create-append sequence, so two
// targets that normalize to the same key never both append. The return value
// is false when another writer got there first and nothing was written.
//
// A failed Create is logged and the append is attempted anyway.
func (s *ScoreDB) Persist(ctx context.Context, key, identifier string, pairs []model.ScorePair) (bool, error) {
	unlock := s.locks.lock(key)
	defer unlock()

	exists, err := s.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := s.Create(ctx, key, identifier); err != nil {
		s.logger.Warn("failed to create series, appending anyway",
			"key", key,
			"error", err,
		)
	}

	if err := s.append(ctx, key, pairs); err != nil {
		return false, err
	}

	return true, nil
}

// SeriesInfo summarizes one cached series.
type SeriesInfo struct {
	// Key is the normalized key.
	Key string

	// Identifier is the identifier the series was first fetched for.
	Identifier string

	// CreatedAt is when the series was created.
	CreatedAt time.Time

	// Samples is the number of stored score pairs.
	Samples int
}

// ListSeries returns every cached series ordered by key.
// Keys holding scores without a series row are listed under their key.
func (s *ScoreDB) ListSeries(ctx context.Context) ([]SeriesInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT k.key, COALESCE(s.identifier, k.key), s.created_at, COUNT(sc.id)
	FROM (SELECT key FROM series UNION SELECT series_key FROM scores) k
	LEFT JOIN series s ON s.key = k.key
	LEFT JOIN scores sc ON sc.series_key = k.key
	GROUP BY k.key
	ORDER BY k.key
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list series: %w", ErrStoreRead, err)
	}
	defer rows.Close()

	var results []SeriesInfo
	for rows.Next() {
		var info SeriesInfo
		var created sql.NullString
		if err := rows.Scan(&info.Key, &info.Identifier, &created, &info.Samples); err != nil {
			return nil, fmt.Errorf("%w: failed to scan series: %w", ErrStoreRead, err)
		}
		if created.Valid {
			info.CreatedAt = parseTimestamp(created.String)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}

	return results, nil
}

// keyLocks hands out one mutex per key.
// Entries are never removed; a run only touches a handful of keys.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for key and returns its release function.
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp parses a SQLite timestamp, returning zero time when no
// known format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
