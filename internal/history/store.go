package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"transcriptor/internal/transcript"
)

// DefaultListLimit bounds List when callers pass a non-positive limit.
const DefaultListLimit = 20

// AttemptRecord is the persisted form of one provider invocation.
type AttemptRecord struct {
	Provider  string          `json:"provider"`
	Success   bool            `json:"success"`
	ErrorKind transcript.Kind `json:"error_kind,omitempty"`
	Error     string          `json:"error,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

// Entry is one recorded extraction.
type Entry struct {
	ID        int64
	RunID     string
	Reference string
	VideoID   string
	Success   bool
	Method    string
	FromCache bool
	CharCount int
	WordCount int
	ErrorKind transcript.Kind
	Error     string
	Attempts  []AttemptRecord
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Stats aggregates recorded outcomes.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	ByMethod  map[string]int
}

// Store manages extraction history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history: database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps the per-connection pragmas below in effect.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts an entry and returns its row id.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	attempts, err := json.Marshal(entry.Attempts)
	if err != nil {
		return 0, fmt.Errorf("marshal attempts: %w", err)
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO extractions (
            run_id, reference, video_id, success, method, from_cache,
            char_count, word_count, error_kind, error_message, attempts_json,
            elapsed_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(entry.RunID),
		entry.Reference,
		nullableString(entry.VideoID),
		boolToInt(entry.Success),
		nullableString(entry.Method),
		boolToInt(entry.FromCache),
		entry.CharCount,
		entry.WordCount,
		nullableString(string(entry.ErrorKind)),
		nullableString(entry.Error),
		string(attempts),
		entry.Elapsed.Milliseconds(),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert extraction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const entryColumns = "id, run_id, reference, video_id, success, method, from_cache, char_count, word_count, error_kind, error_message, attempts_json, elapsed_ms, created_at"

// List returns the most recent entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM extractions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns outcome counts across all recorded extractions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(method, ''), success, COUNT(1) FROM extractions GROUP BY method, success`)
	if err != nil {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByMethod: make(map[string]int)}
	for rows.Next() {
		var (
			method  string
			success int
			count   int
		)
		if err := rows.Scan(&method, &success, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		if success != 0 {
			stats.Succeeded += count
			stats.ByMethod[method] += count
		} else {
			stats.Failed += count
		}
	}
	return stats, rows.Err()
}

// Clear removes every recorded entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM extractions`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry        Entry
		runID        sql.NullString
		videoID      sql.NullString
		success      int
		method       sql.NullString
		fromCache    int
		errorKind    sql.NullString
		errorMessage sql.NullString
		attempts     sql.NullString
		elapsedMS    int64
		createdRaw   string
	)
	if err := scanner.Scan(
		&entry.ID,
		&runID,
		&entry.Reference,
		&videoID,
		&success,
		&method,
		&fromCache,
		&entry.CharCount,
		&entry.WordCount,
		&errorKind,
		&errorMessage,
		&attempts,
		&elapsedMS,
		&createdRaw,
	); err != nil {
		return Entry{}, fmt.Errorf("scan extraction: %w", err)
	}
	entry.RunID = runID.String
	entry.VideoID = videoID.String
	entry.Success = success != 0
	entry.Method = method.String
	entry.FromCache = fromCache != 0
	entry.ErrorKind = transcript.Kind(errorKind.String)
	entry.Error = errorMessage.String
	entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if attempts.Valid && attempts.String != "" {
		if err := json.Unmarshal([]byte(attempts.String), &entry.Attempts); err != nil {
			return Entry{}, fmt.Errorf("decode attempts for entry %d: %w", entry.ID, err)
		}
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
