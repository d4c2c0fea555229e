package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- classifications caches oracle quality scores keyed by chunk content hash
	CREATE TABLE IF NOT EXISTS classifications (
		id TEXT PRIMARY KEY,
		chunk_hash TEXT NOT NULL,
		model TEXT NOT NULL,
		score INTEGER NOT NULL,
		reason TEXT,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(chunk_hash, model)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		model TEXT,
		status TEXT DEFAULT 'running',
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		status TEXT NOT NULL,
		paragraphs INTEGER DEFAULT 0,
		chunks_total INTEGER DEFAULT 0,
		chunks_repaired INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, path),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- section_labels stores user-defined header/footer phrases grouped into named sets
	CREATE TABLE IF NOT EXISTS section_labels (
		id TEXT PRIMARY KEY,
		set_name TEXT NOT NULL,
		phrase TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(set_name, phrase)
	);

	CREATE INDEX IF NOT EXISTS idx_classification_lookup ON classifications(chunk_hash, model);
	CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
	CREATE INDEX IF NOT EXISTS idx_labels_set ON section_labels(set_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CachedClassification returns the cached score and reason for a chunk under
// the given model. The second-to-last return is false on a cache miss.
func (s *Store) CachedClassification(ctx context.Context, chunkText, model string) (int, string, bool, error) {
	key := chunkKey(chunkText)

	var score int
	var reason string
	err := s.db.QueryRowContext(ctx,
		`SELECT score, reason FROM classifications WHERE chunk_hash = ? AND model = ?`,
		key, model).Scan(&score, &reason)

	if err == sql.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE classifications SET usage_count = usage_count + 1, last_used = ? WHERE chunk_hash = ? AND model = ?`,
		time.Now(), key, model)

	return score, reason, true, err
}

// SaveClassification caches an oracle verdict for a chunk and model pair.
func (s *Store) SaveClassification(ctx context.Context, chunkText, model string, score int, reason string) error {
	id := fmt.Sprintf("cl_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO classifications (id, chunk_hash, model, score, reason, usage_count, last_used, created_at) VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		id, chunkKey(chunkText), model, score, reason, time.Now(), time.Now())
	return err
}

// CacheStats summarises the classification cache.
type CacheStats struct {
	TotalEntries int
	TotalUsage   int
	Models       int
}

// Stats returns summary statistics for the classification cache.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(usage_count), 0),
			COUNT(DISTINCT model)
		FROM classifications`).Scan(
		&stats.TotalEntries,
		&stats.TotalUsage,
		&stats.Models,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ClearClassifications removes all cached classifications.
func (s *Store) ClearClassifications(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM classifications`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Run represents one invocation of a batch command.
type Run struct {
	ID         string
	Command    string
	Model      string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// StartRun records the beginning of a batch run.
func (s *Store) StartRun(ctx context.Context, id, command, model string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, model, status) VALUES (?, ?, ?, 'running')`,
		id, command, model)
	return err
}

// FinishRun marks a run as finished with the given status.
func (s *Store) FinishRun(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now(), id)
	return err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, command, model, status, started_at, finished_at FROM runs WHERE id = ?`,
		id).Scan(&r.ID, &r.Command, &r.Model, &r.Status, &r.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// defaults to 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, model, status, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Command, &r.Model, &r.Status, &r.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunFile is the per-file outcome of a batch run.
type RunFile struct {
	RunID          string
	Path           string
	Status         string
	Paragraphs     int
	ChunksTotal    int
	ChunksRepaired int
	Error          string
	CreatedAt      time.Time
}

// RecordFile persists the outcome for one input file of a run.
func (s *Store) RecordFile(ctx context.Context, runID, path, status string, paragraphs, chunksTotal, chunksRepaired int, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run_files (run_id, path, status, paragraphs, chunks_total, chunks_repaired, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, path, status, paragraphs, chunksTotal, chunksRepaired, errMsg)
	return err
}

// ListRunFiles returns the per-file records of a run ordered by path.
func (s *Store) ListRunFiles(ctx context.Context, runID string) ([]RunFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, status, paragraphs, chunks_total, chunks_repaired, error, created_at FROM run_files WHERE run_id = ? ORDER BY path`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.RunID, &f.Path, &f.Status, &f.Paragraphs, &f.ChunksTotal, &f.ChunksRepaired, &f.Error, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// LabelEntry is a row in the section_labels table.
type LabelEntry struct {
	ID        string
	Set       string
	Phrase    string
	CreatedAt time.Time
}

// AddLabel inserts a header/footer phrase into a named label set.
func (s *Store) AddLabel(ctx context.Context, set, phrase string) error {
	id := fmt.Sprintf("lb_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO section_labels (id, set_name, phrase) VALUES (?, ?, ?)`,
		id, set, normalizeText(phrase))
	return err
}

// ListLabels returns label entries, optionally filtered by set name (pass an
// empty string to return everything).
func (s *Store) ListLabels(ctx context.Context, set string) ([]LabelEntry, error) {
	query := `SELECT id, set_name, phrase, created_at FROM section_labels`
	var args []interface{}

	if set != "" {
		query += ` WHERE set_name = ?`
		args = append(args, set)
	}
	query += ` ORDER BY set_name, phrase`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LabelEntry
	for rows.Next() {
		var e LabelEntry
		if err := rows.Scan(&e.ID, &e.Set, &e.Phrase, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetLabelPhrases returns the phrases of one label set, ready to feed into
// the reconstruction pass.
func (s *Store) GetLabelPhrases(ctx context.Context, set string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phrase FROM section_labels WHERE set_name = ? ORDER BY phrase`,
		set)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phrases []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}

// DeleteLabel removes a label entry by ID.
func (s *Store) DeleteLabel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM section_labels WHERE id = ?`, id)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// chunkKey derives the cache key for a chunk: whitespace-trimmed, NFC
// normalised, then SHA-256 hashed so large chunks stay cheap to index.
func chunkKey(text string) string {
	sum := sha256.Sum256([]byte(normalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
