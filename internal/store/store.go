// Package store handles SQLite persistence of learner profiles and attempts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tachy/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps stored timestamps lexically ordered.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store wraps SQLite access for learner data.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS learners (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			learner_id TEXT NOT NULL,
			modality TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (learner_id, modality)
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			learner_id TEXT NOT NULL,
			modality TEXT NOT NULL,
			at TEXT NOT NULL,
			score REAL NOT NULL,
			rating REAL NOT NULL,
			deviation REAL NOT NULL,
			item_rating REAL NOT NULL,
			params TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_learner_at ON attempts(learner_id, at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_modality ON attempts(modality);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// EnsureLearner returns the id of the learner called name, creating it if needed.
func (s *Store) EnsureLearner(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("learner name is empty")
	}
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM learners WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO learners (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, s.now().UTC().Format(timeLayout),
	); err != nil {
		return "", err
	}
	return id, nil
}

// LookupLearner returns the id of an existing learner called name. It never
// creates one and wraps ErrNotFound when there is none.
func (s *Store) LookupLearner(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM learners WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: learner %q", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ProfileData returns the raw stored profile document.
func (s *Store) ProfileData(ctx context.Context, learnerID, modality string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM profiles WHERE learner_id = ? AND modality = ?`,
		learnerID, modality,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s/%s", ErrNotFound, learnerID, modality)
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// SaveProfile stores profile as JSON, replacing any previous version.
func (s *Store) SaveProfile(ctx context.Context, learnerID, modality string, profile any) error {
	return s.upsertProfile(ctx, s.db, learnerID, modality, profile)
}

func (s *Store) upsertProfile(ctx context.Context, ex execer, learnerID, modality string, profile any) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO profiles (learner_id, modality, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (learner_id, modality) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		learnerID, modality, string(data), s.now().UTC().Format(timeLayout),
	)
	return err
}

// ProfileDocuments returns every stored profile of a learner keyed by modality.
func (s *Store) ProfileDocuments(ctx context.Context, learnerID string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT modality, data FROM profiles WHERE learner_id = ? ORDER BY modality`, learnerID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string][]byte{}
	for rows.Next() {
		var modality, data string
		if err := rows.Scan(&modality, &data); err != nil {
			return nil, err
		}
		result[modality] = []byte(data)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertAttempt stores one outcome report.
func (s *Store) InsertAttempt(ctx context.Context, rec model.AttemptRecord) (int64, error) {
	return insertAttempt(ctx, s.db, rec)
}

// RecordAttempt saves the profile that results from an outcome and logs the
// outcome in one transaction. Neither is stored when either write fails.
func (s *Store) RecordAttempt(ctx context.Context, rec model.AttemptRecord, profile any) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if err = s.upsertProfile(ctx, tx, rec.Learner, rec.Modality, profile); err != nil {
		return 0, err
	}
	if id, err = insertAttempt(ctx, tx, rec); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertAttempt(ctx context.Context, ex execer, rec model.AttemptRecord) (int64, error) {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return 0, fmt.Errorf("failed to encode params: %w", err)
	}
	res, err := ex.ExecContext(ctx,
		`INSERT INTO attempts (learner_id, modality, at, score, rating, deviation, item_rating, params)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Learner,
		rec.Modality,
		rec.At.UTC().Format(timeLayout),
		rec.Score,
		rec.Rating,
		rec.Deviation,
		rec.ItemRating,
		string(params),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAttempts returns attempts filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptRecord, error) {
	clauses := []string{"learner_id = ?"}
	args := []any{cfg.Learner}
	if cfg.Modality != "" {
		clauses = append(clauses, "modality = ?")
		args = append(args, cfg.Modality)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, learner_id, modality, at, score, rating, deviation, item_rating, params
		FROM attempts
		WHERE %s
		ORDER BY at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptRecord
	for rows.Next() {
		var rec model.AttemptRecord
		var at, params string
		if err := rows.Scan(&rec.ID, &rec.Learner, &rec.Modality, &at, &rec.Score, &rec.Rating, &rec.Deviation, &rec.ItemRating, &params); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, err
		}
		rec.At = parsed
		if err := json.Unmarshal([]byte(params), &rec.Params); err != nil {
			return nil, fmt.Errorf("failed to decode params of attempt %d: %w", rec.ID, err)
		}
		attempts = append(attempts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}
