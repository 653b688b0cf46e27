// Package store keeps a history of finished marble game runs in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"

	"marblering/marblegame"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("store: run not found")

// Run is one persisted game outcome.
type Run struct {
	ID         string
	Players    int
	LastMarble uint64
	Marbles    uint64
	HighScore  uint64
	Winner     int
	RingLen    int
	Digest     string // hex SHA3-256 of the final ring
	Scores     []uint64
	Elapsed    time.Duration
	CreatedAt  time.Time
}

// NewRun converts a finished game into a Run with a fresh time-ordered ID.
func NewRun(res marblegame.Result) (Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("store: run id: %w", err)
	}
	return Run{
		ID:         id.String(),
		Players:    res.Players,
		LastMarble: res.LastMarble,
		Marbles:    res.Marbles,
		HighScore:  res.HighScore,
		Winner:     res.Winner,
		RingLen:    res.RingLen,
		Digest:     hex.EncodeToString(res.Digest[:]),
		Scores:     res.Scores,
		Elapsed:    res.Elapsed,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Store wraps the SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Safe to call repeatedly on the same file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun inserts run. Saving the same ID twice is a no-op.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	scores, err := sonnet.Marshal(run.Scores)
	if err != nil {
		return fmt.Errorf("save run: encode scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, players, last_marble, marbles, high_score, winner, ring_len, digest, scores, elapsed_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Players,
		int64(run.LastMarble),
		int64(run.Marbles),
		int64(run.HighScore),
		run.Winner,
		run.RingLen,
		run.Digest,
		scores,
		run.Elapsed.Nanoseconds(),
		run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

const selectRun = `
	SELECT id, players, last_marble, marbles, high_score, winner, ring_len, digest, scores, elapsed_ns, created_at
	FROM runs`

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// BestRun returns the highest-scoring stored run for a player count and
// marble count.
func (s *Store) BestRun(ctx context.Context, players int, marbles uint64) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+`
		WHERE players = ? AND marbles = ?
		ORDER BY high_score DESC, created_at ASC
		LIMIT 1`, players, int64(marbles))

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("best run: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                          Run
		lastMarble, marbles, high    int64
		scores                       []byte
		elapsedNs, createdAtUnixNano int64
	)
	err := sc.Scan(&run.ID, &run.Players, &lastMarble, &marbles, &high,
		&run.Winner, &run.RingLen, &run.Digest, &scores, &elapsedNs, &createdAtUnixNano)
	if err != nil {
		return Run{}, err
	}
	if err := sonnet.Unmarshal(scores, &run.Scores); err != nil {
		return Run{}, fmt.Errorf("decode scores of %s: %w", run.ID, err)
	}
	run.LastMarble = uint64(lastMarble)
	run.Marbles = uint64(marbles)
	run.HighScore = uint64(high)
	run.Elapsed = time.Duration(elapsedNs)
	run.CreatedAt = time.Unix(0, createdAtUnixNano).UTC()
	return run, nil
}
