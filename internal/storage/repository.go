// Package storage persists settlement splits and their deposits in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"conto/internal/core"
	"conto/internal/ledger"
)

// ErrNotFound is returned when a split ID does not exist.
var ErrNotFound = errors.New("split not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateSplit persists a new settlement record, assigning it a UUID if the
// ledger has not already set one.
func (r *SQLiteRepository) CreateSplit(ctx context.Context, s *ledger.Split) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO splits (id, creator_id, description, split_type, total_cents, collected_cents, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CreatorID, s.Description, string(s.SplitType), s.TotalCents, s.CollectedCents, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert split: %w", err)
	}

	for _, p := range s.Participants {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO split_participants (split_id, participant_id, share_cents, paid_cents, settled)
			 VALUES (?, ?, ?, ?, ?)`,
			s.ID, p.ID, p.ShareCents, p.PaidCents, boolToInt(p.Settled),
		)
		if err != nil {
			return fmt.Errorf("insert participant %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Split saved to SQLite",
		"split_id", s.ID,
		"split_type", string(s.SplitType),
		"total_cents", s.TotalCents,
		"participants", len(s.Participants))
	return nil
}

// GetSplit loads a split and its participants.
func (r *SQLiteRepository) GetSplit(ctx context.Context, id string) (*ledger.Split, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, creator_id, description, split_type, total_cents, collected_cents, status, created_at
		 FROM splits WHERE id = ?`, id)

	s, err := scanSplit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query split: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT participant_id, share_cents, paid_cents, settled
		 FROM split_participants WHERE split_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p ledger.Participant
		var settled int
		if err := rows.Scan(&p.ID, &p.ShareCents, &p.PaidCents, &settled); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Settled = settled != 0
		s.Participants = append(s.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	return s, nil
}

// SaveDeposit persists an already-applied deposit: it updates the split and
// the paying participant and appends an audit row, all in one transaction.
func (r *SQLiteRepository) SaveDeposit(ctx context.Context, s *ledger.Split, participantID string, amountCents int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE splits SET collected_cents = ?, status = ? WHERE id = ?`,
		s.CollectedCents, string(s.Status), s.ID)
	if err != nil {
		return fmt.Errorf("update split: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	for _, p := range s.Participants {
		if p.ID != participantID {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE split_participants SET paid_cents = ?, settled = ?
			 WHERE split_id = ? AND participant_id = ?`,
			p.PaidCents, boolToInt(p.Settled), s.ID, p.ID)
		if err != nil {
			return fmt.Errorf("update participant: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO deposits (split_id, participant_id, amount_cents) VALUES (?, ?, ?)`,
		s.ID, participantID, amountCents)
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpdateStatus persists a lifecycle transition (release, cancel).
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status ledger.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE splits SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSplits returns the most recent splits, newest first, without their
// participant rows.
func (r *SQLiteRepository) ListSplits(ctx context.Context, limit int) ([]ledger.Split, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, creator_id, description, split_type, total_cents, collected_cents, status, created_at
		 FROM splits ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	return collectSplits(rows)
}

// ListReleasedUnexported returns released splits the export worker has not
// written to the external sheet yet.
func (r *SQLiteRepository) ListReleasedUnexported(ctx context.Context, limit int) ([]ledger.Split, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, creator_id, description, split_type, total_cents, collected_cents, status, created_at
		 FROM splits WHERE status = ? AND exported_at IS NULL
		 ORDER BY created_at LIMIT ?`, string(ledger.StatusReleased), limit)
	if err != nil {
		return nil, fmt.Errorf("query unexported splits: %w", err)
	}
	defer rows.Close()

	return collectSplits(rows)
}

// MarkExported stamps a split as exported so the worker will not pick it up
// again.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE splits SET exported_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSplit(row rowScanner) (*ledger.Split, error) {
	var s ledger.Split
	var splitType, status string
	if err := row.Scan(&s.ID, &s.CreatorID, &s.Description, &splitType,
		&s.TotalCents, &s.CollectedCents, &status, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.SplitType = core.SplitType(splitType)
	s.Status = ledger.Status(status)
	return &s, nil
}

func collectSplits(rows *sql.Rows) ([]ledger.Split, error) {
	var splits []ledger.Split
	for rows.Next() {
		s, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		splits = append(splits, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate splits: %w", err)
	}
	return splits, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
