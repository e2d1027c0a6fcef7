package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shotcraft/internal/domain"
	"shotcraft/internal/infra"
	"shotcraft/internal/sqlinline"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// PGRecorder persists attempts in Postgres.
type PGRecorder struct {
	db  infra.SQLExecutor
	now func() time.Time
}

func NewPGRecorder(db infra.SQLExecutor) *PGRecorder {
	return &PGRecorder{db: db, now: time.Now}
}

// EnsureSchema creates the attempts table when missing.
func (r *PGRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, sqlinline.QCreateGenerationAttempts); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

func (r *PGRecorder) Record(ctx context.Context, a Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now().UTC()
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertGenerationAttempt,
		a.ID,
		a.SessionID,
		a.Prompt,
		a.ImageCount,
		string(a.Outcome),
		a.Error,
		a.ResultMIME,
		a.Duration.Milliseconds(),
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history: record attempt: %w", err)
	}
	return nil
}

// Recent lists a session's newest attempts first.
func (r *PGRecorder) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.Query(ctx, sqlinline.QListSessionAttempts, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list attempts: %w", err)
	}
	defer rows.Close()

	out := make([]Attempt, 0, limit)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan attempt: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate attempts: %w", err)
	}
	return out, nil
}

// Get loads one attempt of a session. Attempts of other sessions are not
// visible and report domain.ErrNotFound.
func (r *PGRecorder) Get(ctx context.Context, sessionID, id uuid.UUID) (Attempt, error) {
	a, err := scanAttempt(r.db.QueryRow(ctx, sqlinline.QGetSessionAttempt, sessionID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Attempt{}, fmt.Errorf("history: attempt %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("history: get attempt: %w", err)
	}
	return a, nil
}

func scanAttempt(row pgx.Row) (Attempt, error) {
	var (
		a          Attempt
		outcome    string
		durationMS int64
	)
	if err := row.Scan(
		&a.ID,
		&a.SessionID,
		&a.Prompt,
		&a.ImageCount,
		&outcome,
		&a.Error,
		&a.ResultMIME,
		&durationMS,
		&a.CreatedAt,
	); err != nil {
		return Attempt{}, err
	}
	a.Outcome = Outcome(outcome)
	a.Duration = time.Duration(durationMS) * time.Millisecond
	return a, nil
}

var _ Recorder = (*PGRecorder)(nil)
