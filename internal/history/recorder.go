// Package history keeps a metadata log of generation attempts. Image bytes are
// never stored.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shotcraft/internal/domain"
)

// Outcome classifies how an attempt ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeEmpty     Outcome = "empty"
	OutcomeFailed    Outcome = "failed"
)

// Attempt is one finished generation.
type Attempt struct {
	ID         uuid.UUID     `json:"id"`
	SessionID  uuid.UUID     `json:"sessionId"`
	Prompt     string        `json:"prompt"`
	ImageCount int           `json:"imageCount"`
	Outcome    Outcome       `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	ResultMIME string        `json:"resultMime,omitempty"`
	Duration   time.Duration `json:"-"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Recorder stores finished attempts.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
	Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]Attempt, error)
	Get(ctx context.Context, sessionID, id uuid.UUID) (Attempt, error)
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Attempt) error { return nil }

func (NopRecorder) Recent(context.Context, uuid.UUID, int) ([]Attempt, error) {
	return []Attempt{}, nil
}

func (NopRecorder) Get(context.Context, uuid.UUID, uuid.UUID) (Attempt, error) {
	return Attempt{}, domain.ErrNotFound
}

var _ Recorder = NopRecorder{}
