package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shotcraft/internal/domain"
	"shotcraft/internal/sqlinline"
)

type execCall struct {
	query string
	args  []any
}

type stubSQL struct {
	execs   []execCall
	execErr error
	rows    []Attempt
	limit   any
}

func (s *stubSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if query != sqlinline.QGetSessionAttempt || len(args) != 2 {
		return stubRow{err: fmt.Errorf("unexpected query row: %s", query)}
	}
	for _, a := range s.rows {
		if a.SessionID == args[0] && a.ID == args[1] {
			return &attemptRows{rows: []Attempt{a}, idx: 1}
		}
	}
	return stubRow{err: pgx.ErrNoRows}
}

func (s *stubSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if query != sqlinline.QListSessionAttempts {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("unexpected args count: %d", len(args))
	}
	s.limit = args[1]
	return &attemptRows{rows: s.rows}, nil
}

type stubRow struct {
	err error
}

func (r stubRow) Scan(...any) error { return r.err }

type attemptRows struct {
	rows []Attempt
	idx  int
}

func (r *attemptRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *attemptRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	if len(dest) != 9 {
		return fmt.Errorf("unexpected scan args: %d", len(dest))
	}
	a := r.rows[r.idx-1]
	*dest[0].(*uuid.UUID) = a.ID
	*dest[1].(*uuid.UUID) = a.SessionID
	*dest[2].(*string) = a.Prompt
	*dest[3].(*int) = a.ImageCount
	*dest[4].(*string) = string(a.Outcome)
	*dest[5].(*string) = a.Error
	*dest[6].(*string) = a.ResultMIME
	*dest[7].(*int64) = a.Duration.Milliseconds()
	*dest[8].(*time.Time) = a.CreatedAt
	return nil
}

func (r *attemptRows) Close()                                       {}
func (r *attemptRows) Err() error                                   { return nil }
func (r *attemptRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *attemptRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *attemptRows) Values() ([]any, error)                       { return nil, nil }
func (r *attemptRows) RawValues() [][]byte                          { return nil }
func (r *attemptRows) Conn() *pgx.Conn                              { return nil }

func TestPGRecorderRecord(t *testing.T) {
	db := &stubSQL{}
	rec := NewPGRecorder(db)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	session := uuid.New()
	err := rec.Record(context.Background(), Attempt{
		SessionID:  session,
		Prompt:     "Combine...",
		ImageCount: 2,
		Outcome:    OutcomeSucceeded,
		ResultMIME: "image/png",
		Duration:   1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if len(db.execs) != 1 {
		t.Fatalf("exec calls = %d, want 1", len(db.execs))
	}
	call := db.execs[0]
	if call.query != sqlinline.QInsertGenerationAttempt {
		t.Fatalf("unexpected query: %s", call.query)
	}
	if len(call.args) != 9 {
		t.Fatalf("args = %d, want 9", len(call.args))
	}
	if id, ok := call.args[0].(uuid.UUID); !ok || id == uuid.Nil {
		t.Fatalf("expected generated attempt id, got %#v", call.args[0])
	}
	if call.args[1] != session {
		t.Fatalf("session arg = %#v", call.args[1])
	}
	if call.args[4] != "succeeded" {
		t.Fatalf("outcome arg = %#v", call.args[4])
	}
	if call.args[7] != int64(1500) {
		t.Fatalf("duration arg = %#v", call.args[7])
	}
	if call.args[8] != fixed {
		t.Fatalf("created_at arg = %#v", call.args[8])
	}
}

func TestPGRecorderRecordError(t *testing.T) {
	boom := errors.New("connection refused")
	rec := NewPGRecorder(&stubSQL{execErr: boom})
	if err := rec.Record(context.Background(), Attempt{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestPGRecorderEnsureSchema(t *testing.T) {
	db := &stubSQL{}
	if err := NewPGRecorder(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if len(db.execs) != 1 || db.execs[0].query != sqlinline.QCreateGenerationAttempts {
		t.Fatalf("unexpected exec calls: %#v", db.execs)
	}
}

func TestPGRecorderRecent(t *testing.T) {
	session := uuid.New()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	db := &stubSQL{rows: []Attempt{
		{ID: uuid.New(), SessionID: session, Prompt: "b", ImageCount: 1, Outcome: OutcomeFailed, Error: "quota", Duration: time.Second, CreatedAt: created},
		{ID: uuid.New(), SessionID: session, Prompt: "a", ImageCount: 2, Outcome: OutcomeSucceeded, ResultMIME: "image/png", Duration: 2 * time.Second, CreatedAt: created.Add(-time.Minute)},
	}}

	got, err := NewPGRecorder(db).Recent(context.Background(), session, 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if db.limit != defaultRecentLimit {
		t.Fatalf("limit = %#v, want %d", db.limit, defaultRecentLimit)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Outcome != OutcomeFailed || got[0].Error != "quota" || got[0].Duration != time.Second {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if got[1].Prompt != "a" || got[1].ResultMIME != "image/png" {
		t.Fatalf("got[1] = %+v", got[1])
	}

	if _, err := NewPGRecorder(db).Recent(context.Background(), session, 1000); err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if db.limit != maxRecentLimit {
		t.Fatalf("limit = %#v, want clamp to %d", db.limit, maxRecentLimit)
	}
}

func TestPGRecorderGet(t *testing.T) {
	session := uuid.New()
	want := Attempt{
		ID:         uuid.New(),
		SessionID:  session,
		Prompt:     "Combine...",
		ImageCount: 3,
		Outcome:    OutcomeEmpty,
		Duration:   750 * time.Millisecond,
		CreatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	rec := NewPGRecorder(&stubSQL{rows: []Attempt{want}})

	got, err := rec.Get(context.Background(), session, want.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != want.ID || got.Outcome != OutcomeEmpty || got.ImageCount != 3 || got.Duration != want.Duration {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if _, err := rec.Get(context.Background(), uuid.New(), want.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("other session err = %v, want domain.ErrNotFound", err)
	}
	if _, err := rec.Get(context.Background(), session, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id err = %v, want domain.ErrNotFound", err)
	}
}

func TestPGRecorderGetScanError(t *testing.T) {
	boom := errors.New("conn reset")
	db := &failingRowSQL{err: boom}
	if _, err := NewPGRecorder(db).Get(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, boom) || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

type failingRowSQL struct {
	stubSQL
	err error
}

func (f *failingRowSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return stubRow{err: f.err}
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	if err := rec.Record(context.Background(), Attempt{}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	got, err := rec.Recent(context.Background(), uuid.New(), 5)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Recent = %#v, %v; want empty non-nil slice", got, err)
	}
	if _, err := rec.Get(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get err = %v, want domain.ErrNotFound", err)
	}
}
