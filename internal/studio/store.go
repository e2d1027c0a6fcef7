package studio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shotcraft/internal/domain"
)

// Store keeps sessions in memory, keyed by the session cookie id.
type Store struct {
	deps Deps
	log  zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewStore(deps Deps) *Store {
	deps = deps.withDefaults()
	return &Store{
		deps:     deps,
		log:      deps.Logger.With().Str("component", "session_store").Logger(),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Get returns an existing session or domain.ErrNotFound.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

// GetOrCreate returns the session for id, creating an idle one when missing.
// created reports whether a new session was made.
func (s *Store) GetOrCreate(id uuid.UUID) (sess *Session, created bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess, false
	}
	sess = NewSession(id, s.deps)
	s.sessions[id] = sess
	s.log.Debug().Str("session_id", id.String()).Msg("session created")
	return sess, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than idle. A session with an attempt
// in flight is never dropped.
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := s.deps.Now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		last, state := sess.lastActive()
		if state == StateLoading || last.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Int("remaining", len(s.sessions)).Msg("idle sessions swept")
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(idle)
		}
	}
}
