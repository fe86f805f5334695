// Package memstore implements the gateway store in process memory. It
// backs tests and single-node deployments that run without PostgreSQL.
// Semantics mirror the postgresql package so callers behave the same
// under either driver.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tradegate/tradegate/internal/common/apperrors"
	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/dberror"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/models"
)

type Store struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*models.UserSession
	activities []*models.ActivityEntry
}

func New() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*models.UserSession),
	}
}

// UpsertSession inserts a session row or refreshes an existing one in
// place. CreatedAt on the passed struct is populated on return, keeping
// the original registration time on re-upsert.
func (s *Store) UpsertSession(ctx context.Context, session *models.UserSession) apperrors.Error {
	if session == nil {
		return dberror.ErrInvalidInput.Msg("session is nil")
	}
	if session.SessionID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing session ID")
	}
	if session.UserID == "" {
		return dberror.ErrInvalidInput.Msg("missing user ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := time.Now().UTC()
	if existing, ok := s.sessions[session.SessionID]; ok {
		createdAt = existing.CreatedAt
	}
	session.CreatedAt = createdAt

	stored := *session
	s.sessions[session.SessionID] = &stored
	return nil
}

// TouchSession updates the last-active timestamp of a session owned by
// the given user. Sessions of other users are left untouched.
func (s *Store) TouchSession(ctx context.Context, sessionID uuid.UUID, userID string, lastActive time.Time) apperrors.Error {
	if sessionID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing session ID")
	}
	if userID == "" {
		return dberror.ErrInvalidInput.Msg("missing user ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return dberror.ErrNotFound.Msg("session not found")
	}
	session.LastActiveAt = lastActive
	return nil
}

// ListUserSessions returns all sessions of a user, most recently
// active first.
func (s *Store) ListUserSessions(ctx context.Context, userID string) ([]*models.UserSession, apperrors.Error) {
	if userID == "" {
		return nil, dberror.ErrInvalidInput.Msg("missing user ID")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*models.UserSession
	for _, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		copied := *session
		sessions = append(sessions, &copied)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActiveAt.After(sessions[j].LastActiveAt)
	})
	return sessions, nil
}

// DeleteSession removes a session row regardless of owner.
func (s *Store) DeleteSession(ctx context.Context, sessionID uuid.UUID) apperrors.Error {
	if sessionID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing session ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return dberror.ErrNotFound.Msg("session not found")
	}
	delete(s.sessions, sessionID)
	return nil
}

// DeleteUserSessionsExcept removes all sessions of a user except the
// one to keep. Removing zero rows is not an error.
func (s *Store) DeleteUserSessionsExcept(ctx context.Context, userID string, keep uuid.UUID) (int64, apperrors.Error) {
	if userID == "" {
		return 0, dberror.ErrInvalidInput.Msg("missing user ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, session := range s.sessions {
		if session.UserID == userID && id != keep {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// InsertActivity appends an audit row.
func (s *Store) InsertActivity(ctx context.Context, entry *models.ActivityEntry) apperrors.Error {
	if entry == nil {
		return dberror.ErrInvalidInput.Msg("activity entry is nil")
	}
	if entry.ActivityID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing activity ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.activities {
		if existing.ActivityID == entry.ActivityID {
			return dberror.ErrAlreadyExists.Msg("activity already recorded")
		}
	}
	entry.CreatedAt = time.Now().UTC()
	stored := *entry
	s.activities = append(s.activities, &stored)
	return nil
}

// Activities returns a snapshot of the recorded activity, oldest first.
func (s *Store) Activities() []*models.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*models.ActivityEntry, 0, len(s.activities))
	for _, entry := range s.activities {
		copied := *entry
		entries = append(entries, &copied)
	}
	return entries
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(ctx context.Context) apperrors.Error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
