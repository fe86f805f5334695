// Package session tracks the browser sessions of gateway users: one
// row per tab, registered on login, refreshed by heartbeats, and
// revocable individually or in bulk. Registry operations never fail
// loudly; persistence problems are logged and callers see an empty or
// negative result, since session bookkeeping must not break the
// application flows that trigger it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/dberror"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/models"
	"github.com/tradegate/tradegate/pkg/api"
)

// Registry tracks the sessions of gateway users. A Registry is bound
// to one tab via its TabStore; ForClient rebinds it per request when
// serving remote clients.
type Registry struct {
	store db.SessionStore
	tab   TabStore
}

// NewRegistry returns a Registry over the given store. A nil tab gets
// a process-local TabStore, which suits embedded use; HTTP serving
// rebinds per request via ForClient.
func NewRegistry(store db.SessionStore, tab TabStore) *Registry {
	if tab == nil {
		tab = NewMemoryTab()
	}
	return &Registry{store: store, tab: tab}
}

// ForClient returns a view of the registry bound to the client's tab
// session ID.
func (r *Registry) ForClient(id uuid.UUID) *Registry {
	return &Registry{store: r.store, tab: StaticTab(id)}
}

// CurrentSessionID returns the tab's session ID, minting and storing
// one on first use. After RemoveCurrentSession a fresh ID is minted.
func (r *Registry) CurrentSessionID(ctx context.Context) uuid.UUID {
	return r.tab.GetOrSet(uuid.New())
}

// UpsertSession registers the current tab for the user, or refreshes
// the existing row in place. Browser and OS are derived from the
// user-agent string; the raw string is kept as device info.
func (r *Registry) UpsertSession(ctx context.Context, userID string, userAgent string) {
	if userID == "" {
		log.Ctx(ctx).Warn().Msg("session upsert without user ID")
		return
	}
	browser, os := ParseUserAgent(userAgent)
	session := &models.UserSession{
		SessionID:    r.CurrentSessionID(ctx),
		UserID:       userID,
		DeviceInfo:   userAgent,
		Browser:      browser,
		OS:           os,
		LastActiveAt: time.Now().UTC(),
	}
	if err := r.store.UpsertSession(ctx, session); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to upsert session")
	}
}

// Heartbeat refreshes the last-active timestamp of the current tab's
// session. Only rows owned by the user are touched; an unregistered
// tab is not an error.
func (r *Registry) Heartbeat(ctx context.Context, userID string) {
	if userID == "" {
		log.Ctx(ctx).Warn().Msg("session heartbeat without user ID")
		return
	}
	id := r.CurrentSessionID(ctx)
	err := r.store.TouchSession(ctx, id, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			log.Ctx(ctx).Debug().Str("session_id", id.String()).Msg("heartbeat for unregistered session")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to record heartbeat")
	}
}

// ActiveSessions lists the user's sessions, most recently active
// first, marking the one that belongs to this tab. Lookup failures
// yield an empty list.
func (r *Registry) ActiveSessions(ctx context.Context, userID string) []api.SessionInfo {
	infos := []api.SessionInfo{}
	if userID == "" {
		log.Ctx(ctx).Warn().Msg("session listing without user ID")
		return infos
	}
	sessions, err := r.store.ListUserSessions(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list sessions")
		return infos
	}
	current := r.tab.Get()
	for _, session := range sessions {
		infos = append(infos, api.SessionInfo{
			SessionID:    session.SessionID.String(),
			Browser:      session.Browser,
			OS:           session.OS,
			DeviceInfo:   session.DeviceInfo,
			LastActiveAt: session.LastActiveAt,
			CreatedAt:    session.CreatedAt,
			IsCurrent:    session.SessionID == current,
		})
	}
	return infos
}

// RevokeSession deletes a session row by ID, no matter which user or
// tab owns it. Revoking an already-gone session counts as success.
func (r *Registry) RevokeSession(ctx context.Context, id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	if err := r.store.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return true
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to revoke session")
		return false
	}
	return true
}

// RevokeAllOtherSessions removes every session of the user except the
// current tab's, and reports how many were removed.
func (r *Registry) RevokeAllOtherSessions(ctx context.Context, userID string) (int64, bool) {
	if userID == "" {
		log.Ctx(ctx).Warn().Msg("session revocation without user ID")
		return 0, false
	}
	revoked, err := r.store.DeleteUserSessionsExcept(ctx, userID, r.CurrentSessionID(ctx))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to revoke other sessions")
		return 0, false
	}
	return revoked, true
}

// RemoveCurrentSession deletes the current tab's row and forgets the
// tab-local ID, so the next use of this tab starts a fresh session.
// The ID is forgotten even when the delete fails.
func (r *Registry) RemoveCurrentSession(ctx context.Context) {
	id := r.tab.Get()
	if id == uuid.Nil {
		return
	}
	if err := r.store.DeleteSession(ctx, id); err != nil && !errors.Is(err, dberror.ErrNotFound) {
		log.Ctx(ctx).Error().Err(err).Msg("failed to remove current session")
	}
	r.tab.Clear()
}
