// Package db defines the persistence surface of the gateway and opens
// the concrete store selected by the server config.
package db

import (
	"context"
	"time"

	"github.com/tradegate/tradegate/internal/common/apperrors"
	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/config"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/dberror"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/memstore"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/models"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/postgresql"
)

// SessionStore is the persistence surface for browser session rows.
type SessionStore interface {
	// UpsertSession inserts a session row or refreshes an existing one
	// in place. The row's CreatedAt is populated on return.
	UpsertSession(ctx context.Context, session *models.UserSession) apperrors.Error

	// TouchSession updates the last-active timestamp of a session owned
	// by the given user. Sessions of other users are left untouched.
	TouchSession(ctx context.Context, sessionID uuid.UUID, userID string, lastActive time.Time) apperrors.Error

	// ListUserSessions returns all sessions of a user, most recently
	// active first.
	ListUserSessions(ctx context.Context, userID string) ([]*models.UserSession, apperrors.Error)

	// DeleteSession removes a session row regardless of owner.
	DeleteSession(ctx context.Context, sessionID uuid.UUID) apperrors.Error

	// DeleteUserSessionsExcept removes all sessions of a user except
	// the one to keep, and returns the number of rows removed.
	DeleteUserSessionsExcept(ctx context.Context, userID string, keep uuid.UUID) (int64, apperrors.Error)
}

// ActivityStore records gateway activity for audit.
type ActivityStore interface {
	InsertActivity(ctx context.Context, entry *models.ActivityEntry) apperrors.Error
}

// Store is the full persistence surface of the gateway.
type Store interface {
	SessionStore
	ActivityStore
	Ping(ctx context.Context) apperrors.Error
	Close() error
}

// New opens the store selected by the db.driver config setting.
func New(ctx context.Context) (Store, apperrors.Error) {
	switch driver := config.Config().DB.Driver; driver {
	case config.DBDriverPostgres:
		return postgresql.New(ctx)
	case config.DBDriverMemory:
		return memstore.New(), nil
	default:
		return nil, dberror.ErrInvalidInput.Msg("unsupported db driver: " + driver)
	}
}
