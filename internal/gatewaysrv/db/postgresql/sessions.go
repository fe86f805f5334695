package postgresql

import (
	"context"
	"time"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/apperrors"
	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/dberror"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/models"
)

// UpsertSession inserts a session row or refreshes an existing one in
// place. CreatedAt is populated from the database so callers see the
// original registration time on re-upsert.
func (sm *storeManager) UpsertSession(ctx context.Context, session *models.UserSession) apperrors.Error {
	if session == nil {
		return dberror.ErrInvalidInput.Msg("session is nil")
	}
	if session.SessionID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing session ID")
	}
	if session.UserID == "" {
		return dberror.ErrInvalidInput.Msg("missing user ID")
	}

	query := `
		INSERT INTO user_sessions (session_id, user_id, device_info, browser, os, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			device_info = EXCLUDED.device_info,
			browser = EXCLUDED.browser,
			os = EXCLUDED.os,
			last_active_at = EXCLUDED.last_active_at
		RETURNING created_at;
	`

	err := sm.db.QueryRowContext(ctx, query,
		session.SessionID,
		session.UserID,
		session.DeviceInfo,
		session.Browser,
		session.OS,
		session.LastActiveAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23514" { // check_violation
				log.Ctx(ctx).Error().Str("user_id", session.UserID).Msg("invalid session field")
				return dberror.ErrInvalidInput.Msg("invalid session field")
			}
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to upsert session")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}

// TouchSession updates the last-active timestamp of a session owned by
// the given user. Sessions of other users are left untouched.
func (sm *storeManager) TouchSession(ctx context.Context, sessionID uuid.UUID, userID string, lastActive time.Time) apperrors.Error {
	if sessionID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing session ID")
	}
	if userID == "" {
		return dberror.ErrInvalidInput.Msg("missing user ID")
	}

	query := `
		UPDATE user_sessions
		SET last_active_at = $3
		WHERE session_id = $1 AND user_id = $2;
	`

	result, err := sm.db.ExecContext(ctx, query, sessionID, userID, lastActive)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to touch session")
		return dberror.ErrDatabase.Err(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to get rows affected")
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrNotFound.Msg("session not found")
	}
	return nil
}

// ListUserSessions returns all sessions of a user, most recently
// active first.
func (sm *storeManager) ListUserSessions(ctx context.Context, userID string) ([]*models.UserSession, apperrors.Error) {
	if userID == "" {
		return nil, dberror.ErrInvalidInput.Msg("missing user ID")
	}

	query := `
		SELECT session_id, user_id, device_info, browser, os, last_active_at, created_at
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY last_active_at DESC;
	`

	rows, err := sm.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list sessions")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var sessions []*models.UserSession
	for rows.Next() {
		var session models.UserSession
		if err := rows.Scan(
			&session.SessionID,
			&session.UserID,
			&session.DeviceInfo,
			&session.Browser,
			&session.OS,
			&session.LastActiveAt,
			&session.CreatedAt,
		); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan session")
			return nil, dberror.ErrDatabase.Err(err)
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to iterate sessions")
		return nil, dberror.ErrDatabase.Err(err)
	}
	return sessions, nil
}

// DeleteSession removes a session row regardless of owner.
func (sm *storeManager) DeleteSession(ctx context.Context, sessionID uuid.UUID) apperrors.Error {
	if sessionID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing session ID")
	}

	query := `
		DELETE FROM user_sessions
		WHERE session_id = $1;
	`

	result, err := sm.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to delete session")
		return dberror.ErrDatabase.Err(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to get rows affected")
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrNotFound.Msg("session not found")
	}
	return nil
}

// DeleteUserSessionsExcept removes all sessions of a user except the
// one to keep. Removing zero rows is not an error.
func (sm *storeManager) DeleteUserSessionsExcept(ctx context.Context, userID string, keep uuid.UUID) (int64, apperrors.Error) {
	if userID == "" {
		return 0, dberror.ErrInvalidInput.Msg("missing user ID")
	}

	query := `
		DELETE FROM user_sessions
		WHERE user_id = $1 AND session_id <> $2;
	`

	result, err := sm.db.ExecContext(ctx, query, userID, keep)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to delete sessions")
		return 0, dberror.ErrDatabase.Err(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to get rows affected")
		return 0, dberror.ErrDatabase.Err(err)
	}
	return rowsAffected, nil
}
