package postgresql

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/apperrors"
	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/dberror"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/models"
)

// InsertActivity appends an audit row. Activity IDs are generated by
// the caller so the row can be correlated with request logs.
func (sm *storeManager) InsertActivity(ctx context.Context, entry *models.ActivityEntry) apperrors.Error {
	if entry == nil {
		return dberror.ErrInvalidInput.Msg("activity entry is nil")
	}
	if entry.ActivityID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("missing activity ID")
	}

	query := `
		INSERT INTO activity_log (activity_id, user_id, action, status_code, detail)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`

	err := sm.db.QueryRowContext(ctx, query,
		entry.ActivityID,
		entry.UserID,
		entry.Action,
		entry.StatusCode,
		entry.Detail,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			if pgErr.Code == "23505" { // unique_violation
				return dberror.ErrAlreadyExists.Msg("activity already recorded")
			}
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to insert activity")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}
