package models

import (
	"time"

	"github.com/jackc/pgtype"

	"github.com/tradegate/tradegate/internal/common/uuid"
)

// ActivityEntry is a row in the activity_log table. Detail carries the
// action-specific payload (upstream status, run ID, timing) as JSONB.
type ActivityEntry struct {
	ActivityID uuid.UUID    `db:"activity_id"`
	UserID     string       `db:"user_id"`
	Action     string       `db:"action"`
	StatusCode int          `db:"status_code"`
	Detail     pgtype.JSONB `db:"detail"`
	CreatedAt  time.Time    `db:"created_at"`
}
