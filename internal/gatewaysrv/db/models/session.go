package models

import (
	"time"

	"github.com/tradegate/tradegate/internal/common/uuid"
)

// UserSession is a row in the user_sessions table. One row exists per
// browser tab that has announced itself to the gateway; the row is
// keyed by the tab-scoped session ID, so reloading a tab refreshes the
// same row instead of creating a new one.
type UserSession struct {
	SessionID    uuid.UUID `db:"session_id"`
	UserID       string    `db:"user_id"`
	DeviceInfo   string    `db:"device_info"`
	Browser      string    `db:"browser"`
	OS           string    `db:"os"`
	LastActiveAt time.Time `db:"last_active_at"`
	CreatedAt    time.Time `db:"created_at"`
}
