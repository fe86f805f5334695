package api

import "time"

// RegisterSessionRequest announces a browser tab to the gateway. The
// gateway falls back to the request's User-Agent header when UserAgent
// is empty.
type RegisterSessionRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	UserAgent string `json:"user_agent,omitempty"`
}

// HeartbeatRequest refreshes the last-active timestamp of the caller's
// tab session.
type HeartbeatRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// RevokeOthersRequest removes every session of the user except the
// caller's own tab.
type RevokeOthersRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// SessionInfo is one browser session as reported to clients. IsCurrent
// marks the session belonging to the tab that made the request.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	DeviceInfo   string    `json:"device_info"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
	IsCurrent    bool      `json:"is_current"`
}

type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type RevokeOthersResponse struct {
	Revoked int64 `json:"revoked"`
}
