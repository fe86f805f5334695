// Package gwcommon provides context helpers and shared constants for the
// gateway service.
package gwcommon

import (
	"context"

	"github.com/tradegate/tradegate/internal/common/uuid"
)

// ctxKeyType represents the type for all context keys.
type ctxKeyType string

const (
	ctxClientSessionKey ctxKeyType = "GatewayClientSession"
)

// ClientSessionHeader carries the caller's tab-local session identifier on
// session API requests.
const ClientSessionHeader = "X-TradeGate-Session"

// WithClientSessionID stores the caller's session identifier in the context.
func WithClientSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxClientSessionKey, id)
}

// GetClientSessionID retrieves the caller's session identifier from the
// context, or uuid.Nil when none was set.
func GetClientSessionID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxClientSessionKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
