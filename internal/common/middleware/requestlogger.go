// Package middleware provides the HTTP middleware shared by the gateway's
// routers: request logging with per-request IDs, panic recovery, and
// per-route timeouts. Logging is structured via zerolog.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tradegate/tradegate/internal/common/uuid"
)

// requestIdContextKey is the context key type for request IDs.
type requestIdContextKey string

const (
	requestIdKey = requestIdContextKey("requestId")

	// RequestIDHeader carries the request ID back to the client.
	RequestIDHeader = "X-TradeGate-Request-ID"
)

// RequestID returns the request ID stored by RequestLogger, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger assigns each request an ID, stores it in the context and the
// response headers, binds a request-scoped logger to the context, and logs
// the request line and its duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		requestID := newRequestId()
		ctx = context.WithValue(ctx, requestIdKey, requestID)
		ctx = log.With().Str("request_id", requestID).Caller().Logger().WithContext(ctx)

		w.Header().Set(RequestIDHeader, requestID)

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		requestFields := map[string]any{
			"requestURL":    fmt.Sprintf("%s://%s%s", scheme, r.Host, r.RequestURI),
			"requestMethod": r.Method,
			"requestPath":   r.URL.Path,
			"remoteIP":      r.RemoteAddr,
			"proto":         r.Proto,
		}
		log.Ctx(ctx).Info().Fields(requestFields).Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Info().
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newRequestId returns a UUID-based identifier, falling back to a timestamp
// when generation fails.
func newRequestId() string {
	u, err := uuid.NewRandom()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
