package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/httpx"
	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/activity"
	"github.com/tradegate/tradegate/internal/gatewaysrv/gwcommon"
)

// Router serves the session API. Routes inside the group require the
// client session header so operations can be scoped to the calling
// tab; revoking by explicit ID works without it.
func Router(registry *Registry, recorder *activity.Recorder) chi.Router {
	h := &sessionHandler{registry: registry, recorder: recorder}

	tabHandlers := []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodPost,
			Path:    "/",
			Handler: h.registerSession,
		},
		{
			Method:  http.MethodPost,
			Path:    "/heartbeat",
			Handler: h.heartbeat,
		},
		{
			Method:  http.MethodGet,
			Path:    "/",
			Handler: h.listSessions,
		},
		{
			Method:  http.MethodPost,
			Path:    "/revoke-others",
			Handler: h.revokeOthers,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/current",
			Handler: h.removeCurrent,
		},
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(clientSessionMiddleware)
		for _, handler := range tabHandlers {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
	r.Method(http.MethodDelete, "/{sessionID}", httpx.WrapHttpRsp(h.revokeSession))
	return r
}

// clientSessionMiddleware resolves the caller's tab session ID from
// the client session header and stores it on the request context.
func clientSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get(gwcommon.ClientSessionHeader)
		if header == "" {
			httpx.ErrInvalidRequest("missing " + gwcommon.ClientSessionHeader + " header").Send(w)
			return
		}
		id, err := uuid.Parse(header)
		if err != nil || id == uuid.Nil {
			log.Ctx(ctx).Error().Str("header", header).Msg("invalid client session ID")
			httpx.ErrInvalidRequest("invalid " + gwcommon.ClientSessionHeader + " header").Send(w)
			return
		}

		ctx = gwcommon.WithClientSessionID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
