package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradegate/tradegate/internal/common/httpx"
	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/activity"
	"github.com/tradegate/tradegate/internal/gatewaysrv/gwcommon"
	"github.com/tradegate/tradegate/pkg/api"
)

type sessionHandler struct {
	registry *Registry
	recorder *activity.Recorder
}

// clientRegistry binds the registry to the tab that made the request.
func (h *sessionHandler) clientRegistry(r *http.Request) *Registry {
	return h.registry.ForClient(gwcommon.GetClientSessionID(r.Context()))
}

func (h *sessionHandler) registerSession(r *http.Request) (*httpx.Response, error) {
	var req api.RegisterSessionRequest
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := v().Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest("user_id is required")
	}
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	h.clientRegistry(r).UpsertSession(r.Context(), req.UserID, userAgent)

	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}

func (h *sessionHandler) heartbeat(r *http.Request) (*httpx.Response, error) {
	var req api.HeartbeatRequest
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := v().Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest("user_id is required")
	}

	h.clientRegistry(r).Heartbeat(r.Context(), req.UserID)

	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}

func (h *sessionHandler) listSessions(r *http.Request) (*httpx.Response, error) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		return nil, httpx.ErrInvalidRequest("user_id is required")
	}

	sessions := h.clientRegistry(r).ActiveSessions(r.Context(), userID)

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   api.ListSessionsResponse{Sessions: sessions},
	}, nil
}

func (h *sessionHandler) revokeOthers(r *http.Request) (*httpx.Response, error) {
	var req api.RevokeOthersRequest
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if err := v().Struct(req); err != nil {
		return nil, httpx.ErrInvalidRequest("user_id is required")
	}

	revoked, _ := h.clientRegistry(r).RevokeAllOtherSessions(r.Context(), req.UserID)
	h.recorder.Record(r.Context(), &activity.Event{
		UserID: req.UserID,
		Action: "session-revoke-others",
		Status: http.StatusOK,
		Detail: activity.RevocationDetail{Revoked: revoked},
	})

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   api.RevokeOthersResponse{Revoked: revoked},
	}, nil
}

func (h *sessionHandler) removeCurrent(r *http.Request) (*httpx.Response, error) {
	current := gwcommon.GetClientSessionID(r.Context())
	h.clientRegistry(r).RemoveCurrentSession(r.Context())
	h.recorder.Record(r.Context(), &activity.Event{
		Action: "session-remove-current",
		Status: http.StatusNoContent,
		Detail: activity.RevocationDetail{SessionID: current.String(), Revoked: 1},
	})

	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}

func (h *sessionHandler) revokeSession(r *http.Request) (*httpx.Response, error) {
	sessionID := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(sessionID)
	if err != nil || id == uuid.Nil {
		return nil, httpx.ErrInvalidRequest("invalid session ID")
	}

	ok := h.registry.RevokeSession(r.Context(), id)
	var revoked int64
	if ok {
		revoked = 1
	}
	h.recorder.Record(r.Context(), &activity.Event{
		Action: "session-revoke",
		Status: http.StatusNoContent,
		Detail: activity.RevocationDetail{SessionID: id.String(), Revoked: revoked},
	})

	return &httpx.Response{
		StatusCode: http.StatusNoContent,
	}, nil
}
