package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradegate/tradegate/internal/common/uuid"
	"github.com/tradegate/tradegate/internal/gatewaysrv/activity"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/memstore"
	"github.com/tradegate/tradegate/internal/gatewaysrv/gwcommon"
	"github.com/tradegate/tradegate/pkg/api"
)

func newSessionRouter(t *testing.T) (chi.Router, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return Router(NewRegistry(store, nil), activity.NewRecorder(store)), store
}

func newSessionRequest(t *testing.T, method, path string, body any, tabID uuid.UUID) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonData)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tabID != uuid.Nil {
		req.Header.Set(gwcommon.ClientSessionHeader, tabID.String())
	}
	return req
}

func executeSessionRequest(router chi.Router, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRegisterSessionRequiresHeader(t *testing.T) {
	router, _ := newSessionRouter(t)

	req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{UserID: "user-1"}, uuid.Nil)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), gwcommon.ClientSessionHeader)

	req = newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{UserID: "user-1"}, uuid.Nil)
	req.Header.Set(gwcommon.ClientSessionHeader, "not-a-uuid")
	rr = executeSessionRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid")
}

func TestRegisterAndListSessions(t *testing.T) {
	router, _ := newSessionRouter(t)
	tabID := uuid.New()

	req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{
		UserID:    "user-1",
		UserAgent: chromeOnLinux,
	}, tabID)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	req = newSessionRequest(t, http.MethodGet, "/?user_id=user-1", nil, tabID)
	rr = executeSessionRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var rsp api.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	require.Len(t, rsp.Sessions, 1)
	assert.Equal(t, tabID.String(), rsp.Sessions[0].SessionID)
	assert.Equal(t, "Chrome", rsp.Sessions[0].Browser)
	assert.Equal(t, "Linux", rsp.Sessions[0].OS)
	assert.True(t, rsp.Sessions[0].IsCurrent)
}

func TestRegisterSessionFallsBackToAgentHeader(t *testing.T) {
	router, _ := newSessionRouter(t)
	tabID := uuid.New()

	req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{UserID: "user-1"}, tabID)
	req.Header.Set("User-Agent", chromeOnLinux)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	req = newSessionRequest(t, http.MethodGet, "/?user_id=user-1", nil, tabID)
	rr = executeSessionRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rsp api.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	require.Len(t, rsp.Sessions, 1)
	assert.Equal(t, "Chrome", rsp.Sessions[0].Browser)
	assert.Equal(t, chromeOnLinux, rsp.Sessions[0].DeviceInfo)
}

func TestRegisterSessionValidation(t *testing.T) {
	router, _ := newSessionRouter(t)
	tabID := uuid.New()

	req := newSessionRequest(t, http.MethodPost, "/", map[string]string{}, tabID)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "user_id")

	req = newSessionRequest(t, http.MethodPost, "/", nil, tabID)
	req.Body = http.NoBody
	rr = executeSessionRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListSessionsRequiresUserID(t *testing.T) {
	router, _ := newSessionRouter(t)

	req := newSessionRequest(t, http.MethodGet, "/", nil, uuid.New())
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "user_id")
}

func TestHeartbeatEndpoint(t *testing.T) {
	router, _ := newSessionRouter(t)
	tabID := uuid.New()

	req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{
		UserID:    "user-1",
		UserAgent: chromeOnLinux,
	}, tabID)
	require.Equal(t, http.StatusNoContent, executeSessionRequest(router, req).Code)

	req = newSessionRequest(t, http.MethodPost, "/heartbeat", api.HeartbeatRequest{UserID: "user-1"}, tabID)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Heartbeats never register new sessions.
	otherTab := uuid.New()
	req = newSessionRequest(t, http.MethodPost, "/heartbeat", api.HeartbeatRequest{UserID: "user-1"}, otherTab)
	require.Equal(t, http.StatusNoContent, executeSessionRequest(router, req).Code)

	req = newSessionRequest(t, http.MethodGet, "/?user_id=user-1", nil, tabID)
	rr = executeSessionRequest(router, req)
	var rsp api.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Len(t, rsp.Sessions, 1)
}

func TestRevokeOthersEndpoint(t *testing.T) {
	router, store := newSessionRouter(t)
	tabA := uuid.New()
	tabB := uuid.New()

	for _, tab := range []uuid.UUID{tabA, tabB} {
		req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{
			UserID:    "user-1",
			UserAgent: chromeOnLinux,
		}, tab)
		require.Equal(t, http.StatusNoContent, executeSessionRequest(router, req).Code)
	}

	req := newSessionRequest(t, http.MethodPost, "/revoke-others", api.RevokeOthersRequest{UserID: "user-1"}, tabA)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var rsp api.RevokeOthersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Equal(t, int64(1), rsp.Revoked)

	req = newSessionRequest(t, http.MethodGet, "/?user_id=user-1", nil, tabA)
	rr = executeSessionRequest(router, req)
	var list api.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, tabA.String(), list.Sessions[0].SessionID)

	// The revocation leaves an audit row.
	entries := store.Activities()
	require.Len(t, entries, 1)
	assert.Equal(t, "session-revoke-others", entries[0].Action)
	assert.Equal(t, "user-1", entries[0].UserID)
	assert.Contains(t, string(entries[0].Detail.Bytes), `"revoked":1`)
}

func TestRemoveCurrentEndpoint(t *testing.T) {
	router, _ := newSessionRouter(t)
	tabID := uuid.New()

	req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{
		UserID:    "user-1",
		UserAgent: chromeOnLinux,
	}, tabID)
	require.Equal(t, http.StatusNoContent, executeSessionRequest(router, req).Code)

	req = newSessionRequest(t, http.MethodDelete, "/current", nil, tabID)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	req = newSessionRequest(t, http.MethodGet, "/?user_id=user-1", nil, tabID)
	rr = executeSessionRequest(router, req)
	var rsp api.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Empty(t, rsp.Sessions)
}

func TestRevokeByIDEndpoint(t *testing.T) {
	router, store := newSessionRouter(t)
	tabID := uuid.New()

	req := newSessionRequest(t, http.MethodPost, "/", api.RegisterSessionRequest{
		UserID:    "user-1",
		UserAgent: chromeOnLinux,
	}, tabID)
	require.Equal(t, http.StatusNoContent, executeSessionRequest(router, req).Code)

	// Revoking by ID needs no client session header.
	req = httptest.NewRequest(http.MethodDelete, "/"+tabID.String(), nil)
	rr := executeSessionRequest(router, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	req = newSessionRequest(t, http.MethodGet, "/?user_id=user-1", nil, tabID)
	rr = executeSessionRequest(router, req)
	var rsp api.ListSessionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rsp))
	assert.Empty(t, rsp.Sessions)

	req = httptest.NewRequest(http.MethodDelete, "/not-a-uuid", nil)
	rr = executeSessionRequest(router, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid session ID")

	entries := store.Activities()
	require.Len(t, entries, 1)
	assert.Equal(t, "session-revoke", entries[0].Action)
	assert.Contains(t, string(entries[0].Detail.Bytes), tabID.String())
}
