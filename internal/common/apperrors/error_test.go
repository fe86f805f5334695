package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorChaining(t *testing.T) {
	ErrStore := New("session store error")
	assert.Equal(t, "session store error", ErrStore.Error())
	assert.ErrorIs(t, ErrStore, ErrStore)

	ErrRowMissing := ErrStore.New("session row not found")
	assert.Equal(t, "session row not found", ErrRowMissing.Error())
	assert.ErrorIs(t, ErrRowMissing, ErrStore)

	ErrUpstream := New("upstream error")
	ErrUpstreamMsg := ErrUpstream.Msg("backend rejected the request")
	wrapped := ErrRowMissing.Err(ErrUpstreamMsg)
	assert.Equal(t, "session row not found", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrStore)
	assert.ErrorIs(t, wrapped, ErrRowMissing)
	assert.ErrorIs(t, wrapped, ErrUpstream)
	assert.ErrorIs(t, wrapped, ErrUpstreamMsg)
}

func TestErrorInterop(t *testing.T) {
	ErrStore := New("session store error")

	goErr := fmt.Errorf("connection refused")
	wrapped := ErrStore.Err(goErr)
	assert.ErrorIs(t, wrapped, ErrStore)
	assert.ErrorIs(t, wrapped, goErr)

	inner := errors.New("tls handshake failed")
	pkgWrapped := errors.Wrap(inner, "opening pool")
	withMsg := ErrStore.MsgErr("store unavailable", pkgWrapped)
	assert.Equal(t, "store unavailable", withMsg.Error())
	assert.ErrorIs(t, withMsg, ErrStore)
	assert.ErrorIs(t, withMsg, pkgWrapped)
	assert.ErrorIs(t, withMsg, inner)
}

func TestStatusCodes(t *testing.T) {
	ErrStore := New("session store error").SetStatusCode(http.StatusInternalServerError)
	assert.Equal(t, http.StatusInternalServerError, ErrStore.StatusCode())

	ErrRowMissing := ErrStore.New("session row not found").SetStatusCode(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, ErrRowMissing.StatusCode())

	// derivations inherit the parent's code until overridden
	derived := ErrRowMissing.Msg("heartbeat target missing")
	assert.Equal(t, http.StatusNotFound, derived.StatusCode())
}

func TestErrorAllExpansion(t *testing.T) {
	base := New("db down").SetExpandError(true)
	expanded := base.MsgErr("delete failed", fmt.Errorf("socket closed"))
	assert.Equal(t, "delete failed; db down; socket closed", expanded.ErrorAll())

	collapsed := expanded.SetExpandError(false)
	assert.Equal(t, "delete failed", collapsed.ErrorAll())

	assert.Len(t, expanded.UnwrapAll(), 2)
}
