package proxy

import (
	"fmt"
	"net/http"
	"net/url"
)

// Action maps a client-declared action name to its upstream endpoint.
// Parameterized paths embed the run ID extracted from the request
// body.
type Action struct {
	Name       string
	Method     string
	PathFormat string
	NeedsRunID bool
}

// FallbackActionName is assumed when a request declares no action at
// all. A declared-but-unknown action is rejected instead.
const FallbackActionName = "classify"

var actions = map[string]Action{
	"preprocess": {
		Name:       "preprocess",
		Method:     http.MethodPost,
		PathFormat: "/preprocess",
	},
	"parse": {
		Name:       "parse",
		Method:     http.MethodPost,
		PathFormat: "/parse",
	},
	"rules": {
		Name:       "rules",
		Method:     http.MethodPost,
		PathFormat: "/apply_rules",
	},
	"rulings": {
		Name:       "rulings",
		Method:     http.MethodPost,
		PathFormat: "/generate_ruling",
	},
	"classify": {
		Name:       "classify",
		Method:     http.MethodPost,
		PathFormat: "/classify",
	},
	"bulk-classify": {
		Name:       "bulk-classify",
		Method:     http.MethodPost,
		PathFormat: "/bulk-classify",
	},
	"bulk-classify-status": {
		Name:       "bulk-classify-status",
		Method:     http.MethodGet,
		PathFormat: "/bulk-classify/%s",
		NeedsRunID: true,
	},
	"bulk-classify-clarify": {
		Name:       "bulk-classify-clarify",
		Method:     http.MethodPost,
		PathFormat: "/bulk-classify/%s/clarify",
		NeedsRunID: true,
	},
	"bulk-classify-cancel": {
		Name:       "bulk-classify-cancel",
		Method:     http.MethodDelete,
		PathFormat: "/bulk-classify/%s",
		NeedsRunID: true,
	},
}

// LookupAction resolves a declared action name against the table.
func LookupAction(name string) (Action, bool) {
	action, ok := actions[name]
	return action, ok
}

// UpstreamPath builds the upstream request path, escaping the run ID
// when the action embeds one.
func (a Action) UpstreamPath(runID string) string {
	if !a.NeedsRunID {
		return a.PathFormat
	}
	return fmt.Sprintf(a.PathFormat, url.PathEscape(runID))
}
