// Package proxy relays dashboard requests to the trade classification
// service. Clients POST a body that names an action; the proxy maps
// the action to its upstream endpoint, strips the routing fields from
// the body, forwards it, and relays the upstream response bytes
// untouched.
package proxy

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/httpx"
	"github.com/tradegate/tradegate/internal/gatewaysrv/activity"
	"github.com/tradegate/tradegate/internal/gatewaysrv/config"
)

// Proxy forwards action requests to the upstream classification
// service. It is an http.Handler and does its own CORS handling,
// since browsers call it directly and must be able to read error
// responses too.
type Proxy struct {
	client   *http.Client
	recorder *activity.Recorder
}

// New returns a Proxy that records its forwards through recorder. The
// shared client carries no timeout: bulk classification calls can run
// for minutes, and cancellation arrives through the request context.
func New(recorder *activity.Recorder) *Proxy {
	return &Proxy{
		client:   &http.Client{},
		recorder: recorder,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		log.Ctx(r.Context()).Debug().Msg("OPTIONS request")
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		httpx.ErrReqMethodNotSupported().Send(w)
		return
	}

	cfg := config.Config()
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBodySize)

	parsed, httpErr := parseRequest(r)
	if httpErr != nil {
		httpErr.Send(w)
		return
	}

	name := FallbackActionName
	if parsed.declared {
		name = parsed.actionName
	}
	if name == "" {
		httpx.ErrInvalidRequest("empty action").Send(w)
		return
	}
	action, ok := LookupAction(name)
	if !ok {
		httpx.ErrInvalidRequest("unknown action: " + name).Send(w)
		return
	}
	if action.NeedsRunID && parsed.runID == "" {
		httpx.ErrInvalidRequest("missing run_id for action: " + name).Send(w)
		return
	}

	if cfg.Upstream.URL == "" {
		log.Ctx(r.Context()).Error().Str("action", action.Name).Msg("upstream URL is not configured")
		httpx.ErrApplicationError("upstream URL is not configured").Send(w)
		return
	}

	p.forward(w, r, action, parsed)
}

func (p *Proxy) forward(w http.ResponseWriter, r *http.Request, action Action, parsed *parsedRequest) {
	ctx := r.Context()
	cfg := config.Config()
	upstreamPath := action.UpstreamPath(parsed.runID)
	upstreamURL := strings.TrimSuffix(cfg.Upstream.URL, "/") + upstreamPath

	// Status checks go out as GET and carry no body; everything else
	// forwards the stripped payload.
	var bodyReader io.Reader
	var contentType string
	if action.Method != http.MethodGet {
		body, ct, httpErr := parsed.buildUpstreamBody(action.NeedsRunID)
		if httpErr != nil {
			httpErr.Send(w)
			return
		}
		bodyReader = bytes.NewReader(body)
		contentType = ct
	}

	req, err := http.NewRequestWithContext(ctx, action.Method, upstreamURL, bodyReader)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", action.Name).Msg("failed to build upstream request")
		httpx.ErrApplicationError("unable to build upstream request").Send(w)
		return
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cfg.Upstream.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Upstream.Token)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", action.Name).Msg("upstream request failed")
		http.Error(w, "failed to reach upstream: "+err.Error(), http.StatusBadGateway)
		p.record(ctx, action, upstreamPath, parsed, http.StatusBadGateway, time.Since(start), err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", action.Name).Msg("failed to read upstream response")
		http.Error(w, "failed to read upstream response: "+err.Error(), http.StatusBadGateway)
		p.record(ctx, action, upstreamPath, parsed, http.StatusBadGateway, time.Since(start), err)
		return
	}

	// The upstream status and body are relayed as-is. The content type
	// is forwarded only when the upstream declared JSON; anything else
	// is left to client-side sniffing.
	if upstreamDeclaredJSON(resp.Header.Get("Content-Type")) {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(respBody)

	p.record(ctx, action, upstreamPath, parsed, resp.StatusCode, time.Since(start), nil)
}

func (p *Proxy) record(ctx context.Context, action Action, path string, parsed *parsedRequest, status int, elapsed time.Duration, err error) {
	detail := activity.ForwardDetail{
		Method:     action.Method,
		Path:       path,
		DurationMs: elapsed.Milliseconds(),
	}
	if action.NeedsRunID {
		detail.RunID = parsed.runID
	}
	if err != nil {
		detail.Error = err.Error()
	}
	p.recorder.Record(ctx, &activity.Event{
		UserID: parsed.userID,
		Action: action.Name,
		Status: status,
		Detail: detail,
	})
}

// setCORSHeaders stamps every proxy response, errors included: the
// browser needs the headers to read a failure at all.
func setCORSHeaders(w http.ResponseWriter) {
	cfg := config.Config()
	w.Header().Set("Access-Control-Allow-Origin", cfg.CORS.AllowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS") // Allowed methods
	w.Header().Set("Access-Control-Allow-Headers", cfg.CORS.AllowHeaders)
}

// upstreamDeclaredJSON reports whether the upstream response declared
// a JSON payload.
func upstreamDeclaredJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
