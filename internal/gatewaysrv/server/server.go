// Package server assembles the gateway's HTTP surface: the request
// proxy, the session API, and the version and readiness endpoints.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/httpx"
	"github.com/tradegate/tradegate/internal/common/logtrace"
	"github.com/tradegate/tradegate/internal/common/middleware"
	"github.com/tradegate/tradegate/internal/gatewaysrv/activity"
	"github.com/tradegate/tradegate/internal/gatewaysrv/config"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db"
	"github.com/tradegate/tradegate/internal/gatewaysrv/gwcommon"
	"github.com/tradegate/tradegate/internal/gatewaysrv/proxy"
	"github.com/tradegate/tradegate/internal/gatewaysrv/session"
)

// GatewayServer is the main HTTP server of the gateway. It owns the
// router and the store handed to the mounted handlers.
type GatewayServer struct {
	Router *chi.Mux
	store  db.Store
}

// CreateNewServer creates a GatewayServer over the given store.
func CreateNewServer(store db.Store) (*GatewayServer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	s := &GatewayServer{
		Router: chi.NewRouter(),
		store:  store,
	}
	return s, nil
}

// MountHandlers sets up all routes and middleware. The proxy mounts
// outside the CORS-handled group: it manages its own CORS headers so
// browsers can read error responses from it directly.
func (s *GatewayServer) MountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)

	recorder := activity.NewRecorder(s.store)
	registry := session.NewRegistry(s.store, nil)

	s.Router.Group(func(r chi.Router) {
		if config.Config().HandleCORS {
			r.Use(s.HandleCORS)
		}
		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.SetTimeout(config.Config().GetRequestTimeoutOrDefault()))
			r.Mount("/", session.Router(registry, recorder))
		})
		r.Get("/version", s.getVersion)
		r.Get("/ready", s.getReadiness)
	})
	s.Router.Handle("/proxy", proxy.New(recorder))

	if logtrace.IsTraceEnabled() {
		fmt.Println("Routes in gateway router")
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			log.Error().Err(err).Msg("Error walking router")
		}
	}
}

// GetVersionRsp represents the response for version information.
type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *GatewayServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "TradeGate Server: " + gwcommon.ServerVersion,
		ApiVersion:    gwcommon.ApiVersion,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

// getReadiness reports whether the store behind the gateway is
// reachable, for load balancers and monitoring.
func (s *GatewayServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.Ping(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("readiness check failed")
		httpx.SendJsonRsp(ctx, w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
		})
		return
	}
	httpx.SendJsonRsp(ctx, w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// HandleCORS provides CORS middleware for the session and metadata
// routes. The proxy route handles CORS itself.
func (s *GatewayServer) HandleCORS(next http.Handler) http.Handler {
	cfg := config.Config()
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.AllowOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   splitHeaderList(cfg.CORS.AllowHeaders),
		ExposedHeaders:   []string{"X-TradeGate-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}

func splitHeaderList(headers string) []string {
	parts := strings.Split(headers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	out = append(out, gwcommon.ClientSessionHeader)
	return out
}
