package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/smartdocs/internal/config"
	"github.com/kirillkom/smartdocs/internal/core/ports"
	"github.com/kirillkom/smartdocs/internal/observability/metrics"
)

const serviceName = "api"

// backpressureWait bounds how long a request queues for a slot before 503.
const backpressureWait = 100 * time.Millisecond

type Router struct {
	cfg       config.Config
	auth      ports.AuthService
	ingestor  ports.DocumentIngestor
	docs      ports.DocumentReader
	dashboard ports.DashboardService
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	auth ports.AuthService,
	ingestor ports.DocumentIngestor,
	docs ports.DocumentReader,
	dashboard ports.DashboardService,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		auth:      auth,
		ingestor:  ingestor,
		docs:      docs,
		dashboard: dashboard,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	mux.HandleFunc("/api/auth/register", rt.register)
	mux.HandleFunc("/api/auth/login", rt.login)
	mux.HandleFunc("/api/auth/me", requireUser(rt.auth, rt.currentUser))

	mux.HandleFunc("/api/documents", requireUser(rt.auth, rt.listDocuments))
	mux.HandleFunc("/api/documents/upload", requireUser(rt.auth, rt.uploadDocument))
	mux.HandleFunc("/api/documents/", requireUser(rt.auth, rt.documentByID))

	mux.HandleFunc("/api/dashboard/stats", requireUser(rt.auth, rt.dashboardStats))
	mux.HandleFunc("/api/dashboard/recent-documents", requireUser(rt.auth, rt.recentDocuments))

	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, backpressureWait, rt.throttleCallback("backpressure"))
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst, rt.throttleCallback("rate_limit"))
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) throttleCallback(reason string) func() {
	if rt.metrics == nil {
		return nil
	}
	return func() { rt.metrics.RecordThrottled(serviceName, reason) }
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
