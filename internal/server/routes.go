package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/wagiedev/project-tools-mcp/internal/session"
)

// Paths served by the router.
const (
	PathMCP     = "/mcp"
	PathSSE     = "/mcp/sse"
	PathHealth  = "/healthz"
	PathMetrics = "/metrics"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
	}))

	r.Get(PathHealth, s.health)
	r.Method(http.MethodGet, PathMetrics, s.metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)))
		}

		getServer := func(*http.Request) *sdkmcp.Server { return s.sdk }

		streamable := sdkmcp.NewStreamableHTTPHandler(getServer, &sdkmcp.StreamableHTTPOptions{
			Stateless:    true,
			JSONResponse: s.cfg.JSONResponse,
			Logger:       s.log,
		})

		r.With(lifecycle(s.log, s.tracker, s.metrics, s.streamableMode)).Handle(PathMCP, streamable)

		if s.cfg.SSE {
			sse := sdkmcp.NewSSEHandler(getServer, nil)
			r.With(lifecycle(s.log, s.tracker, s.metrics, sseMode)).Handle(PathSSE, sse)
		}
	})

	return r
}

// streamableMode is buffered when POST responses are single JSON bodies.
func (s *Server) streamableMode(r *http.Request) session.Mode {
	if r.Method == http.MethodPost && s.cfg.JSONResponse {
		return session.ModeBuffered
	}

	return session.ModeStreaming
}

// sseMode is streaming for the event stream and buffered for message posts.
func sseMode(r *http.Request) session.Mode {
	if r.Method == http.MethodGet {
		return session.ModeStreaming
	}

	return session.ModeBuffered
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  s.registry.Len(),
	})
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
